package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentStore keeps original uploaded documents. Paths returned by Save
// are opaque to callers and only meaningful to the same store.
type DocumentStore interface {
	Save(ctx context.Context, file *multipart.FileHeader, kind string) (string, error)
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

var ErrInvalidFileType = errors.New("invalid file type")

var allowedExtensions = map[string]string{
	".pdf": "application/pdf",
}

// objectName validates the upload and builds a unique name for it.
func objectName(file *multipart.FileHeader, kind string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidFileType, ext)
	}
	return fmt.Sprintf("%s_%s%s", kind, uuid.New().String(), ext), contentType, nil
}

type localDocumentStore struct {
	uploadPath string
}

func NewLocalDocumentStore(uploadPath string) (DocumentStore, error) {
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localDocumentStore{uploadPath: uploadPath}, nil
}

func (s *localDocumentStore) Save(_ context.Context, file *multipart.FileHeader, kind string) (string, error) {
	name, _, err := objectName(file, kind)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.uploadPath, name))
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return name, nil
}

func (s *localDocumentStore) Download(_ context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *localDocumentStore) Delete(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve keeps lookups inside the upload directory.
func (s *localDocumentStore) resolve(path string) (string, error) {
	name := filepath.Base(filepath.Clean(path))
	if name == "." || name == string(filepath.Separator) || name != path {
		return "", fmt.Errorf("invalid document path: %q", path)
	}
	return filepath.Join(s.uploadPath, name), nil
}
