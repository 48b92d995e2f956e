package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestLocalDocumentStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalDocumentStore(dir)
	require.NoError(t, err)

	path, err := store.Save(ctx, fileHeader(t, "CV.PDF", []byte("%PDF-1.4 test")), "resume")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "resume_"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	data, err := store.Download(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), data)

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(filepath.Join(dir, path))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalDocumentStoreRejectsNonPDF(t *testing.T) {
	store, err := NewLocalDocumentStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), fileHeader(t, "cv.docx", []byte("x")), "resume")
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestLocalDocumentStoreStaysInUploadDir(t *testing.T) {
	store, err := NewLocalDocumentStore(t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{"../etc/passwd", "/etc/passwd", "a/b.pdf", "", "."} {
		_, err := store.Download(context.Background(), path)
		assert.Error(t, err, path)
	}
}

func TestPDFConverterRejectsBadInput(t *testing.T) {
	c := NewPDFConverter()

	_, err := c.Convert(nil)
	assert.Error(t, err)

	_, err = c.Convert([]byte("definitely not a pdf"))
	assert.Error(t, err)
}
