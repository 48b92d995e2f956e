package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/config"
	"alfredoptarigan/resalign/internal/logger"
)

type minioDocumentStore struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// NewMinIODocumentStore connects to MinIO and makes sure the bucket exists.
func NewMinIODocumentStore(ctx context.Context, cfg config.MinIOConfig, log *zap.Logger) (DocumentStore, error) {
	log = logger.OrNop(log)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("minio bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &minioDocumentStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

func (s *minioDocumentStore) Save(ctx context.Context, file *multipart.FileHeader, kind string) (string, error) {
	name, contentType, err := objectName(file, kind)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	info, err := s.client.PutObject(ctx, s.bucket, name, src, file.Size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s/%s: %w", s.bucket, name, err)
	}
	s.log.Debug("object uploaded", zap.String("object", name), zap.Int64("size", info.Size))

	return name, nil
}

func (s *minioDocumentStore) Download(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", s.bucket, path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", s.bucket, path, err)
	}
	return data, nil
}

func (s *minioDocumentStore) Delete(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s/%s: %w", s.bucket, path, err)
	}
	return nil
}
