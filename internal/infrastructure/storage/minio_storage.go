package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finkraft/expense-exporter/internal/application/pipeline"
	infraconfig "github.com/finkraft/expense-exporter/internal/infrastructure/config"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// Ensure MinioObjectStorage implements pipeline.ObjectStorage
var _ pipeline.ObjectStorage = (*MinioObjectStorage)(nil)

// MinioObjectStorage stores artifacts through the MinIO client and resolves
// them as static container URLs. Use this family when the bucket sits behind
// a public file host and pre-signing is unnecessary.
type MinioObjectStorage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// NewMinioObjectStorage creates a new MinioObjectStorage from configuration
func NewMinioObjectStorage(cfg *infraconfig.StorageConfig) (*MinioObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("storage endpoint is required")
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioObjectStorage{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: endpoint,
		useSSL:   cfg.UseSSL,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioObjectStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// UploadFile uploads a local file
func (s *MinioObjectStorage) UploadFile(ctx context.Context, storageKey, localPath, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.FPutObject(ctx, s.bucket, storageKey, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// ResolveURL returns the static URL under which the object is served
func (s *MinioObjectStorage) ResolveURL(ctx context.Context, storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, storageKey), nil
}

// DeleteObject deletes an object from storage
func (s *MinioObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	if err := s.client.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ObjectExists checks if an object exists in storage
func (s *MinioObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	_, err := s.client.StatObject(ctx, s.bucket, storageKey, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}
