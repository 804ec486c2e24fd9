package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinioStore uploads job artifacts and signs object URLs for work items.
type MinioStore struct {
	client *minio.Client
	ttl    time.Duration
}

func NewMinioStore(client *minio.Client, ttl time.Duration) (*MinioStore, error) {
	if client == nil {
		return nil, errors.New("minio client is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MinioStore{client: client, ttl: ttl}, nil
}

// PutFile uploads the file at path and returns the stored object's ETag.
func (s *MinioStore) PutFile(ctx context.Context, bucket, key, path, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("minio store not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return "", errors.New("object key is required")
	}
	info, err := s.client.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return info.ETag, nil
}

func (s *MinioStore) SignGet(ctx context.Context, bucket, key string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("minio store not initialized")
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, key, s.ttl, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinioStore) SignPut(ctx context.Context, bucket, key string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("minio store not initialized")
	}
	u, err := s.client.PresignedPutObject(ctx, bucket, key, s.ttl)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
