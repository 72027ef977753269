package storage

import (
	"context"
	"errors"
	"fmt"

	"chatbot-platform/internal/config"
)

// ErrNotFound is returned by Delete when the blob does not exist.
var ErrNotFound = errors.New("blob not found")

// BlobStore keeps uploaded file bytes under their generated names.
type BlobStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) error
	Delete(ctx context.Context, name string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, localDir string) (BlobStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(localDir)
	case "minio":
		return NewMinioStore(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
