package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"pagemonk/pkg/logger"
	"pagemonk/pkg/storage/local"
	"pagemonk/pkg/storage/minio"
	"pagemonk/pkg/storage/s3"
)

// StorageType selects the file storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeMinio StorageType = "minio"
	StorageTypeS3    StorageType = "s3"
)

// Storage persists uploaded file bytes under a caller-chosen key.
type Storage interface {
	// Store writes the file and returns its key.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get opens the file for reading.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the file.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes files older than the threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// Config carries settings for whichever backend Type selects.
type Config struct {
	Type  StorageType  `yaml:"type"`
	Local local.Config `yaml:"local"`
	Minio minio.Config `yaml:"minio"`
	S3    s3.Config    `yaml:"s3"`
}

// NewStorage is the factory for storage backends.
func NewStorage(cfg Config, log logger.Logger) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return local.NewStorage(cfg.Local, log)
	case StorageTypeMinio:
		return minio.NewStorage(cfg.Minio, log)
	case StorageTypeS3:
		return s3.NewStorage(cfg.S3, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
