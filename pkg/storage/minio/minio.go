// Package minio stores uploaded files in a MinIO bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pagemonk/pkg/logger"
)

type Config struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	UseSSL     bool   `yaml:"use_ssl"`
	Region     string `yaml:"region"`
	BucketName string `yaml:"bucket_name"`
}

type Storage struct {
	client     *minio.Client
	bucketName string
	logger     logger.Logger
}

func NewStorage(cfg Config, log logger.Logger) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		err = client.MakeBucket(context.Background(), cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: cfg.BucketName,
		logger:     log,
	}, nil
}

func (m *Storage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucketName, key, reader, -1, minio.PutObjectOptions{})
	if err != nil {
		m.logger.Error("Failed to store file to MinIO",
			logger.String("bucket", m.bucketName),
			logger.String("key", key),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return key, nil
}

func (m *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		m.logger.Error("Failed to get file from MinIO",
			logger.String("bucket", m.bucketName),
			logger.String("key", key),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return obj, nil
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		m.logger.Error("Failed to delete file from MinIO",
			logger.String("bucket", m.bucketName),
			logger.String("key", key),
			logger.Error(err),
		)
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (m *Storage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	objectCh := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{})

	for obj := range objectCh {
		if obj.Err != nil {
			m.logger.Error("Error listing objects",
				logger.String("bucket", m.bucketName),
				logger.Error(obj.Err),
			)
			continue
		}

		if obj.LastModified.Before(threshold) {
			if err := m.Delete(ctx, obj.Key); err != nil {
				m.logger.Error("Failed to delete expired object",
					logger.String("key", obj.Key),
					logger.Error(err),
				)
				continue
			}
			m.logger.Info("Deleted expired object",
				logger.String("key", obj.Key),
				logger.Time("lastModified", obj.LastModified),
			)
		}
	}
	return nil
}
