// Package local stores uploaded files on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pagemonk/pkg/logger"
)

type Config struct {
	Directory string `yaml:"directory"`
}

type Storage struct {
	dir    string
	logger logger.Logger
}

func NewStorage(cfg Config, log logger.Logger) (*Storage, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Storage{dir: dir, logger: log}, nil
}

func (s *Storage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		s.logger.Error("Failed to write file",
			logger.String("key", key),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return key, nil
}

func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *Storage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to list upload directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				s.logger.Error("Failed to delete expired file",
					logger.String("name", entry.Name()),
					logger.Error(err),
				)
				continue
			}
			s.logger.Info("Deleted expired file",
				logger.String("name", entry.Name()),
				logger.Time("modTime", info.ModTime()),
			)
		}
	}
	return nil
}

// path resolves a key inside the upload directory, rejecting traversal.
func (s *Storage) path(key string) (string, error) {
	cleaned := filepath.Base(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.dir, cleaned), nil
}
