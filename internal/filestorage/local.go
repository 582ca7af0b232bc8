package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStorage writes uploads under a base directory served at publicBaseURL.
type LocalStorage struct {
	storagePath   string
	publicBaseURL string
	logger        *zap.Logger
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(storagePath, publicBaseURL string, logger *zap.Logger) (*LocalStorage, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, os.ModePerm); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	logger.Info("Local file storage initialized", zap.String("storagePath", storagePath))
	return &LocalStorage{storagePath: storagePath, publicBaseURL: publicBaseURL, logger: logger}, nil
}

// Root is the directory uploads are written to.
func (s *LocalStorage) Root() string { return s.storagePath }

// Save copies the upload to <storagePath>/<subDir>/<uuid><ext> and returns its public URL.
func (s *LocalStorage) Save(ctx context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error) {
	key, _, err := objectKey(fileHeader, subDir)
	if err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded file", zap.Error(err))
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	destinationPath := filepath.Join(s.storagePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(destinationPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	dst, err := os.Create(destinationPath)
	if err != nil {
		s.logger.Error("Failed to create destination file", zap.String("path", destinationPath), zap.Error(err))
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		os.Remove(destinationPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Info("File saved", zap.String("key", key))
	return publicURL(s.publicBaseURL, key), nil
}

// Delete removes a file by key. A missing file is not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("relative path cannot be empty")
	}
	clean := filepath.Clean(key)
	if strings.Contains(clean, "..") {
		s.logger.Warn("Attempt to delete file with path traversal", zap.String("key", key))
		return fmt.Errorf("invalid file path for deletion")
	}
	fullPath := filepath.Join(s.storagePath, clean)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}
