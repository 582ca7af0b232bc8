// Package filestorage stores uploaded profile photos on local disk or in an
// S3-compatible bucket.
package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"maatram_portal_backend/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage saves uploads and returns a public URL for them.
type Storage interface {
	Save(ctx context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error)
	// Delete removes an object by the key Save placed it under.
	Delete(ctx context.Context, key string) error
}

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// NewStorage builds the backend selected by FILE_STORAGE_BACKEND.
func NewStorage(cfg *config.Config, logger *zap.Logger) (Storage, error) {
	switch cfg.FileStorageBackend {
	case config.FileStorageS3:
		return NewS3Storage(context.Background(), S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicBaseURL:   cfg.FilePublicBaseURL,
		}, logger.Named("S3Storage"))
	default:
		return NewLocalStorage(cfg.FileStoragePath, cfg.FilePublicBaseURL, logger.Named("LocalStorage"))
	}
}

// objectKey validates the upload type and returns subDir/<uuid><ext>.
func objectKey(fileHeader *multipart.FileHeader, subDir string) (key, contentType string, err error) {
	if fileHeader == nil {
		return "", "", fmt.Errorf("fileHeader cannot be nil")
	}
	cleanSubDir := filepath.ToSlash(filepath.Clean(subDir))
	if strings.HasPrefix(cleanSubDir, "..") || strings.HasPrefix(cleanSubDir, "/") {
		return "", "", fmt.Errorf("invalid subDir path")
	}

	extension := strings.ToLower(filepath.Ext(filepath.Base(fileHeader.Filename)))
	if extension == "" {
		ct := fileHeader.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(ct, "image/jpeg"):
			extension = ".jpg"
		case strings.HasPrefix(ct, "image/png"):
			extension = ".png"
		case strings.HasPrefix(ct, "image/gif"):
			extension = ".gif"
		}
	}
	contentType, ok := allowedExtensions[extension]
	if !ok {
		return "", "", fmt.Errorf("unsupported file type or missing extension: %s", fileHeader.Filename)
	}
	return path.Join(cleanSubDir, uuid.NewString()+extension), contentType, nil
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
