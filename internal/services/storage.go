package services

import (
	"context"
	"io"
)

// StorageService stores generated ticket artifacts such as QR code images
type StorageService interface {
	// Upload stores the object and returns its public URL
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	Delete(ctx context.Context, key string) error

	GetURL(key string) string

	Exists(ctx context.Context, key string) (bool, error)
}
