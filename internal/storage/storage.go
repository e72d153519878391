package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored image.
type UploadResult struct {
	PublicID string
	URL      string
}

// Storage hosts uploaded images. Implementations must be safe for concurrent
// use.
type Storage interface {
	// Upload stores the image content and returns its public ID and URL.
	Upload(ctx context.Context, filename string, content io.Reader) (*UploadResult, error)

	// Destroy removes the image with the given public ID. Destroying an
	// unknown ID is not an error.
	Destroy(ctx context.Context, publicID string) error
}
