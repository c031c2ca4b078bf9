package closet

import (
	"context"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/imaging"
)

// ObjectStorageService defines the interface for object storage operations
type ObjectStorageService interface {
	// PutObject stores data under key
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	// GenerateDownloadURL returns a presigned URL valid for expiresIn
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	// DeleteObject deletes an object; a missing key is not an error
	DeleteObject(ctx context.Context, key string) error
}

// ImageProcessor renders the small grid image for an upload
type ImageProcessor interface {
	Thumbnail(data []byte) (*imaging.Thumbnail, error)
}

// BackgroundRemover strips the background from a photo and returns a PNG
type BackgroundRemover interface {
	Remove(ctx context.Context, data []byte, filename string) ([]byte, error)
}
