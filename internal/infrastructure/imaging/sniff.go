// Package imaging validates uploaded images, renders thumbnails and talks to
// the background-removal provider.
package imaging

import (
	"fmt"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/gabriel-vasile/mimetype"
)

// allowedTypes maps accepted MIME types to the extension used in storage keys
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Detected is the result of sniffing an upload
type Detected struct {
	MIME      string
	Extension string
}

// Sniff identifies an image from its bytes. The client-supplied content type is never trusted.
func Sniff(data []byte) (Detected, error) {
	if len(data) == 0 {
		return Detected{}, fmt.Errorf("%w: empty file", shared.ErrUnsupportedMedia)
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedTypes[m.String()]; ok {
			return Detected{MIME: m.String(), Extension: ext}, nil
		}
	}
	return Detected{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedMedia, mt.String())
}

// IsPNG reports whether data is a PNG image
func IsPNG(data []byte) bool {
	return mimetype.Detect(data).Is("image/png")
}
