package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Processor renders the small image shown in closet grids
type Processor struct {
	thumbnailSize int
	quality       int
}

// NewProcessor creates a Processor. size is the longest edge in pixels.
func NewProcessor(size, quality int) *Processor {
	if size <= 0 {
		size = 400
	}
	if quality <= 0 || quality > 100 {
		quality = 82
	}
	return &Processor{thumbnailSize: size, quality: quality}
}

// Thumbnail is an encoded small image plus the dimensions of the source
type Thumbnail struct {
	Data         []byte
	SourceWidth  int
	SourceHeight int
}

// Dimensions decodes only the image header
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", shared.ErrUnsupportedMedia, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Thumbnail decodes data and returns a JPEG whose longest edge is at most the configured size.
// Transparent areas are flattened onto white.
func (p *Processor) Thumbnail(data []byte) (*Thumbnail, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnsupportedMedia, err)
	}
	bounds := src.Bounds()
	w, h := fit(bounds.Dx(), bounds.Dy(), p.thumbnailSize)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return &Thumbnail{
		Data:         buf.Bytes(),
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
	}, nil
}

// fit scales w x h so the longest edge is at most limit, never upscaling
func fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return max(w, 1), max(h, 1)
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
