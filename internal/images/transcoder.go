package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// OptimizedMaxEdge caps the longest edge of the full-size variant.
	OptimizedMaxEdge = 1200
	// ThumbnailMaxEdge caps the longest edge of the listing thumbnail.
	ThumbnailMaxEdge = 300

	optimizedQuality = 80
	thumbnailQuality = 70
)

// ErrUnsupportedFormat is returned when the raw bytes cannot be decoded
// as an image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Result holds both derived encodings of one uploaded image. The raw
// original is never kept past transcoding.
type Result struct {
	Optimized            []byte
	OptimizedContentType string
	OptimizedSize        int
	OriginalSize         int
	Thumbnail            []byte
}

type Transcoder struct{}

func NewTranscoder() *Transcoder {
	return &Transcoder{}
}

// Transcode derives the optimized and thumbnail variants from raw upload
// bytes. Aspect ratio is preserved and images smaller than a cap are never
// enlarged. Any failure means no variant is usable; callers must abort the
// write that triggered the transcode.
func (t *Transcoder) Transcode(raw []byte) (*Result, error) {
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	optimized, err := encodeJPEG(shrink(src, OptimizedMaxEdge), optimizedQuality)
	if err != nil {
		return nil, fmt.Errorf("optimized variant: %w", err)
	}

	thumbnail, err := encodeJPEG(shrink(src, ThumbnailMaxEdge), thumbnailQuality)
	if err != nil {
		return nil, fmt.Errorf("thumbnail variant: %w", err)
	}

	return &Result{
		Optimized:            optimized,
		OptimizedContentType: "image/jpeg",
		OptimizedSize:        len(optimized),
		OriginalSize:         len(raw),
		Thumbnail:            thumbnail,
	}, nil
}

func shrink(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return src
	}
	return imaging.Fit(src, maxEdge, maxEdge, imaging.Lanczos)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
