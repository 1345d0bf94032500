// Package image provides image loading, format sniffing and thumbnails.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for data that is not a decodable image.
var ErrUnsupported = errors.New("unsupported image format")

// Source is a decoded image ready to be placed on the surface.
type Source struct {
	Name   string      // Base file name
	Format string      // Format reported by the decoder, e.g. "png"
	Image  image.Image // Decoded raster
}

// Width returns the image width in pixels.
func (s *Source) Width() int {
	if s == nil || s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Source) Height() int {
	if s == nil || s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// Decode reads an image from r. The content is sniffed first so that
// non-image files are rejected before a decoder sees them.
func Decode(name string, r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			kind, _ := filetype.Match(data)
			return nil, fmt.Errorf("%s (%s): %w", name, kind.MIME.Value, ErrUnsupported)
		}
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return &Source{
		Name:   filepath.Base(name),
		Format: format,
		Image:  img,
	}, nil
}

// Thumbnail returns a copy of img scaled to fit in a size×size box.
func Thumbnail(img image.Image, size int) image.Image {
	if img == nil || size <= 0 {
		return nil
	}
	return imaging.Fit(img, size, size, imaging.Linear)
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
