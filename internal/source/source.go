// Package source decodes the base images a meme is composed on.
//
// An Image is immutable once built. Uploads and preset templates go through
// the same decoder; the only difference is where the bytes come from.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Errors returned by the decoders.
var (
	// ErrUnsupportedFormat is returned when the bytes are not an image type
	// the decoder understands.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrEmptyImage is returned for images with a zero width or height.
	ErrEmptyImage = errors.New("image has no pixels")
)

// Image is a decoded source bitmap together with the name it was loaded from.
type Image struct {
	name   string
	format string
	img    image.Image
}

// New wraps an already decoded bitmap. The image must have a positive width
// and height.
func New(name string, img image.Image) (*Image, error) {
	if img == nil {
		return nil, ErrEmptyImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyImage)
	}
	return &Image{name: name, img: img}, nil
}

// Name returns the upload file name or preset path the image came from.
func (i *Image) Name() string { return i.name }

// Format returns the detected encoding ("png", "jpeg", ...). It is empty for
// images built with New.
func (i *Image) Format() string { return i.format }

// Bitmap returns the decoded pixels.
func (i *Image) Bitmap() image.Image { return i.img }

// Width returns the width in pixels.
func (i *Image) Width() int { return i.img.Bounds().Dx() }

// Height returns the height in pixels.
func (i *Image) Height() int { return i.img.Bounds().Dy() }

// Decode reads an image of any supported type from r. JPEG EXIF orientation
// is applied so photos come out upright.
func Decode(name string, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if !IsImage(data) {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrUnsupportedFormat, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	out, err := New(name, img)
	if err != nil {
		return nil, err
	}
	out.format = format
	return out, nil
}

// Open decodes the image file at path. The image is named after the file.
func Open(path string) (*Image, error) {
	return openAs(filepath.Base(path), path)
}

func openAs(name, path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only

	return Decode(name, file)
}

// IsImage sniffs the leading bytes and reports whether they look like an
// image MIME type. This mirrors the file picker's image/* filter.
func IsImage(data []byte) bool {
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}
