// Package imaging decodes uploaded images and normalises them to JPEG.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension bounds the longest edge of a normalised image.
	MaxDimension = 2048
	// MaxPixels caps the declared width*height accepted for decoding.
	MaxPixels = 40_000_000
	// JPEGQuality is used for every re-encoded upload.
	JPEGQuality = 85
	// ContentType of every normalised image.
	ContentType = "image/jpeg"
)

var (
	ErrEmpty       = errors.New("image data is empty")
	ErrTooLarge    = errors.New("image exceeds maximum upload size")
	ErrInvalidData = errors.New("image data is not valid base64")
	ErrUnsupported = errors.New("unsupported image format")
	ErrDimensions  = errors.New("image dimensions exceed the pixel limit")
)

// Result is a normalised JPEG.
type Result struct {
	Data   []byte
	Width  int
	Height int
	// Format the upload was decoded from.
	Format string
}

// DecodeBase64 accepts raw base64 or a data URL.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+len(";base64,"):]
	}
	if s == "" {
		return nil, ErrEmpty
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return nil, ErrInvalidData
		}
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}

// Normalize decodes data, downscales it to fit MaxDimension and re-encodes it
// as JPEG. maxBytes <= 0 disables the size check.
func Normalize(data []byte, maxBytes int64) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrDimensions
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	img := flatten(resizeToFit(src, MaxDimension, MaxDimension))
	out, err := encodeJPEG(img, JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	b := img.Bounds()
	return &Result{Data: out, Width: b.Dx(), Height: b.Dy(), Format: format}, nil
}

// FromBase64 is DecodeBase64 followed by Normalize.
func FromBase64(s string, maxBytes int64) (*Result, error) {
	data, err := DecodeBase64(s)
	if err != nil {
		return nil, err
	}
	return Normalize(data, maxBytes)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// flatten composites src onto white; JPEG has no alpha channel.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Over)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
