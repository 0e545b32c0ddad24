package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
)

var (
	ErrPayloadTooLarge   = errors.New("image exceeds maximum upload size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageDecode       = errors.New("image could not be decoded")
	ErrImageTooLarge     = errors.New("image dimensions exceed pixel budget")
)

const (
	FormatJPEG = "jpeg"
	FormatHEIC = "heic"
)

type Config struct {
	MaxUploadBytes    int64
	AllowedExtensions []string
	MaxDimension      int
	Quality           int
	// MaxPixels bounds width*height before the full decode. Zero disables it.
	MaxPixels int
}

func DefaultConfig() Config {
	return Config{
		MaxUploadBytes:    10 * 1024 * 1024,
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".heic"},
		MaxDimension:      1920,
		Quality:           85,
		MaxPixels:         50_000_000,
	}
}

// NormalizedImage is the canonical form handed to recognition and storage.
// Degraded is set when the bytes passed through without re-encoding.
type NormalizedImage struct {
	Data     []byte
	Format   string
	MimeType string
	Width    int
	Height   int
	Degraded bool
}

// Extension returns the file extension matching the normalized format.
func (n *NormalizedImage) Extension() string {
	if n.Format == FormatJPEG {
		return ".jpg"
	}
	return "." + n.Format
}

// Normalize validates the upload and re-encodes it as a bounded JPEG. The
// input slice is never modified.
func Normalize(data []byte, filename string, cfg Config) (*NormalizedImage, error) {
	if cfg.MaxUploadBytes > 0 && int64(len(data)) > cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(data), cfg.MaxUploadBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed(ext, cfg.AllowedExtensions) {
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}

	mt := mimetype.Detect(data)
	if mt.Is("image/heic") || mt.Is("image/heif") || mt.Is("image/heic-sequence") || mt.Is("image/heif-sequence") {
		// No pure-Go HEIC codec; store and forward the original bytes.
		return &NormalizedImage{
			Data:     bytes.Clone(data),
			Format:   FormatHEIC,
			MimeType: mt.String(),
			Degraded: true,
		}, nil
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrImageDecode, ErrUnsupportedFormat, err)
	}
	if cfg.MaxPixels > 0 && int64(header.Width)*int64(header.Height) > int64(cfg.MaxPixels) {
		return nil, fmt.Errorf("%w: %w: %w: %dx%d, limit %d pixels",
			ErrImageDecode, ErrUnsupportedFormat, ErrImageTooLarge, header.Width, header.Height, cfg.MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrImageDecode, ErrUnsupportedFormat, err)
	}

	img = flatten(img)

	w, h := FitWithin(img.Bounds().Dx(), img.Bounds().Dy(), cfg.MaxDimension)
	if w != img.Bounds().Dx() || h != img.Bounds().Dy() {
		img = resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
	}

	quality := cfg.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &NormalizedImage{
		Data:     buf.Bytes(),
		Format:   FormatJPEG,
		MimeType: "image/jpeg",
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}, nil
}

// FitWithin scales (w, h) down so the longer side equals limit, keeping the
// aspect ratio. Sizes already inside the bound are returned unchanged.
func FitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}

	if w >= h {
		nh := int(float64(h)*float64(limit)/float64(w) + 0.5)
		if nh < 1 {
			nh = 1
		}
		return limit, nh
	}

	nw := int(float64(w)*float64(limit)/float64(h) + 0.5)
	if nw < 1 {
		nw = 1
	}
	return nw, limit
}

func allowed(ext string, list []string) bool {
	if ext == "" {
		return false
	}
	for _, a := range list {
		a = strings.ToLower(strings.TrimSpace(a))
		if !strings.HasPrefix(a, ".") {
			a = "." + a
		}
		if a == ext {
			return true
		}
	}
	return false
}

// flatten draws img onto an opaque white canvas so alpha and palette images
// come out as plain 3-channel color.
func flatten(img image.Image) image.Image {
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
