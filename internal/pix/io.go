package pix

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("pix: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("pix: empty data")
)

// LoadImage loads an image from the given file path, auto-detecting the
// format. Supported formats: PNG, JPEG. The result is an RGB8 buffer.
func LoadImage(path string) (*Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return LoadPNG(path)
	case ".jpg", ".jpeg":
		return LoadJPEG(path)
	default:
		// Try to detect from content
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("pix: open file: %w", err)
		}
		defer func() { _ = f.Close() }()

		return Decode(f)
	}
}

// LoadPNG loads a PNG image from the given file path.
func LoadPNG(path string) (*Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("pix: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("pix: decode PNG: %w", err)
	}
	return FromStdImage(img), nil
}

// LoadJPEG loads a JPEG image from the given file path.
func LoadJPEG(path string) (*Buffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("pix: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("pix: decode JPEG: %w", err)
	}
	return FromStdImage(img), nil
}

// LoadImageFromBytes loads an image from a byte slice, auto-detecting the format.
func LoadImageFromBytes(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes an image from the given reader, auto-detecting the format.
func Decode(r io.Reader) (*Buffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("pix: decode: %w", err)
	}
	return FromStdImage(img), nil
}

// SavePNG saves the buffer as a PNG file.
func (b *Buffer) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("pix: create file: %w", err)
	}

	if err := b.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// SaveJPEG saves the buffer as a JPEG file with the given quality (1-100).
func (b *Buffer) SaveJPEG(path string, quality int) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("pix: create file: %w", err)
	}

	if err := b.EncodeJPEG(f, quality); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// EncodePNG encodes the buffer as PNG to the given writer.
func (b *Buffer) EncodePNG(w io.Writer) error {
	img := b.ToStdImage()
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("pix: encode PNG: %w", err)
	}
	return nil
}

// EncodeJPEG encodes the buffer as JPEG to the given writer.
func (b *Buffer) EncodeJPEG(w io.Writer, quality int) error {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	img := b.ToStdImage()
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("pix: encode JPEG: %w", err)
	}
	return nil
}

// FromStdImage creates a Buffer from a standard library image.Image.
// The resulting Buffer is in RGB8 format; alpha is discarded.
func FromStdImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	buf, _ := NewBuffer(width, height, FormatRGB8)

	// Fast path for NRGBA images
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := range height {
			src := nrgba.Pix[y*nrgba.Stride:]
			dst := buf.Row(y)
			for x := range width {
				dst[x*3+0] = src[x*4+0]
				dst[x*3+1] = src[x*4+1]
				dst[x*3+2] = src[x*4+2]
			}
		}
		return buf
	}

	// Generic slow path for any image type
	for y := range height {
		dst := buf.Row(y)
		for x := range width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, bl, _ := c.RGBA()
			// RGBA() returns 16-bit values, scale to 8-bit
			dst[x*3+0] = byte(r >> 8)
			dst[x*3+1] = byte(g >> 8)
			dst[x*3+2] = byte(bl >> 8)
		}
	}

	return buf
}

// ToStdImage converts the Buffer to a standard library image.Image.
// Returns *image.Gray for grayscale, *image.NRGBA otherwise.
func (b *Buffer) ToStdImage() image.Image {
	rect := image.Rect(0, 0, b.width, b.height)

	switch b.format {
	case FormatGray8:
		gray := image.NewGray(rect)
		for y := range b.height {
			copy(gray.Pix[y*gray.Stride:], b.Row(y))
		}
		return gray

	case FormatRGB8:
		// Expand to NRGBA (opaque)
		nrgba := image.NewNRGBA(rect)
		for y := range b.height {
			row := b.Row(y)
			dstStart := y * nrgba.Stride
			for x := range b.width {
				srcOff := x * 3
				dstOff := dstStart + x*4
				nrgba.Pix[dstOff] = row[srcOff]
				nrgba.Pix[dstOff+1] = row[srcOff+1]
				nrgba.Pix[dstOff+2] = row[srcOff+2]
				nrgba.Pix[dstOff+3] = 255 // Opaque
			}
		}
		return nrgba

	case FormatRGBA8:
		nrgba := image.NewNRGBA(rect)
		if b.Stride() == nrgba.Stride {
			copy(nrgba.Pix, b.data)
		} else {
			for y := range b.height {
				copy(nrgba.Pix[y*nrgba.Stride:], b.Row(y))
			}
		}
		return nrgba

	default:
		// Unknown formats render as opaque black
		nrgba := image.NewNRGBA(rect)
		for i := 3; i < len(nrgba.Pix); i += 4 {
			nrgba.Pix[i] = 255
		}
		return nrgba
	}
}

// EncodeToBytes encodes the buffer to PNG format and returns the bytes.
func (b *Buffer) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
