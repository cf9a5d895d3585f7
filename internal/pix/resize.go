package pix

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resize scales the buffer to the given dimensions using Catmull-Rom
// interpolation and returns a new RGB8 buffer. The receiver is unmodified.
func (b *Buffer) Resize(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if width == b.width && height == b.height {
		return b.Clone(), nil
	}

	src := b.ToStdImage()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	return FromStdImage(dst), nil
}

// Thumbnail scales the buffer so its longest side is at most maxSide,
// preserving aspect ratio. Buffers already within the bound are cloned.
func (b *Buffer) Thumbnail(maxSide int) (*Buffer, error) {
	if maxSide <= 0 {
		return nil, ErrInvalidDimensions
	}
	if b.width <= maxSide && b.height <= maxSide {
		return b.Clone(), nil
	}

	w, h := b.width, b.height
	if w >= h {
		h = h * maxSide / w
		w = maxSide
	} else {
		w = w * maxSide / h
		h = maxSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return b.Resize(w, h)
}
