package pixform

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// Pixmap represents a rectangular RGB pixel buffer.
type Pixmap struct {
	width  int
	height int
	data   []uint8 // RGB format, 3 bytes per pixel
}

// NewPixmap creates a new pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*PixelBytes),
	}
}

// NewPixmapFromBytes wraps an existing RGB buffer in a Pixmap without
// copying. The buffer length must equal width*height*PixelBytes.
func NewPixmapFromBytes(data []uint8, width, height int) (*Pixmap, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(data) != width*height*PixelBytes {
		return nil, ErrBufferSize
	}
	return &Pixmap{width: width, height: height, data: data}, nil
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGB format).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// SetPixel sets the color of a single pixel.
func (p *Pixmap) SetPixel(x, y int, r, g, b uint8) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * PixelBytes
	p.data[i+0] = r
	p.data[i+1] = g
	p.data[i+2] = b
}

// GetPixel returns the color of a single pixel.
func (p *Pixmap) GetPixel(x, y int) (r, g, b uint8) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0, 0, 0
	}
	i := (y*p.width + x) * PixelBytes
	return p.data[i+0], p.data[i+1], p.data[i+2]
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(r, g, b uint8) {
	for i := 0; i < len(p.data); i += PixelBytes {
		p.data[i+0] = r
		p.data[i+1] = g
		p.data[i+2] = b
	}
}

// Apply runs a transform over the pixmap and returns the result as a new
// pixmap. The receiver is left unmodified.
func (p *Pixmap) Apply(opts ...DispatchOption) (*Pixmap, error) {
	out, err := Dispatch(p.data, p.width, p.height, opts...)
	if err != nil {
		return nil, err
	}
	return &Pixmap{width: p.width, height: p.height, data: out}, nil
}

// ToImage converts the pixmap to an image.RGBA (alpha fully opaque).
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			si := (y*p.width + x) * PixelBytes
			di := y*img.Stride + x*4
			img.Pix[di+0] = p.data[si+0]
			img.Pix[di+1] = p.data[si+1]
			img.Pix[di+2] = p.data[si+2]
			img.Pix[di+3] = 0xFF
		}
	}
	return img
}

// FromImage creates a pixmap from an image, discarding alpha.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pm := NewPixmap(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			pm.SetPixel(x, y, c.R, c.G, c.B)
		}
	}

	return pm
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	img := p.ToImage()
	return png.Encode(f, img)
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	r, g, b := p.GetPixel(x, y)
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
