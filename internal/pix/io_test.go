package pix

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func testPattern(width, height int) *Buffer {
	buf, _ := NewBuffer(width, height, FormatRGB8)
	for y := 0; y < height; y++ {
		row := buf.Row(y)
		for x := 0; x < width; x++ {
			row[x*3+0] = byte(x * 31)
			row[x*3+1] = byte(y * 53)
			row[x*3+2] = byte((x + y) * 17)
		}
	}
	return buf
}

func TestPNGRoundtrip(t *testing.T) {
	src := testPattern(17, 3)

	encoded, err := src.EncodeToBytes()
	if err != nil {
		t.Fatalf("EncodeToBytes = %v", err)
	}

	back, err := LoadImageFromBytes(encoded)
	if err != nil {
		t.Fatalf("LoadImageFromBytes = %v", err)
	}
	if back.Width() != 17 || back.Height() != 3 {
		t.Fatalf("roundtrip dimensions = %dx%d, want 17x3", back.Width(), back.Height())
	}
	if !bytes.Equal(back.Data(), src.Data()) {
		t.Error("PNG roundtrip changed pixel data")
	}
}

func TestSaveLoadPNG(t *testing.T) {
	src := testPattern(8, 8)
	path := filepath.Join(t.TempDir(), "test.png")

	if err := src.SavePNG(path); err != nil {
		t.Fatalf("SavePNG = %v", err)
	}

	back, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage = %v", err)
	}
	if !bytes.Equal(back.Data(), src.Data()) {
		t.Error("save/load roundtrip changed pixel data")
	}
}

func TestSaveLoadJPEG(t *testing.T) {
	src := testPattern(16, 16)
	path := filepath.Join(t.TempDir(), "test.jpg")

	if err := src.SaveJPEG(path, 95); err != nil {
		t.Fatalf("SaveJPEG = %v", err)
	}

	back, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage = %v", err)
	}
	// JPEG is lossy: check dimensions only.
	if back.Width() != 16 || back.Height() != 16 {
		t.Errorf("dimensions = %dx%d, want 16x16", back.Width(), back.Height())
	}
}

func TestLoadImageFromBytes_Empty(t *testing.T) {
	if _, err := LoadImageFromBytes(nil); err != ErrEmptyData {
		t.Errorf("err = %v, want ErrEmptyData", err)
	}
}

func TestFromStdImage_DiscardsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	img.SetNRGBA(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 0})

	buf := FromStdImage(img)
	want := []byte{10, 20, 30, 40, 50, 60}
	if !bytes.Equal(buf.Data(), want) {
		t.Errorf("Data() = %v, want %v", buf.Data(), want)
	}
}

func TestFromStdImage_GenericPath(t *testing.T) {
	// Gray images take the generic At() path.
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 100})
	img.SetGray(1, 0, color.Gray{Y: 200})

	buf := FromStdImage(img)
	want := []byte{100, 100, 100, 200, 200, 200}
	if !bytes.Equal(buf.Data(), want) {
		t.Errorf("Data() = %v, want %v", buf.Data(), want)
	}
}

func TestToStdImage_RGB8(t *testing.T) {
	buf := testPattern(3, 2)
	img := buf.ToStdImage()

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("ToStdImage() returned %T, want *image.NRGBA", img)
	}
	c := nrgba.NRGBAAt(1, 1)
	row := buf.Row(1)
	if c.R != row[3] || c.G != row[4] || c.B != row[5] || c.A != 255 {
		t.Errorf("pixel (1,1) = %v, want (%d, %d, %d, 255)", c, row[3], row[4], row[5])
	}
}

func TestResize(t *testing.T) {
	src := testPattern(32, 32)

	small, err := src.Resize(16, 16)
	if err != nil {
		t.Fatalf("Resize = %v", err)
	}
	if small.Width() != 16 || small.Height() != 16 {
		t.Errorf("dimensions = %dx%d, want 16x16", small.Width(), small.Height())
	}
	if small.Format() != FormatRGB8 {
		t.Errorf("format = %v, want RGB8", small.Format())
	}
}

func TestResize_Invalid(t *testing.T) {
	src := testPattern(4, 4)
	if _, err := src.Resize(0, 4); err != ErrInvalidDimensions {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
}

func TestThumbnail(t *testing.T) {
	src := testPattern(64, 32)

	thumb, err := src.Thumbnail(16)
	if err != nil {
		t.Fatalf("Thumbnail = %v", err)
	}
	if thumb.Width() != 16 || thumb.Height() != 8 {
		t.Errorf("dimensions = %dx%d, want 16x8", thumb.Width(), thumb.Height())
	}

	// Already small enough: clone.
	same, err := src.Thumbnail(100)
	if err != nil {
		t.Fatalf("Thumbnail = %v", err)
	}
	if same.Width() != 64 || same.Height() != 32 {
		t.Errorf("dimensions = %dx%d, want 64x32", same.Width(), same.Height())
	}
}
