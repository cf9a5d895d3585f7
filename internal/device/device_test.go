//go:build !nogpu

package device

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"strings"
	"testing"
)

func TestShaderSource_InjectsBody(t *testing.T) {
	src := shaderSource("return vec3<u32>(255u) - p;")

	if !strings.Contains(src, "return vec3<u32>(255u) - p;") {
		t.Error("transform body missing from assembled shader")
	}
	if !strings.Contains(src, "@workgroup_size(16, 16)") {
		t.Error("workgroup size missing from assembled shader")
	}
	if !strings.Contains(src, "if (x >= params.width || y >= params.height)") {
		t.Error("bounds guard missing from assembled shader")
	}
	if !strings.Contains(src, "var<storage, read> src") {
		t.Error("read-only input binding missing from assembled shader")
	}
	if !strings.Contains(src, "var<storage, read_write> dst") {
		t.Error("writable output binding missing from assembled shader")
	}
}

func TestShaderSource_BindingsOrdered(t *testing.T) {
	src := shaderSource("return p;")

	params := strings.Index(src, "@group(0) @binding(0)")
	input := strings.Index(src, "@group(0) @binding(1)")
	output := strings.Index(src, "@group(0) @binding(2)")
	if params < 0 || input < 0 || output < 0 {
		t.Fatal("missing binding declarations")
	}
	if !(params < input && input < output) {
		t.Error("bindings out of order")
	}
}

func TestPackUnpackRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, pixelCount := range []int{1, 4, 51, 256} {
		rgb := make([]byte, pixelCount*hostPixelBytes)
		for i := range rgb {
			rgb[i] = byte(rng.Intn(256))
		}

		packed := packPixelsForGPU(rgb, pixelCount)
		if len(packed) != pixelCount*devicePixelBytes {
			t.Fatalf("packed length = %d, want %d", len(packed), pixelCount*devicePixelBytes)
		}

		back := make([]byte, len(rgb))
		unpackPixelsFromGPU(packed, back, pixelCount)
		if !bytes.Equal(back, rgb) {
			t.Fatalf("pack/unpack roundtrip changed %d-pixel data", pixelCount)
		}
	}
}

func TestPackPixelsLayout(t *testing.T) {
	// One pixel (R=1, G=2, B=3) packs into a little-endian word with R in
	// the low byte and a zero high byte.
	packed := packPixelsForGPU([]byte{1, 2, 3}, 1)
	word := binary.LittleEndian.Uint32(packed)
	if word != 1|2<<8|3<<16 {
		t.Errorf("packed word = %#x, want %#x", word, uint32(1|2<<8|3<<16))
	}
}

func TestParamsBytes(t *testing.T) {
	params := paramsBytes(17, 3)
	if len(params) != 16 {
		t.Fatalf("params length = %d, want 16", len(params))
	}
	if got := binary.LittleEndian.Uint32(params[0:]); got != 17 {
		t.Errorf("width = %d, want 17", got)
	}
	if got := binary.LittleEndian.Uint32(params[4:]); got != 3 {
		t.Errorf("height = %d, want 3", got)
	}
}

func TestWorkgroupCounts(t *testing.T) {
	tests := []struct {
		width, height int
		wantX, wantY  uint32
	}{
		{1, 1, 1, 1},
		{16, 16, 1, 1},
		{17, 3, 2, 1},
		{17, 17, 2, 2},
		{1920, 1080, 120, 68},
	}
	for _, tt := range tests {
		x, y := workgroupCounts(tt.width, tt.height)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("workgroupCounts(%d, %d) = (%d, %d), want (%d, %d)",
				tt.width, tt.height, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestAcceleratorNotReady(t *testing.T) {
	a := NewAccelerator()

	if a.Name() != "wgpu-compute" {
		t.Errorf("Name() = %q, want %q", a.Name(), "wgpu-compute")
	}
	if a.CanDispatch(nil) {
		t.Error("uninitialized accelerator must not accept dispatches")
	}
	// Close before Init must not panic.
	a.Close()
}
