package pixform

import "fmt"

// PixelBytes is the number of bytes per pixel in host buffers (packed RGB).
const PixelBytes = 3

// PixelFunc computes the output color of a single pixel from its input
// color. It must be pure: no shared state, no dependence on neighboring
// pixels. Dispatchers call it concurrently from many goroutines.
type PixelFunc func(r, g, b uint8) (uint8, uint8, uint8)

// Transform is a per-pixel color transform. Every transform carries a pure
// Go function; transforms that additionally carry a WGSL body can run on a
// compute device with bit-identical results.
//
// Construct transforms with the built-in constructors (Identity, Invert,
// Grayscale, Brightness, SwapChannels) or NewTransform for custom ones.
type Transform struct {
	name string
	fn   PixelFunc
	wgsl string
}

// NewTransform creates a custom transform. The name identifies the
// transform in logs and keys the device pipeline cache, so distinct
// transforms need distinct names. wgslBody is the body of a WGSL function
//
//	fn transform_pixel(p: vec3<u32>) -> vec3<u32>
//
// where p holds the input channels in 0..255; pass "" for a CPU-only
// transform.
func NewTransform(name string, fn PixelFunc, wgslBody string) *Transform {
	return &Transform{name: name, fn: fn, wgsl: wgslBody}
}

// Name returns the transform's identifying name.
func (t *Transform) Name() string { return t.name }

// Pixel applies the transform to a single pixel.
func (t *Transform) Pixel(r, g, b uint8) (uint8, uint8, uint8) {
	return t.fn(r, g, b)
}

// WGSLBody returns the body of the transform's WGSL pixel function, or ""
// if the transform is CPU-only.
func (t *Transform) WGSLBody() string { return t.wgsl }

// DeviceCapable reports whether the transform can run on a compute device.
func (t *Transform) DeviceCapable() bool { return t.wgsl != "" }

// Identity returns the pass-through transform: output equals input,
// byte for byte.
func Identity() *Transform {
	return &Transform{
		name: "identity",
		fn:   func(r, g, b uint8) (uint8, uint8, uint8) { return r, g, b },
		wgsl: "return p;",
	}
}

// Invert returns the color inversion transform (255 - channel).
func Invert() *Transform {
	return &Transform{
		name: "invert",
		fn: func(r, g, b uint8) (uint8, uint8, uint8) {
			return 255 - r, 255 - g, 255 - b
		},
		wgsl: "return vec3<u32>(255u) - p;",
	}
}

// Grayscale returns the BT.601 luma transform. Integer arithmetic with
// rounding keeps CPU and device output bit-identical.
func Grayscale() *Transform {
	return &Transform{
		name: "grayscale",
		fn: func(r, g, b uint8) (uint8, uint8, uint8) {
			y := uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
			return y, y, y
		},
		wgsl: "let y = (299u * p.x + 587u * p.y + 114u * p.z + 500u) / 1000u;\n" +
			"    return vec3<u32>(y, y, y);",
	}
}

// Brightness returns a transform that adds delta to every channel,
// clamping to [0, 255]. The delta is baked into the transform's name and
// WGSL body, so each delta gets its own device pipeline.
func Brightness(delta int) *Transform {
	name := fmt.Sprintf("brightness%+d", delta)
	var wgsl string
	if delta >= 0 {
		wgsl = fmt.Sprintf("return min(p + vec3<u32>(%du), vec3<u32>(255u));", delta)
	} else {
		wgsl = fmt.Sprintf("let d = vec3<u32>(%du);\n"+
			"    return select(p - d, vec3<u32>(0u), p < d);", -delta)
	}
	return &Transform{
		name: name,
		fn: func(r, g, b uint8) (uint8, uint8, uint8) {
			return clampByte(int(r) + delta), clampByte(int(g) + delta), clampByte(int(b) + delta)
		},
		wgsl: wgsl,
	}
}

// SwapChannels returns the channel rotation transform: R←G, G←B, B←R.
func SwapChannels() *Transform {
	return &Transform{
		name: "swap",
		fn:   func(r, g, b uint8) (uint8, uint8, uint8) { return g, b, r },
		wgsl: "return p.yzx;",
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
