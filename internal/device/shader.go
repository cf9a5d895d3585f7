//go:build !nogpu

package device

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Workgroup dimensions of the transform compute shader. The host dispatch
// grid is sized by ceiling division so edge workgroups cover partial tiles;
// the shader guards out-of-bounds invocations.
const (
	workgroupWidth  = 16
	workgroupHeight = 16
)

// shaderTemplate is the WGSL compute module wrapping a per-pixel transform.
// The single %s slot receives the body of transform_pixel, which maps an
// input RGB triple (channels in 0..255) to an output triple.
//
// Pixels travel as one u32 word each (R in the low byte). Storage buffers
// are u32-granular, so byte-tight RGB would make neighboring invocations
// write the same word.
const shaderTemplate = `struct Params {
    width: u32,
    height: u32,
    _pad0: u32,
    _pad1: u32,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> src: array<u32>;
@group(0) @binding(2) var<storage, read_write> dst: array<u32>;

fn transform_pixel(p: vec3<u32>) -> vec3<u32> {
    %s
}

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let x = gid.x;
    let y = gid.y;
    if (x >= params.width || y >= params.height) {
        return;
    }
    let idx = y * params.width + x;
    let packed = src[idx];
    let p = vec3<u32>(packed & 0xFFu, (packed >> 8u) & 0xFFu, (packed >> 16u) & 0xFFu);
    let q = transform_pixel(p);
    dst[idx] = (q.x & 0xFFu) | ((q.y & 0xFFu) << 8u) | ((q.z & 0xFFu) << 16u);
}
`

// shaderSource assembles the full WGSL module for a transform body.
func shaderSource(body string) string {
	return fmt.Sprintf(shaderTemplate, body)
}

// compileShaderToSPIRV compiles WGSL source to a SPIR-V uint32 slice via
// naga, validating the shader on the host before it reaches the driver.
func compileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShaderCompile, err)
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	return spirvCode, nil
}
