// Package pixform provides device-offloaded per-pixel image transforms.
//
// # Overview
//
// pixform applies a per-pixel transform to an RGB image buffer, staging the
// buffer to a compute device (GPU via gogpu/wgpu) when one is available and
// falling back to tile-parallel CPU execution otherwise. The image is
// partitioned into 16x16 pixel tiles; every pixel is transformed exactly
// once, independently of all other pixels.
//
// # Quick Start
//
//	import "github.com/gogpu/pixform"
//
//	// Identity pass-through copy of a width x height RGB buffer:
//	out, err := pixform.Dispatch(input, width, height)
//
//	// Invert colors into a caller-owned output buffer:
//	err := pixform.ProcessImage(input, output, width, height,
//	    pixform.WithTransform(pixform.Invert()))
//
// # GPU Acceleration
//
// GPU dispatch is opt-in via blank import:
//
//	import _ "github.com/gogpu/pixform/device" // enables wgpu compute dispatch
//
// If no compatible GPU is found, registration is skipped and all dispatches
// run on the CPU. A registered device dispatcher may also decline individual
// transforms (ErrFallbackToCPU), in which case the CPU path runs instead.
//
// # Buffer Contract
//
// Input and output buffers are caller-owned, tightly packed RGB
// (3 bytes per pixel, row-major): len == width*height*3. pixform never
// retains a reference to a caller buffer after a call returns, and never
// returns partial output: a dispatch either fully succeeds or fails with
// an error and an untouched result.
//
// # Concurrency
//
// Dispatch and ProcessImage are synchronous: the call does not return until
// upload, execution, and readback have all completed, in that order. Each
// call stages into its own transient buffers, so concurrent dispatches are
// independent and safe.
package pixform

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
