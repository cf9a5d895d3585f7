//go:build !nogpu

package device

import "errors"

// Typed errors for the device dispatch pipeline. Dispatch failures wrap one
// of these so callers can classify them with errors.Is.
var (
	// ErrNoGPU indicates no compatible GPU adapter was found.
	ErrNoGPU = errors.New("device: no compatible GPU adapter")

	// ErrNotInitialized indicates the accelerator has no ready GPU device.
	ErrNotInitialized = errors.New("device: accelerator not initialized")

	// ErrShaderCompile indicates WGSL compilation or pipeline creation failed.
	ErrShaderCompile = errors.New("device: shader compilation failed")

	// ErrAllocFailed indicates a device buffer allocation failed.
	ErrAllocFailed = errors.New("device: buffer allocation failed")

	// ErrTransferFailed indicates a host/device copy failed.
	ErrTransferFailed = errors.New("device: buffer transfer failed")

	// ErrLaunchFailed indicates command encoding or submission failed.
	ErrLaunchFailed = errors.New("device: compute launch failed")

	// ErrDispatchTimeout indicates the fence wait exceeded the dispatch deadline.
	ErrDispatchTimeout = errors.New("device: dispatch timed out")
)
