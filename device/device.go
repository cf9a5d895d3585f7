//go:build !nogpu

// Package device registers the wgpu compute dispatcher for GPU-accelerated
// transform execution.
//
// Import this package to run device-capable transforms as compute shaders.
// The dispatcher compiles each transform's WGSL body into a compute
// pipeline and executes it over 16x16 workgroups.
//
// If GPU initialization fails (no Vulkan available), the registration is
// silently skipped and all dispatches run on the CPU tile dispatcher.
//
// Usage:
//
//	import _ "github.com/gogpu/pixform/device" // enable GPU dispatch
package device

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/pixform"
	devimpl "github.com/gogpu/pixform/internal/device"
)

func init() {
	accel := devimpl.NewAccelerator()
	if err := pixform.RegisterDispatcher(accel); err != nil {
		pixform.Logger().Warn("GPU dispatcher not available", "err", err)
	}
}

// DeviceHandle provides GPU device access from the host application.
//
// Host applications that already own a GPU device (e.g., a gogpu window)
// implement gpucontext.DeviceProvider and pass it here, so pixform reuses
// the shared device instead of creating its own.
type DeviceHandle = gpucontext.DeviceProvider

// SetDeviceProvider configures the registered dispatcher to use a shared
// GPU device from an external provider. The provider must also expose
// HalDevice() any and HalQueue() any returning wgpu/hal types.
//
// Call this after the blank import has registered the dispatcher.
func SetDeviceProvider(provider DeviceHandle) error {
	return pixform.SetDispatcherDeviceProvider(provider)
}
