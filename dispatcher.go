package pixform

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the device dispatcher cannot handle this
// dispatch. The caller should transparently fall back to CPU execution.
var ErrFallbackToCPU = errors.New("pixform: falling back to CPU execution")

// Dispatcher executes a per-pixel transform over an image.
//
// When registered via RegisterDispatcher, Dispatch tries the device
// dispatcher first for device-capable transforms. If it returns
// ErrFallbackToCPU, execution transparently falls back to the CPU tile
// dispatcher; any other error is reported to the caller.
//
// Implementations are provided by device backend packages. Users opt in
// via blank import:
//
//	import _ "github.com/gogpu/pixform/device" // enables GPU dispatch
type Dispatcher interface {
	// Name returns the dispatcher name (e.g., "wgpu-compute", "cpu").
	Name() string

	// Init initializes dispatcher resources. Called once during registration.
	Init() error

	// Close releases dispatcher resources.
	Close()

	// CanDispatch reports whether the dispatcher supports the given
	// transform. This is a fast check used to skip the device entirely
	// for unsupported transforms.
	CanDispatch(t *Transform) bool

	// Dispatch applies t to every pixel of the width x height RGB image
	// in src, writing the result to dst. Both buffers are
	// width*height*PixelBytes bytes; the implementation must not retain
	// either after returning. On error, dst contents are unspecified and
	// the caller discards them.
	Dispatch(dst, src []byte, width, height int, t *Transform) error
}

// DeviceProviderAware is an optional interface for dispatchers that can
// share GPU resources with an external provider (e.g., a gogpu window).
// When SetDeviceProvider is called, the dispatcher reuses the provided
// GPU device instead of creating its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	dispMu sync.RWMutex
	disp   Dispatcher
)

// RegisterDispatcher registers a device dispatcher for optional
// accelerated execution.
//
// Only one dispatcher can be registered. Subsequent calls replace the
// previous one. The dispatcher's Init() method is called during
// registration. If Init() fails, the dispatcher is not registered and the
// error is returned.
//
// Typical usage via blank import in device backend packages:
//
//	func init() {
//	    pixform.RegisterDispatcher(NewComputeDispatcher())
//	}
func RegisterDispatcher(d Dispatcher) error {
	if d == nil {
		return errors.New("pixform: dispatcher must not be nil")
	}
	if err := d.Init(); err != nil {
		return err
	}
	propagateLogger(d, Logger())
	dispMu.Lock()
	old := disp
	disp = d
	dispMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// ActiveDispatcher returns the currently registered device dispatcher,
// or nil if none.
func ActiveDispatcher() Dispatcher {
	dispMu.RLock()
	d := disp
	dispMu.RUnlock()
	return d
}

// SetDispatcherDeviceProvider passes a device provider to the registered
// dispatcher, enabling GPU device sharing. If no dispatcher is registered
// or it doesn't support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// that return wgpu/hal types.
func SetDispatcherDeviceProvider(provider any) error {
	d := ActiveDispatcher()
	if d == nil {
		return nil
	}
	if dpa, ok := d.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
