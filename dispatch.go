package pixform

import (
	"errors"

	"github.com/gogpu/pixform/internal/parallel"
)

// Dispatch applies a per-pixel transform to a width x height RGB image and
// returns the result as a fresh buffer. input must hold exactly
// width*height*PixelBytes bytes; it is never modified or retained.
//
// The image is processed as a grid of 16x16 tiles (ceiling division, so
// partial edge tiles are included). A registered device dispatcher is tried
// first for device-capable transforms; execution falls back to the CPU tile
// dispatcher when the device declines with ErrFallbackToCPU. Hard device
// failures are returned to the caller.
//
// Dispatch is synchronous: upload, execution, and readback have all
// completed when it returns. On error, no output is produced.
func Dispatch(input []byte, width, height int, opts ...DispatchOption) ([]byte, error) {
	o := defaultDispatchOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(input, width, height, o.transform); err != nil {
		return nil, err
	}

	output := make([]byte, len(input))
	if err := dispatchInto(output, input, width, height, o); err != nil {
		return nil, err
	}
	return output, nil
}

// ProcessImage applies a per-pixel transform to a width x height RGB image,
// writing the result into the caller-allocated output buffer. Both buffers
// must hold exactly width*height*PixelBytes bytes. input and output may be
// the same slice.
//
// On error, output is left untouched.
func ProcessImage(input, output []byte, width, height int, opts ...DispatchOption) error {
	o := defaultDispatchOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(input, width, height, o.transform); err != nil {
		return err
	}
	if len(output) != width*height*PixelBytes {
		return ErrBufferSize
	}

	// Dispatch into staging first so output stays untouched on failure.
	staging := make([]byte, len(input))
	if err := dispatchInto(staging, input, width, height, o); err != nil {
		return err
	}
	copy(output, staging)
	return nil
}

// validate checks the dispatch arguments. It runs before any staging or
// dispatcher call.
func validate(input []byte, width, height int, t *Transform) error {
	if t == nil {
		return ErrNilTransform
	}
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	if len(input) != width*height*PixelBytes {
		return ErrBufferSize
	}
	return nil
}

// dispatchInto runs the transform on the first dispatcher in the chain that
// accepts it. dst and src are validated, non-aliasing buffers.
func dispatchInto(dst, src []byte, width, height int, o dispatchOptions) error {
	t := o.transform
	grid := parallel.NewGrid(width, height)
	Logger().Debug("dispatching transform",
		"transform", t.Name(),
		"width", width, "height", height,
		"tiles_x", grid.Cols, "tiles_y", grid.Rows)

	// Explicit dispatcher pins execution to one backend.
	if o.dispatcher != nil {
		return o.dispatcher.Dispatch(dst, src, width, height, t)
	}

	if d := ActiveDispatcher(); d != nil && t.DeviceCapable() && d.CanDispatch(t) {
		err := d.Dispatch(dst, src, width, height, t)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			return err
		}
		Logger().Warn("device dispatch declined, falling back to CPU",
			"dispatcher", d.Name(), "transform", t.Name())
	}

	return cpuDispatch(dst, src, width, height, t, o.workers)
}
