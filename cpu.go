package pixform

import (
	"sync"

	"github.com/gogpu/pixform/internal/parallel"
	"github.com/gogpu/pixform/internal/pix"
)

// CPUDispatcher executes transforms on the host using a work-stealing
// worker pool over 16x16 tiles. It is the always-available fallback behind
// any registered device dispatcher and mirrors the device buffer lifecycle:
// the input is staged into a private buffer, transformed into a separate
// staging output, and copied back to the caller's buffer.
//
// Thread safety: CPUDispatcher is safe for concurrent use; concurrent
// dispatches stage into independent buffers.
type CPUDispatcher struct {
	pool *parallel.WorkerPool
}

// NewCPUDispatcher creates a CPU dispatcher with the given worker count.
// Values < 1 select GOMAXPROCS workers.
func NewCPUDispatcher(workers int) *CPUDispatcher {
	return &CPUDispatcher{pool: parallel.NewWorkerPool(workers)}
}

// Name returns "cpu".
func (d *CPUDispatcher) Name() string { return "cpu" }

// Init is a no-op; the worker pool starts in NewCPUDispatcher.
func (d *CPUDispatcher) Init() error { return nil }

// Close shuts down the worker pool.
func (d *CPUDispatcher) Close() { d.pool.Close() }

// CanDispatch reports whether the transform can run on the CPU.
// Every non-nil transform carries a Go pixel function, so this is true
// for all of them.
func (d *CPUDispatcher) CanDispatch(t *Transform) bool { return t != nil }

// Workers returns the worker pool size.
func (d *CPUDispatcher) Workers() int { return d.pool.Workers() }

// Dispatch applies t to every pixel of src, writing results to dst.
func (d *CPUDispatcher) Dispatch(dst, src []byte, width, height int, t *Transform) error {
	// Stage input and output so the caller's buffers are untouched while
	// tiles execute, matching the device upload/readback lifecycle.
	stagedIn := pix.GetFromDefault(width, height, pix.FormatRGB8)
	stagedOut := pix.GetFromDefault(width, height, pix.FormatRGB8)
	defer func() {
		pix.PutToDefault(stagedIn)
		pix.PutToDefault(stagedOut)
	}()

	copy(stagedIn.Data(), src)

	in := stagedIn.Data()
	out := stagedOut.Data()

	grid := parallel.NewGrid(width, height)
	work := make([]func(), 0, grid.NumTiles())
	grid.ForEach(func(tile parallel.Tile) {
		work = append(work, func() {
			transformTile(out, in, width, tile, t)
		})
	})

	d.pool.ExecuteAll(work)

	copy(dst, out)
	return nil
}

// transformTile applies t to every pixel of one tile. Tile extents are
// pre-clamped to the image bounds, so no further guard is needed.
func transformTile(dst, src []byte, width int, tile parallel.Tile, t *Transform) {
	for y := tile.Y0; y < tile.Y1; y++ {
		rowOff := y * width * PixelBytes
		for x := tile.X0; x < tile.X1; x++ {
			i := rowOff + x*PixelBytes
			r, g, b := t.Pixel(src[i], src[i+1], src[i+2])
			dst[i] = r
			dst[i+1] = g
			dst[i+2] = b
		}
	}
}

var (
	defaultCPUOnce sync.Once
	defaultCPU     *CPUDispatcher
)

// sharedCPUDispatcher returns the process-wide CPU dispatcher, creating it
// on first use with GOMAXPROCS workers.
func sharedCPUDispatcher() *CPUDispatcher {
	defaultCPUOnce.Do(func() {
		defaultCPU = NewCPUDispatcher(0)
	})
	return defaultCPU
}

// cpuDispatch runs a dispatch on the CPU. A positive workers count runs on
// a transient pool of that size; otherwise the shared pool is used.
func cpuDispatch(dst, src []byte, width, height int, t *Transform, workers int) error {
	if workers > 0 {
		d := NewCPUDispatcher(workers)
		defer d.Close()
		return d.Dispatch(dst, src, width, height, t)
	}
	return sharedCPUDispatcher().Dispatch(dst, src, width, height, t)
}
