// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package device

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pixform"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// dispatchTimeout bounds the fence wait for one transform dispatch.
const dispatchTimeout = 5 * time.Second

// Accelerator executes per-pixel transforms on the GPU using wgpu/hal
// compute shaders. It implements the pixform.Dispatcher interface.
//
// Each transform gets its own compute pipeline, built on first use from the
// transform's WGSL body and cached by transform name. A dispatch uploads
// the image into a storage buffer, runs one compute pass over a
// 16x16-workgroup grid, and reads the result back through a staging buffer.
// All per-dispatch resources are released on every exit path.
type Accelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// pipelines caches one compute pipeline per transform name.
	pipelines map[string]*transformPipeline

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

// transformPipeline holds the per-transform GPU objects.
type transformPipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

var (
	_ pixform.Dispatcher          = (*Accelerator)(nil)
	_ pixform.DeviceProviderAware = (*Accelerator)(nil)
)

// NewAccelerator creates an uninitialized GPU accelerator.
// Init must succeed before dispatches are accepted.
func NewAccelerator() *Accelerator {
	return &Accelerator{pipelines: make(map[string]*transformPipeline)}
}

// Name returns "wgpu-compute".
func (a *Accelerator) Name() string { return "wgpu-compute" }

// Init opens a GPU device via the Vulkan backend. It returns an error when
// no compatible adapter is available, in which case the accelerator should
// not be registered.
func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initGPU()
}

// Close releases all GPU resources. Shared devices from SetDeviceProvider
// are not destroyed.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipelines()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
			a.device = nil
		}
		if a.instance != nil {
			a.instance.Destroy()
			a.instance = nil
		}
	} else {
		// Don't destroy shared resources, we don't own them
		a.device = nil
		a.instance = nil
	}
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetLogger receives the logger propagated from pixform.SetLogger.
func (a *Accelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// SetDeviceProvider switches the accelerator to use a shared GPU device
// from an external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (a *Accelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("device: provider does not expose HAL types")
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return fmt.Errorf("device: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("device: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Destroy own resources if we created them
	a.destroyPipelines()
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}

	a.device = dev
	a.queue = queue
	a.externalDevice = true
	a.gpuReady = true
	slogger().Info("switched to shared GPU device")
	return nil
}

// CanDispatch reports whether the transform can run on this accelerator:
// the GPU must be ready and the transform must carry a WGSL body.
func (a *Accelerator) CanDispatch(t *pixform.Transform) bool {
	a.mu.Lock()
	ready := a.gpuReady
	a.mu.Unlock()
	return ready && t != nil && t.DeviceCapable()
}

// Dispatch runs the transform over the width x height image in src and
// writes the result to dst. It returns pixform.ErrFallbackToCPU when the
// GPU is not ready or the transform has no WGSL body; other errors are
// hard failures that wrap the package's typed errors.
func (a *Accelerator) Dispatch(dst, src []byte, width, height int, t *pixform.Transform) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.gpuReady {
		return pixform.ErrFallbackToCPU
	}
	if t == nil || !t.DeviceCapable() {
		return pixform.ErrFallbackToCPU
	}

	pipe, err := a.pipelineFor(t)
	if err != nil {
		return err
	}

	return a.dispatchCompute(pipe, dst, src, width, height, t)
}

// pipelineFor returns the cached pipeline for the transform, building it
// on first use.
func (a *Accelerator) pipelineFor(t *pixform.Transform) (*transformPipeline, error) {
	if pipe, ok := a.pipelines[t.Name()]; ok {
		return pipe, nil
	}
	pipe, err := a.createPipeline(t)
	if err != nil {
		return nil, err
	}
	a.pipelines[t.Name()] = pipe
	slogger().Debug("compute pipeline built", "transform", t.Name())
	return pipe, nil
}

// dispatchCompute performs one full upload/execute/readback cycle.
func (a *Accelerator) dispatchCompute(pipe *transformPipeline, dst, src []byte, width, height int, t *pixform.Transform) error {
	pixelCount := width * height
	pixelBufSize := uint64(pixelCount * devicePixelBytes) //nolint:gosec // sizes fit uint64
	params := paramsBytes(uint32(width), uint32(height))  //nolint:gosec // validated dimensions
	packed := packPixelsForGPU(src, pixelCount)

	paramsBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "transform_params", Size: uint64(len(params)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: params buffer: %v", ErrAllocFailed, err)
	}
	defer a.device.DestroyBuffer(paramsBuf)

	srcBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "transform_src", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: input buffer: %v", ErrAllocFailed, err)
	}
	defer a.device.DestroyBuffer(srcBuf)

	dstBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "transform_dst", Size: pixelBufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("%w: output buffer: %v", ErrAllocFailed, err)
	}
	defer a.device.DestroyBuffer(dstBuf)

	stagingBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "transform_staging", Size: pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: staging buffer: %v", ErrAllocFailed, err)
	}
	defer a.device.DestroyBuffer(stagingBuf)

	// Upload phase. WriteBuffer copies complete before the submitted
	// command buffer executes.
	a.queue.WriteBuffer(paramsBuf, 0, params)
	a.queue.WriteBuffer(srcBuf, 0, packed)

	bindGroup, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "transform_bind", Layout: pipe.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: srcBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: dstBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: bind group: %v", ErrLaunchFailed, err)
	}
	defer a.device.DestroyBindGroup(bindGroup)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "transform_encoder"})
	if err != nil {
		return fmt.Errorf("%w: command encoder: %v", ErrLaunchFailed, err)
	}
	if err := encoder.BeginEncoding("transform_dispatch"); err != nil {
		return fmt.Errorf("%w: begin encoding: %v", ErrLaunchFailed, err)
	}

	gx, gy := workgroupCounts(width, height)
	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "transform_pass"})
	computePass.SetPipeline(pipe.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.Dispatch(gx, gy, 1)
	computePass.End()

	encoder.CopyBufferToBuffer(dstBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("%w: end encoding: %v", ErrLaunchFailed, err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	submitIdx, err := a.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("%w: submit: %v", ErrLaunchFailed, err)
	}
	deadline := time.Now().Add(dispatchTimeout)
	for a.queue.PollCompleted() < submitIdx {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: after %v", ErrDispatchTimeout, dispatchTimeout)
		}
		time.Sleep(time.Millisecond)
	}

	// Readback phase. The completed-submission poll above is the execution
	// barrier.
	readback := make([]byte, pixelBufSize)
	mapping, err := a.device.MapBuffer(stagingBuf, 0, pixelBufSize)
	if err != nil {
		return fmt.Errorf("%w: readback: %v", ErrTransferFailed, err)
	}
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), pixelBufSize))
	if err := a.device.UnmapBuffer(stagingBuf); err != nil {
		return fmt.Errorf("%w: readback: %v", ErrTransferFailed, err)
	}
	unpackPixelsFromGPU(readback, dst, pixelCount)

	slogger().Debug("dispatch complete",
		"transform", t.Name(), "width", width, "height", height,
		"workgroups_x", gx, "workgroups_y", gy)
	return nil
}

func (a *Accelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend not available", ErrNoGPU)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %v", ErrNoGPU, err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		a.instance.Destroy()
		a.instance = nil
		return fmt.Errorf("%w: no adapters found", ErrNoGPU)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		a.instance.Destroy()
		a.instance = nil
		return fmt.Errorf("%w: open device: %v", ErrNoGPU, err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	a.gpuReady = true
	slogger().Info("GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

// createPipeline builds the shader module, layouts, and compute pipeline
// for one transform, destroying partial state on failure.
func (a *Accelerator) createPipeline(t *pixform.Transform) (*transformPipeline, error) {
	spirv, err := compileShaderToSPIRV(shaderSource(t.WGSLBody()))
	if err != nil {
		return nil, fmt.Errorf("transform %q: %w", t.Name(), err)
	}

	pipe := &transformPipeline{}
	destroyPartial := func() { a.destroyPipeline(pipe) }

	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "transform_" + t.Name(),
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: shader module for %q: %v", ErrShaderCompile, t.Name(), err)
	}
	pipe.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "transform_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		destroyPartial()
		return nil, fmt.Errorf("%w: bind group layout: %v", ErrShaderCompile, err)
	}
	pipe.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "transform_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{pipe.bindLayout},
	})
	if err != nil {
		destroyPartial()
		return nil, fmt.Errorf("%w: pipeline layout: %v", ErrShaderCompile, err)
	}
	pipe.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "transform_pipeline_" + t.Name(), Layout: pipe.pipeLayout,
		Compute: hal.ComputeState{Module: pipe.shader, EntryPoint: "main"},
	})
	if err != nil {
		destroyPartial()
		return nil, fmt.Errorf("%w: compute pipeline: %v", ErrShaderCompile, err)
	}
	pipe.pipeline = pipeline

	return pipe, nil
}

// destroyPipeline releases whatever objects of one pipeline exist.
func (a *Accelerator) destroyPipeline(pipe *transformPipeline) {
	if a.device == nil || pipe == nil {
		return
	}
	if pipe.pipeline != nil {
		a.device.DestroyComputePipeline(pipe.pipeline)
	}
	if pipe.pipeLayout != nil {
		a.device.DestroyPipelineLayout(pipe.pipeLayout)
	}
	if pipe.bindLayout != nil {
		a.device.DestroyBindGroupLayout(pipe.bindLayout)
	}
	if pipe.shader != nil {
		a.device.DestroyShaderModule(pipe.shader)
	}
}

// destroyPipelines releases all cached pipelines.
func (a *Accelerator) destroyPipelines() {
	for name, pipe := range a.pipelines {
		a.destroyPipeline(pipe)
		delete(a.pipelines, name)
	}
}
