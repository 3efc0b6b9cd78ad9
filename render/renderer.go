// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/internal/logging"
	"github.com/gogpu/g3d/resource"
)

// completionPoll is the interval between submission completion checks.
const completionPoll = 100 * time.Microsecond

// Renderer owns the GPU device and queue and the frame targets.
//
// By default it renders into an offscreen color texture it owns. After
// SetSurfaceTarget it renders into the caller's view instead; the caller
// presents it. The depth texture is always owned by the Renderer.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	targets targetSet

	surfaceView   hal.TextureView
	width, height uint32

	frames uint64
}

// NewRenderer creates a renderer on an existing device and queue.
func NewRenderer(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, resource.ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.width == 0 || o.height == 0 {
		return nil, ErrZeroSize
	}
	return &Renderer{
		device: device,
		queue:  queue,
		opts:   o,
		width:  o.width,
		height: o.height,
	}, nil
}

// NewRendererFromProvider creates a renderer on the device shared by a
// gpucontext provider, such as a gogpu window. The provider must also
// expose HalDevice() and HalQueue(). Its surface format becomes the color
// format unless WithColorFormat is given.
func NewRendererFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	device, queue, err := HALFromProvider(provider)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if f := provider.SurfaceFormat(); f != 0 && !o.colorFormatSet {
		opts = append([]Option{WithColorFormat(f)}, opts...)
	}
	r, err := NewRenderer(device, queue, opts...)
	if err != nil {
		return nil, err
	}
	logging.Logger().Info("render: using provider device", "colorFormat", r.opts.colorFormat)
	return r, nil
}

// HALFromProvider extracts the HAL device and queue from a provider that
// implements HalDevice() any and HalQueue() any.
func HALFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}
	return device, queue, nil
}

// Device returns the HAL device.
func (r *Renderer) Device() hal.Device { return r.device }

// Queue returns the HAL queue.
func (r *Renderer) Queue() hal.Queue { return r.queue }

// ColorFormat returns the color target format.
func (r *Renderer) ColorFormat() gputypes.TextureFormat { return r.opts.colorFormat }

// DepthFormat returns the depth target format.
func (r *Renderer) DepthFormat() gputypes.TextureFormat { return r.opts.depthFormat }

// ClearColor returns the per-frame clear color.
func (r *Renderer) ClearColor() gputypes.Color { return r.opts.clearColor }

// SetClearColor changes the per-frame clear color.
func (r *Renderer) SetClearColor(c gputypes.Color) { r.opts.clearColor = c }

// Size returns the frame size in pixels.
func (r *Renderer) Size() (uint32, uint32) { return r.width, r.height }

// Aspect returns width / height.
func (r *Renderer) Aspect() float32 { return float32(r.width) / float32(r.height) }

// Frames returns how many frames were submitted.
func (r *Renderer) Frames() uint64 { return r.frames }

// Resize changes the offscreen target size. Textures are recreated on the
// next frame.
func (r *Renderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return ErrZeroSize
	}
	if width != r.width || height != r.height {
		r.targets.destroy(r.device)
	}
	r.width = width
	r.height = height
	return nil
}

// SetSurfaceTarget renders subsequent frames into view. Call with a nil
// view to return to the owned offscreen texture. The caller keeps
// ownership of view.
func (r *Renderer) SetSurfaceTarget(view hal.TextureView, width, height uint32) {
	modeChanged := (view == nil) != (r.surfaceView == nil)
	sizeChanged := width != r.width || height != r.height
	if modeChanged || sizeChanged {
		r.targets.destroy(r.device)
	}
	r.surfaceView = view
	if width > 0 && height > 0 {
		r.width = width
		r.height = height
	}
}

// ColorView returns the view the last frame was rendered into: the
// surface view if set, otherwise the owned offscreen view.
func (r *Renderer) ColorView() hal.TextureView {
	if r.surfaceView != nil {
		return r.surfaceView
	}
	return r.targets.colorView
}

// Destroy releases the owned textures. The surface view is not destroyed.
// Safe to call more than once.
func (r *Renderer) Destroy() {
	r.targets.destroy(r.device)
	r.surfaceView = nil
}

func (r *Renderer) ensureTargets() error {
	return r.targets.ensure(r.device, r.width, r.height,
		r.opts.colorFormat, r.opts.depthFormat, r.surfaceView == nil)
}

// submitFrame clears the targets, lets record fill one render pass, then
// submits and waits for the GPU.
func (r *Renderer) submitFrame(label string, record func(rp hal.RenderPassEncoder)) error {
	if err := r.ensureTargets(); err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label + "_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.ColorView(),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.opts.clearColor,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              r.targets.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	if record != nil {
		record(rp)
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}

	index, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("submit: %w", err)
	}
	if err := r.waitSubmission(index); err != nil {
		// the GPU may still read cmdBuf, so it is not freed
		return err
	}
	r.device.FreeCommandBuffer(cmdBuf)
	r.frames++
	return nil
}

// waitSubmission blocks until the queue reports index complete or the
// submit timeout passes.
func (r *Renderer) waitSubmission(index uint64) error {
	deadline := time.Now().Add(r.opts.submitTimeout)
	for r.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			logging.Logger().Warn("render: GPU did not complete frame",
				"submission", index, "timeout", r.opts.submitTimeout)
			return fmt.Errorf("%w: submission %d after %v", ErrGPUTimeout, index, r.opts.submitTimeout)
		}
		time.Sleep(completionPoll)
	}
	return nil
}
