// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package g3d

import (
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/system"
	"github.com/gogpu/g3d/world"
)

// Engine ties a World, a Renderer and the system schedule together.
// The built-in MeshRender is registered as the first render system, and
// world matrices are propagated after the update systems run.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	world      *world.World
	renderer   *render.Renderer
	meshRender *render.MeshRender
	transforms system.Transforms
	systems    *system.Manager
	closed     bool
}

// NewEngine creates an engine on an existing device and queue.
func NewEngine(device hal.Device, queue hal.Queue, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	r, err := render.NewRenderer(device, queue, o.render...)
	if err != nil {
		return nil, err
	}
	return newEngine(r, &o)
}

// NewEngineFromProvider creates an engine on the device shared by a
// gpucontext provider.
func NewEngineFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	r, err := render.NewRendererFromProvider(provider, o.render...)
	if err != nil {
		return nil, err
	}
	return newEngine(r, &o)
}

func newEngine(r *render.Renderer, o *options) (*Engine, error) {
	e := &Engine{
		world:      world.New(r.Device(), r.Queue()),
		renderer:   r,
		meshRender: render.NewMeshRender(o.meshRender...),
		systems:    system.NewManager(),
	}
	if err := e.systems.AddRenderer(e.meshRender); err != nil {
		return nil, err
	}
	return e, nil
}

// World returns the engine's world.
func (e *Engine) World() *world.World { return e.world }

// Renderer returns the engine's renderer.
func (e *Engine) Renderer() *render.Renderer { return e.renderer }

// MeshRender returns the built-in mesh render system.
func (e *Engine) MeshRender() *render.MeshRender { return e.meshRender }

// AddSystem registers s as an update system, a render system, or both.
// Render systems run after the built-in mesh render, in registration
// order.
func (e *Engine) AddSystem(s system.System) error {
	added := false
	if u, ok := s.(system.Updater); ok {
		if err := e.systems.AddUpdater(u); err != nil {
			return err
		}
		added = true
	}
	if rs, ok := s.(system.Renderer); ok {
		if err := e.systems.AddRenderer(rs); err != nil {
			return err
		}
		added = true
	}
	if !added {
		return fmt.Errorf("g3d: system %q is neither an updater nor a renderer", s.Name())
	}
	return nil
}

// Frame runs one frame: every update system, transform propagation, then
// every render system.
func (e *Engine) Frame(dt time.Duration) (render.FrameStats, error) {
	if e.closed {
		return render.FrameStats{}, ErrClosed
	}
	if err := e.systems.Update(e.world, dt); err != nil {
		return render.FrameStats{}, err
	}
	if err := e.transforms.Update(e.world, dt); err != nil {
		return render.FrameStats{}, err
	}
	return e.systems.Render(e.world, e.renderer)
}

// Resize changes the frame size and updates every camera's aspect ratio.
func (e *Engine) Resize(width, height uint32) error {
	if err := e.renderer.Resize(width, height); err != nil {
		return err
	}
	aspect := e.renderer.Aspect()
	for _, c := range e.world.Cameras {
		c.SetAspect(aspect)
	}
	return nil
}

// Close releases systems, the world's resources and the frame targets.
// The device is not destroyed. Safe to call more than once.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.systems.Destroy()
	e.world.Cleanup()
	e.renderer.Destroy()
}
