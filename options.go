package g3d

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d/light"
	"github.com/gogpu/g3d/render"
)

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := g3d.NewEngine(device, queue,
//	    g3d.WithSize(1920, 1080),
//	    g3d.WithPipelineCacheLimit(64))
type Option func(*options)

type options struct {
	render     []render.Option
	meshRender []render.MeshRenderOption
}

// WithSize sets the initial frame size.
func WithSize(width, height uint32) Option {
	return func(o *options) {
		o.render = append(o.render, render.WithSize(width, height))
	}
}

// WithClearColor sets the color each frame is cleared to.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.render = append(o.render, render.WithClearColor(c))
	}
}

// WithColorFormat sets the color target format.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.render = append(o.render, render.WithColorFormat(f))
	}
}

// WithPipelineCacheLimit bounds the render pipeline cache. Zero, the
// default, keeps every pipeline.
func WithPipelineCacheLimit(n int) Option {
	return func(o *options) {
		o.meshRender = append(o.meshRender, render.WithPipelineCacheLimit(n))
	}
}

// WithLightCaps sets how many lights of each kind reach the shader.
func WithLightCaps(c light.Caps) Option {
	return func(o *options) {
		o.meshRender = append(o.meshRender, render.WithLightCaps(c))
	}
}
