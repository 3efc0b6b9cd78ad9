package render

import (
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/g3d/light"
)

// Option configures a Renderer.
type Option func(*options)

type options struct {
	width, height  uint32
	colorFormat    gputypes.TextureFormat
	colorFormatSet bool
	depthFormat    gputypes.TextureFormat
	clearColor     gputypes.Color
	submitTimeout  time.Duration
}

func defaultOptions() options {
	return options{
		width:         1280,
		height:        720,
		colorFormat:   gputypes.TextureFormatBGRA8Unorm,
		depthFormat:   gputypes.TextureFormatDepth24PlusStencil8,
		clearColor:    gputypes.Color{R: 0.05, G: 0.05, B: 0.08, A: 1},
		submitTimeout: 5 * time.Second,
	}
}

// WithSize sets the initial offscreen target size.
func WithSize(width, height uint32) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithColorFormat sets the color target format. It overrides the format a
// device provider reports.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.colorFormat = f
		o.colorFormatSet = true
	}
}

// WithDepthFormat sets the depth target format.
func WithDepthFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.depthFormat = f
	}
}

// WithClearColor sets the color the target is cleared to each frame.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithSubmitTimeout bounds how long a frame waits for the GPU to finish.
// Non-positive values are ignored.
func WithSubmitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.submitTimeout = d
		}
	}
}

// MeshRenderOption configures a MeshRender.
type MeshRenderOption func(*meshRenderOptions)

type meshRenderOptions struct {
	pipelineCacheLimit int
	lightCaps          light.Caps
}

func defaultMeshRenderOptions() meshRenderOptions {
	return meshRenderOptions{
		lightCaps: light.DefaultCaps,
	}
}

// WithPipelineCacheLimit bounds the pipeline cache. Past the limit the
// least recently used pipeline is released. Zero, the default, never
// evicts.
func WithPipelineCacheLimit(n int) MeshRenderOption {
	return func(o *meshRenderOptions) {
		o.pipelineCacheLimit = max(n, 0)
	}
}

// WithLightCaps sets how many lights of each kind reach the shader.
// Negative counts are treated as zero.
func WithLightCaps(c light.Caps) MeshRenderOption {
	return func(o *meshRenderOptions) {
		o.lightCaps = light.Caps{
			Directional: max(c.Directional, 0),
			Ambient:     max(c.Ambient, 0),
		}
	}
}
