package resource

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Define names the render system sets in PipelineRequest.Defines.
const (
	DefineCameraBinding  = "CAMERA_BINDING"
	DefineLightBinding   = "LIGHT_BINDING"
	DefineMaxDirectional = "MAX_DIRECTIONAL_LIGHTS"
	DefineMaxAmbient     = "MAX_AMBIENT_LIGHTS"
)

// PipelineRequest describes the externally supplied state a material
// builds a render pipeline against.
type PipelineRequest struct {
	// EnvironmentLayouts are appended after the material's own group 0
	// layout, so the first one lands at group 1.
	EnvironmentLayouts []hal.BindGroupLayout
	// EnvironmentHash identifies EnvironmentLayouts by their entries.
	EnvironmentHash uint64

	// VertexLayouts are bound in slot order: mesh first, then instances.
	VertexLayouts []gputypes.VertexBufferLayout

	ColorFormat gputypes.TextureFormat
	DepthFormat gputypes.TextureFormat

	// Defines carries environment facts a shader is specialized on,
	// such as binding slots and light array sizes.
	Defines map[string]string
}

// Instanced reports whether the request carries a per-instance layout.
func (r *PipelineRequest) Instanced() bool {
	for i := range r.VertexLayouts {
		if r.VertexLayouts[i].StepMode == gputypes.VertexStepModeInstance {
			return true
		}
	}
	return false
}

// Key identifies the pipeline a material builds for r. Requests with
// equal keys may share one pipeline.
func (r *PipelineRequest) Key() uint64 {
	return CombineHashes(
		HashVertexLayouts(r.VertexLayouts),
		r.EnvironmentHash,
		uint64(r.ColorFormat),
		uint64(r.DepthFormat),
		HashDefines(r.Defines),
	)
}

// Material owns its bind group, layout and shader, and builds render
// pipelines on demand.
type Material interface {
	Name() string

	// BindGroup is bound at group 0 for every draw using the material.
	BindGroup() hal.BindGroup

	// RenderPipeline returns the pipeline for req, building it on first
	// use. Later calls with an equal req.Key() return the same pipeline.
	RenderPipeline(req *PipelineRequest) (hal.RenderPipeline, error)

	// ReleasePipeline destroys the pipeline cached under key, if any.
	ReleasePipeline(key uint64)

	// Destroy releases every GPU object the material owns.
	Destroy()
}
