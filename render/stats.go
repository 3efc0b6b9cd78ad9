package render

import (
	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/resource"
)

// DrawCall records one indexed draw issued by MeshRender.
type DrawCall struct {
	Entity        ecs.Entity
	Mesh          resource.MeshID
	Material      resource.MaterialID
	IndexCount    uint32
	InstanceCount uint32
	Pipeline      PipelineKey
}

// FrameStats summarizes one MeshRender frame.
type FrameStats struct {
	// DrawCalls lists draws in submission order.
	DrawCalls []DrawCall

	// Skipped counts visible mesh renderers whose mesh, material or
	// pipeline was unavailable.
	Skipped int

	PipelinesBuilt int
	CacheHits      int

	// DroppedLights counts enabled lights past the light caps.
	DroppedLights int

	// HasCamera is false when the frame was cleared without draws
	// because no main camera was set.
	HasCamera bool
}
