// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/component"
	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/internal/cache"
	"github.com/gogpu/g3d/internal/logging"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/world"
)

// PipelineKey identifies a cached render pipeline.
type PipelineKey struct {
	Material      resource.MaterialID
	VertexLayouts uint64
	Environment   uint64
	// Target hashes the color and depth formats of the renderer.
	Target uint64
}

// cachedPipeline is a pipeline reference. The material owns the pipeline;
// eviction hands it back through ReleasePipeline.
type cachedPipeline struct {
	pipeline   hal.RenderPipeline
	material   resource.Material
	requestKey uint64
}

// drawItem is one resolved draw.
type drawItem struct {
	entity        ecs.Entity
	renderer      component.MeshRenderer
	sortKey       uint64
	mesh          *resource.Mesh
	material      resource.Material
	key           PipelineKey
	pipeline      hal.RenderPipeline
	instances     hal.Buffer
	instanceCount uint32
}

// MeshRender is the render system that draws every visible MeshRenderer.
//
// Render runs two passes. The resolve pass builds missing pipelines and
// syncs instance buffers; it may mutate the pipeline cache and the
// resource manager. The draw pass then records the sorted draw list with
// read-only access to both.
type MeshRender struct {
	opts      meshRenderOptions
	env       *environment
	pipelines *cache.Cache[PipelineKey, *cachedPipeline]
	device    hal.Device

	// evicted pipelines are released after the frame that evicted them,
	// since the draw list may still reference them.
	evicted []evictedPipeline
}

type evictedPipeline struct {
	key PipelineKey
	p   *cachedPipeline
}

// NewMeshRender creates the system. Pipelines are built lazily during
// Render.
func NewMeshRender(opts ...MeshRenderOption) *MeshRender {
	o := defaultMeshRenderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &MeshRender{
		opts: o,
		env:  newEnvironment(o.lightCaps),
	}
	s.pipelines = cache.New(o.pipelineCacheLimit, func(key PipelineKey, p *cachedPipeline) {
		s.evicted = append(s.evicted, evictedPipeline{key: key, p: p})
	})
	return s
}

// releaseEvicted hands evicted pipelines back to their materials unless
// the key was cached again in the meantime.
func (s *MeshRender) releaseEvicted() {
	for _, ev := range s.evicted {
		if s.pipelines.Contains(ev.key) {
			continue
		}
		ev.p.material.ReleasePipeline(ev.p.requestKey)
		logging.Logger().Debug("render: pipeline released", "material", ev.key.Material)
	}
	clear(s.evicted)
	s.evicted = s.evicted[:0]
}

// Name identifies the system.
func (*MeshRender) Name() string { return "mesh_render" }

// PipelineCacheLen returns the number of cached pipelines.
func (s *MeshRender) PipelineCacheLen() int { return s.pipelines.Len() }

// CacheStats returns the pipeline cache counters.
func (s *MeshRender) CacheStats() cache.Stats { return s.pipelines.Stats() }

// InvalidateMaterial releases every cached pipeline built by material id,
// so the next frame rebuilds them. It returns the number released.
func (s *MeshRender) InvalidateMaterial(id resource.MaterialID) int {
	n := s.pipelines.EvictFunc(func(k PipelineKey, _ *cachedPipeline) bool {
		return k.Material == id
	})
	s.releaseEvicted()
	return n
}

// Destroy releases cached pipelines and environment objects. Safe to call
// more than once.
func (s *MeshRender) Destroy() {
	s.pipelines.Purge()
	s.releaseEvicted()
	if s.device != nil {
		s.env.destroy(s.device)
	}
}

// Render draws one frame of w into r's target. Without a main camera the
// target is still cleared and submitted.
func (s *MeshRender) Render(w *world.World, r *Renderer) (FrameStats, error) {
	var stats FrameStats
	s.device = r.Device()
	defer s.releaseEvicted()

	env, err := s.env.assemble(w, r.Device())
	if err != nil {
		return stats, err
	}

	var items []drawItem
	if env == nil {
		logging.Logger().Debug("render: no main camera, frame cleared only")
	} else {
		stats.HasCamera = true
		stats.DroppedLights = env.dropped
		items, err = s.resolve(w, r, env, &stats)
		if err != nil {
			return stats, err
		}
	}

	err = r.submitFrame("mesh_render", func(rp hal.RenderPassEncoder) {
		stats.DrawCalls = s.draw(rp, env, items)
	})
	if err != nil {
		return stats, fmt.Errorf("render: submit frame: %w", err)
	}
	return stats, nil
}

// resolve collects the visible draws, syncing instance buffers and
// building any missing pipelines.
func (s *MeshRender) resolve(w *world.World, r *Renderer, env *frameEnvironment, stats *FrameStats) ([]drawItem, error) {
	m := w.Resources()
	log := logging.Logger()
	target := resource.CombineHashes(uint64(r.ColorFormat()), uint64(r.DepthFormat()))

	var items []drawItem
	for e, mr := range world.Query[component.MeshRenderer](w) {
		if !mr.Visible {
			continue
		}
		mesh, ok := m.Mesh(mr.Mesh)
		if !ok {
			stats.Skipped++
			log.Debug("render: mesh not found", "entity", e, "mesh", mr.Mesh)
			continue
		}
		mat, ok := m.Material(mr.Material)
		if !ok {
			stats.Skipped++
			log.Debug("render: material not found", "entity", e, "material", mr.Material)
			continue
		}

		instances, count, err := syncInstances(w, e)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			continue
		}

		layouts := []gputypes.VertexBufferLayout{mesh.Layout()}
		if instances != nil {
			layouts = append(layouts, resource.InstanceBufferLayout())
		}
		key := PipelineKey{
			Material:      mr.Material,
			VertexLayouts: resource.HashVertexLayouts(layouts),
			Environment:   env.hash,
			Target:        target,
		}

		built := false
		cp, err := s.pipelines.GetOrCreate(key, func() (*cachedPipeline, error) {
			req := &resource.PipelineRequest{
				EnvironmentLayouts: []hal.BindGroupLayout{env.layout},
				EnvironmentHash:    env.hash,
				VertexLayouts:      layouts,
				ColorFormat:        r.ColorFormat(),
				DepthFormat:        r.DepthFormat(),
				Defines:            env.defines,
			}
			pipeline, err := mat.RenderPipeline(req)
			if err != nil {
				return nil, err
			}
			built = true
			return &cachedPipeline{pipeline: pipeline, material: mat, requestKey: req.Key()}, nil
		})
		switch {
		case err != nil:
			stats.Skipped++
			log.Warn("render: pipeline build failed", "entity", e, "material", mat.Name(), "err", err)
			continue
		case built:
			stats.PipelinesBuilt++
		default:
			stats.CacheHits++
		}

		items = append(items, drawItem{
			entity:        e,
			renderer:      *mr,
			sortKey:       mr.SortKey(),
			mesh:          mesh,
			material:      mat,
			key:           key,
			pipeline:      cp.pipeline,
			instances:     instances,
			instanceCount: count,
		})
	}

	slices.SortStableFunc(items, func(a, b drawItem) int {
		if c := cmp.Compare(a.sortKey, b.sortKey); c != 0 {
			return c
		}
		return cmp.Compare(a.entity, b.entity)
	})
	return items, nil
}

// syncInstances uploads e's per-instance data. An Instance component wins;
// otherwise a Transform becomes a single instance. With neither, the draw
// is not instanced and any stale instance buffer is dropped.
func syncInstances(w *world.World, e ecs.Entity) (hal.Buffer, uint32, error) {
	m := w.Resources()

	var data []byte
	var count int
	if inst, ok := world.Get[component.Instance](w, e); ok {
		count = inst.Len()
		if !inst.IsDirty() {
			if id, ok := m.InstanceBufferID(e); ok {
				if buf, ok := m.Buffer(id); ok {
					return buf.Buffer, uint32(count), nil //nolint:gosec // G115: instance count fits GPU limits
				}
			}
		}
		data = inst.Bytes()
		inst.MarkClean()
	} else if tr, ok := world.Get[component.Transform](w, e); ok {
		d := tr.InstanceData(uint32(e)) //nolint:gosec // G115: ids are truncated for the shader
		data = d.AppendBytes(nil)
		count = 1
	} else {
		m.RemoveInstanceBuffer(e)
		return nil, 1, nil
	}

	id, ok, err := m.SyncInstanceBuffer(e, data)
	if err != nil {
		return nil, 0, fmt.Errorf("render: sync instances of %v: %w", e, err)
	}
	if !ok {
		return nil, 0, nil
	}
	buf, found := m.Buffer(id)
	if !found {
		return nil, 0, fmt.Errorf("render: instance buffer %v: %w", id, resource.ErrBufferNotFound)
	}
	return buf.Buffer, uint32(count), nil //nolint:gosec // G115: instance count fits GPU limits
}

// draw records items. State already bound by the previous draw is not
// rebound.
func (s *MeshRender) draw(rp hal.RenderPassEncoder, env *frameEnvironment, items []drawItem) []DrawCall {
	if len(items) == 0 {
		return nil
	}
	calls := make([]DrawCall, 0, len(items))
	var lastPipeline hal.RenderPipeline
	var lastMaterial resource.Material

	rp.SetBindGroup(1, env.bindGroup, nil)
	for i := range items {
		it := &items[i]
		if it.pipeline != lastPipeline {
			rp.SetPipeline(it.pipeline)
			lastPipeline = it.pipeline
		}
		if it.material != lastMaterial {
			rp.SetBindGroup(0, it.material.BindGroup(), nil)
			lastMaterial = it.material
		}
		rp.SetVertexBuffer(0, it.mesh.VertexBuffer(), 0)
		if it.instances != nil {
			rp.SetVertexBuffer(1, it.instances, 0)
		}
		rp.SetIndexBuffer(it.mesh.IndexBuffer(), it.mesh.IndexFormat(), 0)
		rp.DrawIndexed(it.mesh.IndexCount(), it.instanceCount, 0, 0, 0)

		calls = append(calls, DrawCall{
			Entity:        it.entity,
			Mesh:          it.renderer.Mesh,
			Material:      it.renderer.Material,
			IndexCount:    it.mesh.IndexCount(),
			InstanceCount: it.instanceCount,
			Pipeline:      it.key,
		})
	}
	return calls
}
