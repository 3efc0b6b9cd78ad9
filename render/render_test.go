package render

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/component"
	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/internal/gputest"
	"github.com/gogpu/g3d/light"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/world"
)

type scene struct {
	w      *world.World
	r      *Renderer
	mesh   resource.MeshID
	mat    resource.MaterialID
	basic  *material.Basic
	camera ecs.Entity
}

func newScene(t *testing.T) *scene {
	t.Helper()
	device, queue := gputest.NoopDevice(t)

	w := world.New(device, queue)
	t.Cleanup(w.Cleanup)

	r, err := NewRenderer(device, queue, WithSize(64, 64))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(r.Destroy)

	verts, idx := resource.Triangle()
	mesh, err := resource.NewMesh(device, queue, "triangle",
		resource.VertexFormatPositionNormalUV, resource.EncodeVertices(verts), idx)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	basic, err := material.NewBasic(device, queue, [4]float32{1, 0, 0, 1}, material.WithLabel("red"))
	if err != nil {
		t.Fatalf("NewBasic: %v", err)
	}

	s := &scene{
		w:     w,
		r:     r,
		mesh:  w.Resources().AddMesh(mesh, "triangle"),
		mat:   w.Resources().AddMaterial(basic, "red"),
		basic: basic,
	}
	s.camera = w.CreateEntity()
	if err := world.Add(w, s.camera, camera.NewPerspective()); err != nil {
		t.Fatal(err)
	}
	if err := w.SetMainCamera(s.camera, camera.KindPerspective); err != nil {
		t.Fatal(err)
	}
	return s
}

func (s *scene) addRenderable(t *testing.T, mat resource.MaterialID) ecs.Entity {
	t.Helper()
	e := s.w.CreateEntity()
	if err := world.Add(s.w, e, component.NewMeshRenderer(s.mesh, mat)); err != nil {
		t.Fatal(err)
	}
	if err := world.Add(s.w, e, component.NewTransform(mgl32.Vec3{0, 0, -2})); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestRenderSharesPipelineAcrossEntities(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()

	a := s.addRenderable(t, s.mat)
	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(stats.DrawCalls) != 1 {
		t.Fatalf("DrawCalls = %d, want 1", len(stats.DrawCalls))
	}
	dc := stats.DrawCalls[0]
	if dc.Entity != a || dc.IndexCount != 3 || dc.InstanceCount != 1 {
		t.Errorf("draw = %+v, want entity %v DrawIndexed(3, 1)", dc, a)
	}
	if stats.PipelinesBuilt != 1 || mr.PipelineCacheLen() != 1 {
		t.Errorf("built %d, cache len %d, want 1/1", stats.PipelinesBuilt, mr.PipelineCacheLen())
	}

	s.addRenderable(t, s.mat)
	stats, err = mr.Render(s.w, s.r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(stats.DrawCalls) != 2 {
		t.Fatalf("DrawCalls = %d, want 2", len(stats.DrawCalls))
	}
	if stats.PipelinesBuilt != 0 || stats.CacheHits != 2 {
		t.Errorf("built %d hits %d, want 0/2", stats.PipelinesBuilt, stats.CacheHits)
	}
	if mr.PipelineCacheLen() != 1 || s.basic.BuildCount() != 1 {
		t.Errorf("cache len %d, material builds %d, want 1/1", mr.PipelineCacheLen(), s.basic.BuildCount())
	}
	if stats.DrawCalls[0].Pipeline != stats.DrawCalls[1].Pipeline {
		t.Error("both draws should use the same pipeline key")
	}
	if s.r.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", s.r.Frames())
	}
}

func TestRenderTargetFormatSeparatesPipelines(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()
	s.addRenderable(t, s.mat)

	other, err := NewRenderer(s.r.Device(), s.r.Queue(), WithSize(64, 64),
		WithColorFormat(gputypes.TextureFormatRGBA8Unorm))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer other.Destroy()

	first, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := mr.Render(s.w, other)
	if err != nil {
		t.Fatalf("Render on second target: %v", err)
	}
	if second.PipelinesBuilt != 1 || second.CacheHits != 0 {
		t.Errorf("second target built %d hits %d, want 1/0", second.PipelinesBuilt, second.CacheHits)
	}
	if first.DrawCalls[0].Pipeline == second.DrawCalls[0].Pipeline {
		t.Error("targets with different formats must not share a pipeline key")
	}
	if mr.PipelineCacheLen() != 2 || s.basic.BuildCount() != 2 {
		t.Errorf("cache len %d, material builds %d, want 2/2", mr.PipelineCacheLen(), s.basic.BuildCount())
	}
}

func TestRenderWithoutMainCamera(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()

	s.addRenderable(t, s.mat)
	if c, ok := world.Get[camera.Perspective](s.w, s.camera); ok {
		c.IsMain = false
	}

	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.HasCamera || len(stats.DrawCalls) != 0 {
		t.Errorf("stats = %+v, want no camera and no draws", stats)
	}
	if s.r.Frames() != 1 {
		t.Errorf("frame should still be submitted, Frames() = %d", s.r.Frames())
	}
}

func TestRenderSkipsMissingResources(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()

	s.addRenderable(t, resource.MaterialID(999))
	hidden := s.addRenderable(t, s.mat)
	if r, ok := world.Get[component.MeshRenderer](s.w, hidden); ok {
		r.Visible = false
	}

	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 1 || len(stats.DrawCalls) != 0 {
		t.Errorf("Skipped=%d draws=%d, want 1/0", stats.Skipped, len(stats.DrawCalls))
	}
}

// brokenMaterial fails every pipeline build.
type brokenMaterial struct {
	builds int
}

var errNoShader = errors.New("no shader")

func (*brokenMaterial) Name() string             { return "broken" }
func (*brokenMaterial) BindGroup() hal.BindGroup { return nil }
func (b *brokenMaterial) RenderPipeline(*resource.PipelineRequest) (hal.RenderPipeline, error) {
	b.builds++
	return nil, errNoShader
}
func (*brokenMaterial) ReleasePipeline(uint64) {}
func (*brokenMaterial) Destroy()               {}

func TestRenderFailedBuildIsRetried(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()

	broken := &brokenMaterial{}
	s.addRenderable(t, s.w.Resources().AddMaterial(broken, "broken"))
	s.addRenderable(t, s.mat)

	for frame := 1; frame <= 2; frame++ {
		stats, err := mr.Render(s.w, s.r)
		if err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		if stats.Skipped != 1 || len(stats.DrawCalls) != 1 {
			t.Errorf("frame %d: Skipped=%d draws=%d, want 1/1", frame, stats.Skipped, len(stats.DrawCalls))
		}
		if broken.builds != frame {
			t.Errorf("frame %d: broken builds = %d, want a retry every frame", frame, broken.builds)
		}
	}
	if mr.PipelineCacheLen() != 1 {
		t.Errorf("cache len %d, want only the working pipeline", mr.PipelineCacheLen())
	}
	if cs := mr.CacheStats(); cs.Hits != 1 || cs.Misses != 3 {
		t.Errorf("cache hits %d misses %d, want 1/3", cs.Hits, cs.Misses)
	}
}

func TestRenderInstances(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()

	e := s.w.CreateEntity()
	_ = world.Add(s.w, e, component.NewMeshRenderer(s.mesh, s.mat))
	inst := component.NewInstance()
	for i := range 3 {
		inst.Add(component.NewInstanceData(mgl32.Translate3D(float32(i), 0, 0), uint32(i)))
	}
	_ = world.Add(s.w, e, inst)

	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.DrawCalls) != 1 || stats.DrawCalls[0].InstanceCount != 3 {
		t.Fatalf("draws = %+v, want one draw of 3 instances", stats.DrawCalls)
	}
	id, ok := s.w.Resources().InstanceBufferID(e)
	if !ok {
		t.Fatal("instance buffer not synced")
	}
	if b, _ := s.w.Resources().Buffer(id); b.Size != 3*resource.InstanceDataSize {
		t.Errorf("instance buffer size = %d", b.Size)
	}
	if c, _ := world.Get[component.Instance](s.w, e); c.IsDirty() {
		t.Error("instances should be clean after sync")
	}

	// Empty instances draw nothing and drop the buffer.
	c, _ := world.Get[component.Instance](s.w, e)
	c.Clear()
	stats, err = mr.Render(s.w, s.r)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.DrawCalls) != 0 {
		t.Errorf("empty instances drew %d calls", len(stats.DrawCalls))
	}
	if _, ok := s.w.Resources().InstanceBufferID(e); ok {
		t.Error("empty instances should remove the buffer")
	}
}

func TestRenderDrawOrder(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()

	late := s.addRenderable(t, s.mat)
	if r, ok := world.Get[component.MeshRenderer](s.w, late); ok {
		r.Layer = 1
	}
	early := s.addRenderable(t, s.mat)

	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.DrawCalls) != 2 || stats.DrawCalls[0].Entity != early || stats.DrawCalls[1].Entity != late {
		t.Errorf("draw order = %+v, want layer 0 first", stats.DrawCalls)
	}
}

func TestRenderLightOverflow(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender(WithLightCaps(light.Caps{Directional: 1, Ambient: 1}))
	defer mr.Destroy()

	for range 3 {
		e := s.w.CreateEntity()
		_ = world.Add(s.w, e, light.NewDirectional(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1}, 1))
	}
	e := s.w.CreateEntity()
	_ = world.Add(s.w, e, light.NewAmbient())

	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DroppedLights != 2 {
		t.Errorf("DroppedLights = %d, want 2", stats.DroppedLights)
	}
	if n := s.w.Resources().BufferCountByType(resource.BufferTypeLight); n != 1 {
		t.Errorf("light buffers = %d, want 1", n)
	}

	// The light buffer persists across frames.
	if _, err := mr.Render(s.w, s.r); err != nil {
		t.Fatal(err)
	}
	if n := s.w.Resources().BufferCountByType(resource.BufferTypeLight); n != 1 {
		t.Errorf("light buffers after second frame = %d, want 1", n)
	}
}

func TestRenderBindingConflict(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()

	c, _ := world.Get[camera.Perspective](s.w, s.camera)
	c.BindIndex = light.Binding

	if _, err := mr.Render(s.w, s.r); !errors.Is(err, ErrBindingConflict) {
		t.Errorf("err = %v, want ErrBindingConflict", err)
	}
}

func TestRenderCameraBindingChangesPipeline(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()
	s.addRenderable(t, s.mat)

	if _, err := mr.Render(s.w, s.r); err != nil {
		t.Fatal(err)
	}
	c, _ := world.Get[camera.Perspective](s.w, s.camera)
	c.BindIndex = 4

	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.PipelinesBuilt != 1 || mr.PipelineCacheLen() != 2 {
		t.Errorf("built %d cache %d, want a new pipeline for the new environment", stats.PipelinesBuilt, mr.PipelineCacheLen())
	}
}

func TestPipelineCacheLimitReleasesEvicted(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender(WithPipelineCacheLimit(1))
	defer mr.Destroy()

	device := s.r.Device()
	other, err := material.NewBasic(device, s.r.Queue(), [4]float32{0, 0, 1, 1}, material.WithLabel("blue"))
	if err != nil {
		t.Fatal(err)
	}
	otherID := s.w.Resources().AddMaterial(other, "blue")

	s.addRenderable(t, s.mat)
	s.addRenderable(t, otherID)

	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.DrawCalls) != 2 {
		t.Fatalf("DrawCalls = %d, want 2", len(stats.DrawCalls))
	}
	if mr.PipelineCacheLen() != 1 || mr.CacheStats().Evictions != 1 {
		t.Errorf("cache len %d evictions %d, want 1/1", mr.PipelineCacheLen(), mr.CacheStats().Evictions)
	}
	if s.basic.PipelineCount() != 0 || other.PipelineCount() != 1 {
		t.Errorf("pipelines red=%d blue=%d, want evicted one released", s.basic.PipelineCount(), other.PipelineCount())
	}
}

func TestInvalidateMaterial(t *testing.T) {
	s := newScene(t)
	mr := NewMeshRender()
	defer mr.Destroy()
	s.addRenderable(t, s.mat)

	if _, err := mr.Render(s.w, s.r); err != nil {
		t.Fatal(err)
	}
	if n := mr.InvalidateMaterial(s.mat); n != 1 {
		t.Errorf("InvalidateMaterial = %d, want 1", n)
	}
	if mr.PipelineCacheLen() != 0 || s.basic.PipelineCount() != 0 {
		t.Error("invalidated pipelines should be released")
	}
	stats, err := mr.Render(s.w, s.r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.PipelinesBuilt != 1 {
		t.Errorf("PipelinesBuilt = %d, want rebuild", stats.PipelinesBuilt)
	}
}

func TestRendererSizeAndSurface(t *testing.T) {
	device, queue := gputest.NoopDevice(t)
	if _, err := NewRenderer(device, queue, WithSize(0, 10)); !errors.Is(err, ErrZeroSize) {
		t.Errorf("zero size err = %v", err)
	}
	if _, err := NewRenderer(nil, queue); !errors.Is(err, resource.ErrNilDevice) {
		t.Errorf("nil device err = %v", err)
	}

	r, err := NewRenderer(device, queue, WithSize(32, 16), WithClearColor(gputypes.Color{R: 1, A: 1}))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	if w, h := r.Size(); w != 32 || h != 16 || r.Aspect() != 2 {
		t.Errorf("Size = %dx%d aspect %v", w, h, r.Aspect())
	}
	if err := r.Resize(0, 1); !errors.Is(err, ErrZeroSize) {
		t.Errorf("Resize(0, 1) err = %v", err)
	}
	if err := r.Resize(8, 8); err != nil {
		t.Fatal(err)
	}
	if err := r.submitFrame("test", nil); err != nil {
		t.Fatalf("submitFrame: %v", err)
	}
	if r.ColorView() == nil {
		t.Error("offscreen mode should own a color view")
	}
	if w, h := r.targets.width, r.targets.height; w != 8 || h != 8 {
		t.Errorf("targets = %dx%d, want 8x8", w, h)
	}

	surface, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_surface",
		Size:          hal.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.ColorFormat(),
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer device.DestroyTexture(surface)
	view, err := device.CreateTextureView(surface, &hal.TextureViewDescriptor{Label: "test_surface_view"})
	if err != nil {
		t.Fatal(err)
	}
	defer device.DestroyTextureView(view)

	r.SetSurfaceTarget(view, 8, 8)
	if r.targets.depthTex != nil {
		t.Error("switching to surface mode should drop owned targets")
	}
	if err := r.submitFrame("test", nil); err != nil {
		t.Fatalf("submitFrame (surface): %v", err)
	}
	if r.targets.colorTex != nil || r.ColorView() != view {
		t.Error("surface mode should render into the caller's view")
	}
}

// stalledQueue never reports a submission complete.
type stalledQueue struct {
	hal.Queue
}

func (stalledQueue) PollCompleted() uint64 { return 0 }

func TestSubmitFrameTimesOut(t *testing.T) {
	device, queue := gputest.NoopDevice(t)
	r, err := NewRenderer(device, stalledQueue{queue}, WithSize(8, 8),
		WithSubmitTimeout(5*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	if err := r.submitFrame("test", nil); !errors.Is(err, ErrGPUTimeout) {
		t.Fatalf("submitFrame err = %v, want ErrGPUTimeout", err)
	}
	if r.Frames() != 0 {
		t.Errorf("Frames = %d after timeout, want 0", r.Frames())
	}
}
