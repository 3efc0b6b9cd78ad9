package g3d

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/camera"
	"github.com/gogpu/g3d/component"
	"github.com/gogpu/g3d/internal/gputest"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/resource"
	"github.com/gogpu/g3d/system"
	"github.com/gogpu/g3d/world"
)

func TestEngineFrame(t *testing.T) {
	device, queue := gputest.NoopDevice(t)
	eng, err := NewEngine(device, queue, WithSize(64, 48), WithPipelineCacheLimit(8))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	w := eng.World()
	verts, idx := resource.Cube()
	mesh, err := resource.NewMesh(device, queue, "cube",
		resource.VertexFormatPositionNormalUV, resource.EncodeVertices(verts), idx)
	if err != nil {
		t.Fatal(err)
	}
	red, err := material.NewBasic(device, queue, [4]float32{1, 0, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	cube := w.CreateEntity()
	_ = world.Add(w, cube, component.NewMeshRenderer(
		w.Resources().AddMesh(mesh, "cube"),
		w.Resources().AddMaterial(red, "red")))
	_ = world.Add(w, cube, component.NewTransform(mgl32.Vec3{0, 0, -3}))

	cam := w.CreateEntity()
	_ = world.Add(w, cam, camera.NewPerspective())
	if err := w.SetMainCamera(cam, camera.KindPerspective); err != nil {
		t.Fatal(err)
	}

	var ticks int
	err = eng.AddSystem(system.UpdateFunc{Label: "spin", Fn: func(w *world.World, dt time.Duration) error {
		ticks++
		tr, _ := world.Get[component.Transform](w, cube)
		tr.Rotation = mgl32.QuatRotate(float32(dt.Seconds()), mgl32.Vec3{0, 1, 0}).Mul(tr.Rotation)
		return nil
	}})
	if err != nil {
		t.Fatal(err)
	}

	for range 3 {
		stats, err := eng.Frame(16 * time.Millisecond)
		if err != nil {
			t.Fatalf("Frame: %v", err)
		}
		if len(stats.DrawCalls) != 1 || stats.DrawCalls[0].IndexCount != 36 {
			t.Fatalf("DrawCalls = %+v, want one cube draw", stats.DrawCalls)
		}
	}
	if ticks != 3 {
		t.Errorf("update ran %d times, want 3", ticks)
	}
	if eng.MeshRender().PipelineCacheLen() != 1 {
		t.Errorf("PipelineCacheLen = %d, want 1", eng.MeshRender().PipelineCacheLen())
	}
	if eng.Renderer().Frames() != 3 {
		t.Errorf("Frames = %d, want 3", eng.Renderer().Frames())
	}
}

func TestEngineResizeUpdatesCameras(t *testing.T) {
	device, queue := gputest.NoopDevice(t)
	eng, err := NewEngine(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	w := eng.World()
	cam := w.CreateEntity()
	_ = world.Add(w, cam, camera.NewPerspective())

	if err := eng.Resize(400, 200); err != nil {
		t.Fatal(err)
	}
	c, _ := world.Get[camera.Perspective](w, cam)
	if c.Aspect != 2 || !c.IsDirty() {
		t.Errorf("Aspect = %v dirty = %v, want 2 and dirty", c.Aspect, c.IsDirty())
	}
	if err := eng.Resize(0, 0); !errors.Is(err, render.ErrZeroSize) {
		t.Errorf("Resize(0, 0) err = %v", err)
	}
}

type namedOnly struct{}

func (namedOnly) Name() string { return "nothing" }

func TestEngineAddSystemRejectsUnknown(t *testing.T) {
	device, queue := gputest.NoopDevice(t)
	eng, err := NewEngine(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	if err := eng.AddSystem(namedOnly{}); err == nil {
		t.Error("AddSystem should reject a system with no Update or Render")
	}
	if err := eng.AddSystem(eng.MeshRender()); !errors.Is(err, system.ErrDuplicateSystem) {
		t.Errorf("re-adding mesh render err = %v", err)
	}
}

func TestEngineClosed(t *testing.T) {
	device, queue := gputest.NoopDevice(t)
	eng, err := NewEngine(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	eng.Close()
	eng.Close()
	if _, err := eng.Frame(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame after Close err = %v", err)
	}
}

func TestEngineFrameDrawsChildAtWorldPosition(t *testing.T) {
	device, queue := gputest.NoopDevice(t)
	eng, err := NewEngine(device, queue, WithSize(32, 32))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	w := eng.World()
	verts, idx := resource.Triangle()
	mesh, err := resource.NewMesh(device, queue, "tri",
		resource.VertexFormatPositionNormalUV, resource.EncodeVertices(verts), idx)
	if err != nil {
		t.Fatal(err)
	}
	mat, err := material.NewBasic(device, queue, [4]float32{1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}

	parent := w.CreateEntity()
	_ = world.Add(w, parent, component.NewTransform(mgl32.Vec3{4, 0, 0}))
	child := w.CreateEntity()
	_ = world.Add(w, child, component.NewTransform(mgl32.Vec3{0, 2, 0}))
	_ = world.Add(w, child, component.NewMeshRenderer(
		w.Resources().AddMesh(mesh, "tri"), w.Resources().AddMaterial(mat, "white")))
	if err := system.AddChild(w, parent, child); err != nil {
		t.Fatal(err)
	}
	cam := w.CreateEntity()
	_ = world.Add(w, cam, camera.NewPerspective())
	_ = w.SetMainCamera(cam, camera.KindPerspective)

	if _, err := eng.Frame(time.Millisecond); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	id, ok := w.Resources().InstanceBufferID(child)
	if !ok {
		t.Fatal("child has no instance buffer")
	}
	buf, _ := w.Resources().Buffer(id)
	got := gputest.ReadBuffer(t, device, buf.Buffer, resource.InstanceDataSize)
	want := component.NewInstanceData(mgl32.Translate3D(4, 2, 0), uint32(child))
	if !bytes.Equal(got, want.AppendBytes(nil)) {
		t.Error("instance record should carry the child's world matrix")
	}
}
