package system

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/component"
	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/internal/gputest"
	"github.com/gogpu/g3d/world"
)

func newHierarchyWorld(t *testing.T, positions ...mgl32.Vec3) (*world.World, []ecs.Entity) {
	t.Helper()
	device, queue := gputest.NoopDevice(t)
	w := world.New(device, queue)
	t.Cleanup(w.Cleanup)
	es := make([]ecs.Entity, len(positions))
	for i, p := range positions {
		es[i] = w.CreateEntity()
		if err := world.Add(w, es[i], component.NewTransform(p)); err != nil {
			t.Fatal(err)
		}
	}
	return w, es
}

func worldOrigin(t *testing.T, w *world.World, e ecs.Entity) mgl32.Vec3 {
	t.Helper()
	tr, ok := world.Get[component.Transform](w, e)
	if !ok {
		t.Fatalf("entity %v has no transform", e)
	}
	return tr.WorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
}

func TestTransformsPropagateFromRoots(t *testing.T) {
	w, es := newHierarchyWorld(t,
		mgl32.Vec3{10, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 2}, mgl32.Vec3{5, 5, 5})
	root, mid, leaf, loose := es[0], es[1], es[2], es[3]
	if err := AddChild(w, root, mid); err != nil {
		t.Fatal(err)
	}
	if err := AddChild(w, mid, leaf); err != nil {
		t.Fatal(err)
	}

	if err := (Transforms{}).Update(w, 0); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		e    ecs.Entity
		want mgl32.Vec3
	}{
		{"root", root, mgl32.Vec3{10, 0, 0}},
		{"mid", mid, mgl32.Vec3{10, 1, 0}},
		{"leaf", leaf, mgl32.Vec3{10, 1, 2}},
		{"unparented", loose, mgl32.Vec3{5, 5, 5}},
	}
	for _, tt := range tests {
		if got := worldOrigin(t, w, tt.e); !got.ApproxEqual(tt.want) {
			t.Errorf("%s origin = %v, want %v", tt.name, got, tt.want)
		}
	}

	// direct field writes are picked up on the next update
	rt, _ := world.Get[component.Transform](w, root)
	rt.Position = mgl32.Vec3{0, 0, 0}
	rt.Scale = mgl32.Vec3{2, 2, 2}
	if err := (Transforms{}).Update(w, 0); err != nil {
		t.Fatal(err)
	}
	if got := worldOrigin(t, w, leaf); !got.ApproxEqual(mgl32.Vec3{0, 2, 4}) {
		t.Errorf("leaf origin after parent change = %v, want (0,2,4)", got)
	}
}

func TestTransformsOrphanBecomesRoot(t *testing.T) {
	w, es := newHierarchyWorld(t, mgl32.Vec3{3, 0, 0}, mgl32.Vec3{0, 1, 0})
	if err := AddChild(w, es[0], es[1]); err != nil {
		t.Fatal(err)
	}
	w.RemoveEntity(es[0])
	if err := (Transforms{}).Update(w, 0); err != nil {
		t.Fatal(err)
	}
	if got := worldOrigin(t, w, es[1]); !got.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
		t.Errorf("orphan origin = %v, want its local (0,1,0)", got)
	}
}

func TestHierarchyQueries(t *testing.T) {
	w, es := newHierarchyWorld(t, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{})
	a, b, c, d := es[0], es[1], es[2], es[3]
	for _, link := range [][2]ecs.Entity{{a, b}, {b, c}, {a, d}} {
		if err := AddChild(w, link[0], link[1]); err != nil {
			t.Fatal(err)
		}
	}

	if got := Descendants(w, a); !slices.Equal(got, []ecs.Entity{b, c, d}) {
		t.Errorf("Descendants(a) = %v, want [%v %v %v]", got, b, c, d)
	}
	if got := PathToRoot(w, c); !slices.Equal(got, []ecs.Entity{a, b, c}) {
		t.Errorf("PathToRoot(c) = %v, want [%v %v %v]", got, a, b, c)
	}

	// reparenting detaches from the old parent
	if err := AddChild(w, d, c); err != nil {
		t.Fatal(err)
	}
	bt, _ := world.Get[component.Transform](w, b)
	if len(bt.Children) != 0 {
		t.Errorf("old parent still lists children %v", bt.Children)
	}
	if got := PathToRoot(w, c); !slices.Equal(got, []ecs.Entity{a, d, c}) {
		t.Errorf("PathToRoot(c) after reparent = %v", got)
	}

	if !RemoveChild(w, d, c) || RemoveChild(w, d, c) {
		t.Error("RemoveChild should report the link once")
	}
	if ct, _ := world.Get[component.Transform](w, c); ct.HasParent() {
		t.Error("removed child still has a parent")
	}
}

func TestAddChildErrors(t *testing.T) {
	w, es := newHierarchyWorld(t, mgl32.Vec3{}, mgl32.Vec3{})
	a, b := es[0], es[1]
	bare := w.CreateEntity()

	if err := AddChild(w, a, b); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name          string
		parent, child ecs.Entity
		want          error
	}{
		{"self", a, a, ErrHierarchyCycle},
		{"ancestor under descendant", b, a, ErrHierarchyCycle},
		{"parent without transform", bare, b, ErrNoTransform},
		{"child without transform", a, bare, ErrNoTransform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := AddChild(w, tt.parent, tt.child); !errors.Is(err, tt.want) {
				t.Errorf("AddChild = %v, want %v", err, tt.want)
			}
		})
	}
}
