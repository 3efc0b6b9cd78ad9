package system

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/component"
	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/world"
)

var (
	// ErrNoTransform is returned when a hierarchy operation names an
	// entity without a Transform.
	ErrNoTransform = errors.New("system: entity has no transform")

	// ErrHierarchyCycle is returned when parenting would make an entity
	// its own ancestor.
	ErrHierarchyCycle = errors.New("system: hierarchy cycle")
)

// Transforms propagates world matrices down the transform hierarchy. It
// recomputes every matrix each update, so Position, Rotation and Scale
// may be written directly.
type Transforms struct{}

var _ Updater = Transforms{}

// Name implements System.
func (Transforms) Name() string { return "transform" }

// Update implements Updater. Roots are transforms without a live parent
// Transform; each root's subtree is walked depth first.
func (Transforms) Update(w *world.World, _ time.Duration) error {
	var roots []ecs.Entity
	for e, tr := range world.Query[component.Transform](w) {
		if !tr.HasParent() || !world.Has[component.Transform](w, tr.Parent) {
			roots = append(roots, e)
		}
	}
	visited := make(map[ecs.Entity]struct{}, world.Count[component.Transform](w))
	for _, root := range roots {
		propagate(w, root, nil, visited)
	}
	return nil
}

func propagate(w *world.World, e ecs.Entity, parent *mgl32.Mat4, visited map[ecs.Entity]struct{}) {
	if _, seen := visited[e]; seen {
		return
	}
	visited[e] = struct{}{}
	tr, ok := world.Get[component.Transform](w, e)
	if !ok {
		return
	}
	m := tr.UpdateWorld(parent)
	// children whose Parent was rewritten elsewhere are stale entries
	for _, child := range tr.Children {
		if c, ok := world.Get[component.Transform](w, child); ok && c.Parent == e {
			propagate(w, child, &m, visited)
		}
	}
}

// AddChild attaches child under parent, detaching it from any previous
// parent first. Both entities need a Transform.
func AddChild(w *world.World, parent, child ecs.Entity) error {
	pt, ok := world.Get[component.Transform](w, parent)
	if !ok {
		return fmt.Errorf("%w: parent %v", ErrNoTransform, parent)
	}
	ct, ok := world.Get[component.Transform](w, child)
	if !ok {
		return fmt.Errorf("%w: child %v", ErrNoTransform, child)
	}
	if parent == child || slices.Contains(PathToRoot(w, parent), child) {
		return fmt.Errorf("%w: %v under %v", ErrHierarchyCycle, child, parent)
	}
	if ct.HasParent() {
		RemoveChild(w, ct.Parent, child)
	}
	ct.Parent = parent
	pt.AddChild(child)
	return nil
}

// RemoveChild detaches child from parent. It reports whether child was
// listed under parent.
func RemoveChild(w *world.World, parent, child ecs.Entity) bool {
	removed := false
	if pt, ok := world.Get[component.Transform](w, parent); ok {
		removed = pt.RemoveChild(child)
	}
	if ct, ok := world.Get[component.Transform](w, child); ok && ct.Parent == parent {
		ct.Parent = ecs.InvalidEntity
	}
	return removed
}

// Descendants returns every entity below e, depth first.
func Descendants(w *world.World, e ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	seen := map[ecs.Entity]struct{}{e: {}}
	var walk func(ecs.Entity)
	walk = func(n ecs.Entity) {
		tr, ok := world.Get[component.Transform](w, n)
		if !ok {
			return
		}
		for _, c := range tr.Children {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
			walk(c)
		}
	}
	walk(e)
	return out
}

// PathToRoot returns the chain from the root down to e, inclusive.
func PathToRoot(w *world.World, e ecs.Entity) []ecs.Entity {
	path := []ecs.Entity{e}
	for cur := e; ; {
		tr, ok := world.Get[component.Transform](w, cur)
		if !ok || !tr.HasParent() || slices.Contains(path, tr.Parent) {
			break
		}
		cur = tr.Parent
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}
