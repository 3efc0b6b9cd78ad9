package component

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/ecs"
)

// Transform places an entity relative to its parent, or to the world when
// Parent is invalid. An entity with a Transform and no Instance is drawn
// as a single instance at its world matrix.
//
// Parent and Children are maintained by system.AddChild and
// system.RemoveChild; the world matrix by the transform system.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Parent   ecs.Entity
	Children []ecs.Entity

	world    mgl32.Mat4
	hasWorld bool
}

// NewTransform returns the identity transform at position.
func NewTransform(position mgl32.Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns the local matrix: translation * rotation * scale.
func (t *Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// WorldMatrix returns the matrix computed by the last UpdateWorld, or the
// local matrix if the transform was never propagated.
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	if !t.hasWorld {
		return t.Matrix()
	}
	return t.world
}

// UpdateWorld recomputes the world matrix as parent * local. A nil parent
// makes the local matrix the world matrix.
func (t *Transform) UpdateWorld(parent *mgl32.Mat4) mgl32.Mat4 {
	local := t.Matrix()
	if parent != nil {
		local = parent.Mul4(local)
	}
	t.world = local
	t.hasWorld = true
	return local
}

// HasParent reports whether t is attached to a parent.
func (t *Transform) HasParent() bool { return t.Parent.IsValid() }

// Translate moves the transform by delta.
func (t *Transform) Translate(delta mgl32.Vec3) { t.Position = t.Position.Add(delta) }

// Rotate applies q after the current rotation.
func (t *Transform) Rotate(q mgl32.Quat) { t.Rotation = q.Mul(t.Rotation).Normalize() }

// Forward returns the local -Z axis.
func (t *Transform) Forward() mgl32.Vec3 { return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1}) }

// Right returns the local +X axis.
func (t *Transform) Right() mgl32.Vec3 { return t.Rotation.Rotate(mgl32.Vec3{1, 0, 0}) }

// Up returns the local +Y axis.
func (t *Transform) Up() mgl32.Vec3 { return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0}) }

// AddChild records child, ignoring duplicates.
func (t *Transform) AddChild(child ecs.Entity) {
	if !slices.Contains(t.Children, child) {
		t.Children = append(t.Children, child)
	}
}

// RemoveChild forgets child and reports whether it was present.
func (t *Transform) RemoveChild(child ecs.Entity) bool {
	n := len(t.Children)
	t.Children = slices.DeleteFunc(t.Children, func(c ecs.Entity) bool { return c == child })
	return len(t.Children) != n
}

// InstanceData returns the single-instance record at the world matrix.
func (t *Transform) InstanceData(id uint32) InstanceData {
	return NewInstanceData(t.WorldMatrix(), id)
}
