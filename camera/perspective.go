package camera

import "github.com/go-gl/mathgl/mgl32"

// Perspective is a pinhole camera.
type Perspective struct {
	Data

	// FovY is the vertical field of view in radians.
	FovY   float32
	Aspect float32
}

var _ Camera = (*Perspective)(nil)

// NewPerspective returns a camera at (0, 1, 3) looking at the origin with
// a 45 degree field of view, 16:9 aspect and clip planes 0.1 to 1000.
func NewPerspective() Perspective {
	return Perspective{
		Data:   newData(mgl32.Vec3{0, 1, 3}, 0.1, 1000),
		FovY:   mgl32.DegToRad(45),
		Aspect: 16.0 / 9.0,
	}
}

// Kind implements Camera.
func (*Perspective) Kind() Kind { return KindPerspective }

// Projection implements Camera. Depth maps to [0, 1], near to far.
func (c *Perspective) Projection() mgl32.Mat4 {
	return depthRemap.Mul4(mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far))
}

// SetAspect implements Camera.
func (c *Perspective) SetAspect(aspect float32) {
	c.Aspect = aspect
	c.dirty = true
}

// SetFovY sets the vertical field of view in radians.
func (c *Perspective) SetFovY(fov float32) {
	c.FovY = fov
	c.dirty = true
}
