package camera

import "github.com/go-gl/mathgl/mgl32"

// Orthographic is a parallel-projection camera. Width is the visible
// extent along X at zoom 1; height follows from Aspect.
type Orthographic struct {
	Data

	Width  float32
	Aspect float32
	Zoom   float32
}

var _ Camera = (*Orthographic)(nil)

// NewOrthographic returns a camera at (0, 0, 10) looking at the origin,
// 10 units wide, 16:9 aspect.
func NewOrthographic() Orthographic {
	return Orthographic{
		Data:   newData(mgl32.Vec3{0, 0, 10}, 0.1, 1000),
		Width:  10,
		Aspect: 16.0 / 9.0,
		Zoom:   1,
	}
}

// Kind implements Camera.
func (*Orthographic) Kind() Kind { return KindOrthographic }

// Projection implements Camera. Depth maps to [0, 1], near to far.
func (c *Orthographic) Projection() mgl32.Mat4 {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	halfW := c.Width / 2 / zoom
	halfH := halfW
	if c.Aspect > 0 {
		halfH = halfW / c.Aspect
	}
	return depthRemap.Mul4(mgl32.Ortho(-halfW, halfW, -halfH, halfH, c.Near, c.Far))
}

// SetAspect implements Camera.
func (c *Orthographic) SetAspect(aspect float32) {
	c.Aspect = aspect
	c.dirty = true
}

// SetZoom scales the visible extent; 2 shows half as much.
func (c *Orthographic) SetZoom(zoom float32) {
	c.Zoom = zoom
	c.dirty = true
}
