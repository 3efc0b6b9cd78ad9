// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package camera

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/resource"
)

// Kind distinguishes the camera component types.
type Kind uint8

const (
	KindPerspective Kind = iota
	KindOrthographic
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPerspective:
		return "Perspective"
	case KindOrthographic:
		return "Orthographic"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Kinds lists every camera kind in main-camera lookup order.
var Kinds = []Kind{KindPerspective, KindOrthographic}

// UniformSize is the byte size of Uniform.
const UniformSize = 208

// Data is the state shared by every camera kind.
type Data struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Near     float32
	Far      float32

	// BindIndex is the binding slot of the camera uniform in the
	// environment bind group.
	BindIndex uint32
	IsMain    bool

	// Buffer is assigned by Refresh on first upload.
	Buffer resource.BufferID

	dirty bool
}

func newData(position mgl32.Vec3, near, far float32) Data {
	return Data{
		Position: position,
		Up:       mgl32.Vec3{0, 1, 0},
		Near:     near,
		Far:      far,
		Buffer:   resource.InvalidBufferID,
		dirty:    true,
	}
}

// Base returns d itself so embedding types satisfy Camera.
func (d *Data) Base() *Data { return d }

// MarkDirty forces the next Refresh to rewrite the uniform.
func (d *Data) MarkDirty() { d.dirty = true }

// IsDirty reports whether the uniform is stale.
func (d *Data) IsDirty() bool { return d.dirty }

// SetPosition moves the camera.
func (d *Data) SetPosition(p mgl32.Vec3) {
	d.Position = p
	d.dirty = true
}

// LookAt points the camera at target.
func (d *Data) LookAt(target mgl32.Vec3) {
	d.Target = target
	d.dirty = true
}

// SetClip sets the near and far planes.
func (d *Data) SetClip(near, far float32) {
	d.Near, d.Far = near, far
	d.dirty = true
}

// View returns the right-handed look-at matrix.
func (d *Data) View() mgl32.Mat4 {
	return mgl32.LookAtV(d.Position, d.Target, d.Up)
}

// depthRemap maps OpenGL clip depth [-w, w] to the [0, w] range WebGPU
// clips against: z' = 0.5z + 0.5w.
var depthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera is implemented by *Perspective and *Orthographic.
type Camera interface {
	Base() *Data
	Kind() Kind
	Projection() mgl32.Mat4
	// SetAspect updates the aspect ratio after a resize.
	SetAspect(aspect float32)
}

// Uniform is the GPU layout of a camera.
type Uniform struct {
	ViewProjection mgl32.Mat4
	Projection     mgl32.Mat4
	View           mgl32.Mat4
	Position       [4]float32
}

// ComputeUniform evaluates c's matrices.
func ComputeUniform(c Camera) Uniform {
	d := c.Base()
	view := d.View()
	proj := c.Projection()
	return Uniform{
		ViewProjection: proj.Mul4(view),
		Projection:     proj,
		View:           view,
		Position:       [4]float32{d.Position.X(), d.Position.Y(), d.Position.Z(), 1},
	}
}

// Bytes encodes u in std140 order.
func (u *Uniform) Bytes() []byte {
	buf := make([]byte, 0, UniformSize)
	for _, m := range []*mgl32.Mat4{&u.ViewProjection, &u.Projection, &u.View} {
		for _, v := range m {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	for _, v := range u.Position {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// Refresh uploads c's uniform. The buffer is created on first call; after
// that it is rewritten only when c is dirty. It returns the buffer id.
func Refresh(c Camera, m *resource.Manager) (resource.BufferID, error) {
	d := c.Base()
	if _, ok := m.Buffer(d.Buffer); ok && !d.dirty {
		return d.Buffer, nil
	}

	u := ComputeUniform(c)
	data := u.Bytes()
	if _, ok := m.Buffer(d.Buffer); ok {
		if err := m.UpdateBuffer(d.Buffer, data, 0); err != nil {
			return d.Buffer, fmt.Errorf("camera: update uniform: %w", err)
		}
	} else {
		id, err := m.CreateBuffer(resource.BufferTypeCamera, resource.BufferUsageUniform, data,
			resource.WithBindIndex(d.BindIndex))
		if err != nil {
			return resource.InvalidBufferID, fmt.Errorf("camera: create uniform: %w", err)
		}
		d.Buffer = id
	}
	d.dirty = false
	return d.Buffer, nil
}

// Release destroys the camera's uniform buffer.
func Release(c Camera, m *resource.Manager) {
	d := c.Base()
	if d.Buffer.IsValid() {
		m.DestroyBuffer(d.Buffer)
	}
	d.Buffer = resource.InvalidBufferID
	d.dirty = true
}
