// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// VertexFormat tags the vertex layout of a mesh.
type VertexFormat uint8

const (
	// VertexFormatPosition is vec3 position at location 0 (12 bytes).
	VertexFormatPosition VertexFormat = iota
	// VertexFormatPositionColor adds vec4 color at location 1 (28 bytes).
	VertexFormatPositionColor
	// VertexFormatPositionNormalUV adds vec3 normal at location 1 and
	// vec2 uv at location 2 (32 bytes).
	VertexFormatPositionNormalUV
)

// Stride returns the byte size of one vertex.
func (f VertexFormat) Stride() uint64 {
	switch f {
	case VertexFormatPositionColor:
		return 28
	case VertexFormatPositionNormalUV:
		return 32
	default:
		return 12
	}
}

// String returns the name of the format.
func (f VertexFormat) String() string {
	switch f {
	case VertexFormatPosition:
		return "Position"
	case VertexFormatPositionColor:
		return "PositionColor"
	case VertexFormatPositionNormalUV:
		return "PositionNormalUV"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// Layout returns the per-vertex buffer layout bound at slot 0.
func (f VertexFormat) Layout() gputypes.VertexBufferLayout {
	attrs := []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0}, // position
	}
	switch f {
	case VertexFormatPositionColor:
		attrs = append(attrs,
			gputypes.VertexAttribute{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1}, // color
		)
	case VertexFormatPositionNormalUV:
		attrs = append(attrs,
			gputypes.VertexAttribute{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // normal
			gputypes.VertexAttribute{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2}, // uv
		)
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: f.Stride(),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// Vertex is one VertexFormatPositionNormalUV vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// EncodeVertices packs vertices in VertexFormatPositionNormalUV order.
func EncodeVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*32)
	for i, v := range vertices {
		b := buf[i*32:]
		putFloats(b[0:12], v.Position[:])
		putFloats(b[12:24], v.Normal[:])
		putFloats(b[24:32], v.UV[:])
	}
	return buf
}

// EncodePositions packs bare positions in VertexFormatPosition order.
func EncodePositions(positions [][3]float32) []byte {
	buf := make([]byte, len(positions)*12)
	for i, p := range positions {
		putFloats(buf[i*12:i*12+12], p[:])
	}
	return buf
}

func putFloats(dst []byte, vals []float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func encodeIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// Mesh is an indexed triangle list resident on the GPU.
type Mesh struct {
	device hal.Device
	queue  hal.Queue
	label  string

	vertexBuffer hal.Buffer
	indexBuffer  hal.Buffer
	vertexCount  uint32
	indexCount   uint32
	format       VertexFormat
	layout       gputypes.VertexBufferLayout
}

// NewMesh uploads vertex and index data. vertices must hold a whole
// number of format.Stride() records.
func NewMesh(device hal.Device, queue hal.Queue, label string, format VertexFormat, vertices []byte, indices []uint32) (*Mesh, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	m := &Mesh{
		device: device,
		queue:  queue,
		label:  label,
		format: format,
		layout: format.Layout(),
	}
	if err := m.SetData(vertices, indices); err != nil {
		return nil, err
	}
	return m, nil
}

// SetData replaces the mesh contents, reallocating both buffers.
// On error the previous contents are kept.
func (m *Mesh) SetData(vertices []byte, indices []uint32) error {
	stride := m.format.Stride()
	if len(vertices) == 0 || uint64(len(vertices))%stride != 0 {
		return fmt.Errorf("%w: %d bytes for %s (stride %d)", ErrVertexData, len(vertices), m.format, stride)
	}
	if len(indices) == 0 {
		return ErrNoIndices
	}

	vb, err := createGPUBuffer(m.device, m.queue, m.label+"_vertices",
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst, vertices)
	if err != nil {
		return err
	}
	ib, err := createGPUBuffer(m.device, m.queue, m.label+"_indices",
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst, encodeIndices(indices))
	if err != nil {
		m.device.DestroyBuffer(vb)
		return err
	}

	m.destroyBuffers()
	m.vertexBuffer = vb
	m.indexBuffer = ib
	//nolint:gosec // G115: vertex and index counts are bounded by GPU buffer limits
	m.vertexCount = uint32(uint64(len(vertices)) / stride)
	//nolint:gosec // G115: see above
	m.indexCount = uint32(len(indices))
	return nil
}

// Label returns the debug label.
func (m *Mesh) Label() string { return m.label }

// VertexBuffer returns the buffer bound at vertex slot 0.
func (m *Mesh) VertexBuffer() hal.Buffer { return m.vertexBuffer }

// IndexBuffer returns the index buffer.
func (m *Mesh) IndexBuffer() hal.Buffer { return m.indexBuffer }

// IndexFormat is always 32-bit.
func (m *Mesh) IndexFormat() gputypes.IndexFormat { return gputypes.IndexFormatUint32 }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() uint32 { return m.vertexCount }

// IndexCount returns the number of indices drawn per instance.
func (m *Mesh) IndexCount() uint32 { return m.indexCount }

// Format returns the vertex format tag.
func (m *Mesh) Format() VertexFormat { return m.format }

// Layout returns a copy of the vertex buffer layout.
func (m *Mesh) Layout() gputypes.VertexBufferLayout { return cloneLayout(m.layout) }

// Destroy releases the GPU buffers. Safe to call more than once.
func (m *Mesh) Destroy() {
	if m.device == nil {
		return
	}
	m.destroyBuffers()
}

func (m *Mesh) destroyBuffers() {
	if m.indexBuffer != nil {
		m.device.DestroyBuffer(m.indexBuffer)
		m.indexBuffer = nil
	}
	if m.vertexBuffer != nil {
		m.device.DestroyBuffer(m.vertexBuffer)
		m.vertexBuffer = nil
	}
}
