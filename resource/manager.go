// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/ecs"
	"github.com/gogpu/g3d/internal/logging"
)

// InstanceLayoutName is the name the standard instance layout is
// registered under.
const InstanceLayoutName = "instance"

// Manager owns GPU resources behind integer handles.
//
// Manager is not safe for concurrent use.
type Manager struct {
	device hal.Device
	queue  hal.Queue

	meshIDs, materialIDs, bufferIDs, layoutIDs idCounter

	meshes        map[MeshID]*Mesh
	meshNames     map[string]MeshID
	materials     map[MaterialID]Material
	materialNames map[string]MaterialID

	buffers       map[BufferID]*BufferResource
	buffersByType map[BufferType][]BufferID
	bufferNames   map[string]BufferID

	layouts     map[BufferLayoutID]*BufferLayout
	layoutNames map[string]BufferLayoutID

	instanceBuffers map[ecs.Entity]BufferID

	cleaned bool
}

// NewManager creates a manager for device and queue and registers the
// standard instance layout.
func NewManager(device hal.Device, queue hal.Queue) *Manager {
	m := &Manager{
		device:          device,
		queue:           queue,
		meshes:          make(map[MeshID]*Mesh),
		meshNames:       make(map[string]MeshID),
		materials:       make(map[MaterialID]Material),
		materialNames:   make(map[string]MaterialID),
		buffers:         make(map[BufferID]*BufferResource),
		buffersByType:   make(map[BufferType][]BufferID),
		bufferNames:     make(map[string]BufferID),
		layouts:         make(map[BufferLayoutID]*BufferLayout),
		layoutNames:     make(map[string]BufferLayoutID),
		instanceBuffers: make(map[ecs.Entity]BufferID),
	}
	m.RegisterBufferLayout(InstanceLayoutName, InstanceBufferLayout())
	return m
}

// Device returns the device resources are created on.
func (m *Manager) Device() hal.Device { return m.device }

// Queue returns the queue writes are submitted to.
func (m *Manager) Queue() hal.Queue { return m.queue }

// CreateBuffer allocates a GPU buffer holding data and indexes it by type
// and, when WithLabel is given, by name. A later buffer with the same
// label takes over the name.
func (m *Manager) CreateBuffer(typ BufferType, usage BufferUsage, data []byte, opts ...BufferOption) (BufferID, error) {
	if m.device == nil || m.queue == nil {
		return InvalidBufferID, ErrNilDevice
	}
	if len(data) == 0 {
		return InvalidBufferID, ErrEmptyBuffer
	}
	var o bufferOptions
	for _, opt := range opts {
		opt(&o)
	}
	label := o.label
	if label == "" {
		label = typ.String() + " Buffer"
	}

	buf, err := createGPUBuffer(m.device, m.queue, label, usage.GPUUsage(), data)
	if err != nil {
		return InvalidBufferID, err
	}

	id := BufferID(m.bufferIDs.take())
	m.buffers[id] = &BufferResource{
		Buffer:       buf,
		Type:         typ,
		Usage:        usage,
		Size:         uint64(len(data)),
		BindIndex:    o.bindIndex,
		HasBindIndex: o.hasBindIndex,
		Label:        o.label,
		device:       m.device,
	}
	m.buffersByType[typ] = append(m.buffersByType[typ], id)
	if o.label != "" {
		m.bufferNames[o.label] = id
	}
	logging.Logger().Debug("resource: buffer created",
		"id", uint32(id), "type", typ.String(), "usage", usage.String(), "size", len(data))
	return id, nil
}

// Buffer returns the buffer for id.
func (m *Manager) Buffer(id BufferID) (*BufferResource, bool) {
	b, ok := m.buffers[id]
	return b, ok
}

// BufferByName returns the buffer registered under name.
func (m *Manager) BufferByName(name string) (BufferID, *BufferResource, bool) {
	id, ok := m.bufferNames[name]
	if !ok {
		return InvalidBufferID, nil, false
	}
	b, ok := m.buffers[id]
	return id, b, ok
}

// BuffersByType returns the ids of every live buffer of typ, oldest first.
func (m *Manager) BuffersByType(typ BufferType) []BufferID {
	ids := m.buffersByType[typ]
	out := make([]BufferID, len(ids))
	copy(out, ids)
	return out
}

// UpdateBuffer writes data at offset. The write is rejected, logged and
// dropped when it would run past the buffer's stored size; the buffer is
// never reallocated.
func (m *Manager) UpdateBuffer(id BufferID, data []byte, offset uint64) error {
	b, ok := m.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBufferNotFound, id)
	}
	end := offset + uint64(len(data))
	if end > b.Size || end < offset {
		logging.Logger().Warn("resource: buffer write dropped",
			"id", uint32(id), "offset", offset, "len", len(data), "size", b.Size)
		return fmt.Errorf("%w: %s offset %d + %d bytes exceeds size %d",
			ErrOutOfBounds, id, offset, len(data), b.Size)
	}
	if offset%4 != 0 {
		return fmt.Errorf("%w: %s offset %d", ErrMisalignedOffset, id, offset)
	}
	// An unaligned length is only allowed when the write ends at the
	// stored size: the zero fill then lands in the allocation's padding.
	if len(data)%4 != 0 && end != b.Size {
		return fmt.Errorf("%w: %s %d bytes at offset %d", ErrMisalignedSize, id, len(data), offset)
	}
	if len(data) == 0 {
		return nil
	}
	if err := m.queue.WriteBuffer(b.Buffer, offset, padded(data)); err != nil {
		return fmt.Errorf("resource: write %s: %w", id, err)
	}
	return nil
}

// RemoveBuffer drops id from the id, type and name indexes and returns
// the resource. The GPU buffer stays alive until the caller destroys it.
func (m *Manager) RemoveBuffer(id BufferID) (*BufferResource, bool) {
	b, ok := m.buffers[id]
	if !ok {
		return nil, false
	}
	delete(m.buffers, id)

	ids := m.buffersByType[b.Type]
	for i, other := range ids {
		if other == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(m.buffersByType, b.Type)
	} else {
		m.buffersByType[b.Type] = ids
	}

	if b.Label != "" && m.bufferNames[b.Label] == id {
		delete(m.bufferNames, b.Label)
	}
	return b, true
}

// DestroyBuffer removes id and releases its GPU buffer.
func (m *Manager) DestroyBuffer(id BufferID) bool {
	b, ok := m.RemoveBuffer(id)
	if ok {
		b.Destroy()
	}
	return ok
}

// AddMesh takes ownership of mesh. A non-empty name registers it for
// MeshByName.
func (m *Manager) AddMesh(mesh *Mesh, name string) MeshID {
	id := MeshID(m.meshIDs.take())
	m.meshes[id] = mesh
	if name != "" {
		m.meshNames[name] = id
	}
	return id
}

// Mesh returns the mesh for id.
func (m *Manager) Mesh(id MeshID) (*Mesh, bool) {
	mesh, ok := m.meshes[id]
	return mesh, ok
}

// MeshByName returns the mesh registered under name.
func (m *Manager) MeshByName(name string) (MeshID, *Mesh, bool) {
	id, ok := m.meshNames[name]
	if !ok {
		return InvalidMeshID, nil, false
	}
	mesh, ok := m.meshes[id]
	return id, mesh, ok
}

// RemoveMesh drops id and returns the mesh without destroying it.
func (m *Manager) RemoveMesh(id MeshID) (*Mesh, bool) {
	mesh, ok := m.meshes[id]
	if !ok {
		return nil, false
	}
	delete(m.meshes, id)
	for name, other := range m.meshNames {
		if other == id {
			delete(m.meshNames, name)
		}
	}
	return mesh, true
}

// AddMaterial takes ownership of mat. A non-empty name registers it for
// MaterialByName.
func (m *Manager) AddMaterial(mat Material, name string) MaterialID {
	id := MaterialID(m.materialIDs.take())
	m.materials[id] = mat
	if name != "" {
		m.materialNames[name] = id
	}
	return id
}

// Material returns the material for id.
func (m *Manager) Material(id MaterialID) (Material, bool) {
	mat, ok := m.materials[id]
	return mat, ok
}

// MaterialByName returns the material registered under name.
func (m *Manager) MaterialByName(name string) (MaterialID, Material, bool) {
	id, ok := m.materialNames[name]
	if !ok {
		return InvalidMaterialID, nil, false
	}
	mat, ok := m.materials[id]
	return id, mat, ok
}

// RemoveMaterial drops id and returns the material without destroying it.
func (m *Manager) RemoveMaterial(id MaterialID) (Material, bool) {
	mat, ok := m.materials[id]
	if !ok {
		return nil, false
	}
	delete(m.materials, id)
	for name, other := range m.materialNames {
		if other == id {
			delete(m.materialNames, name)
		}
	}
	return mat, true
}

// RegisterBufferLayout stores a copy of layout under name.
func (m *Manager) RegisterBufferLayout(name string, layout gputypes.VertexBufferLayout) BufferLayoutID {
	id := BufferLayoutID(m.layoutIDs.take())
	m.layouts[id] = &BufferLayout{Name: name, Layout: cloneLayout(layout)}
	if name != "" {
		m.layoutNames[name] = id
	}
	return id
}

// BufferLayout returns the layout for id.
func (m *Manager) BufferLayout(id BufferLayoutID) (*BufferLayout, bool) {
	l, ok := m.layouts[id]
	return l, ok
}

// BufferLayoutByName returns the layout registered under name.
func (m *Manager) BufferLayoutByName(name string) (BufferLayoutID, *BufferLayout, bool) {
	id, ok := m.layoutNames[name]
	if !ok {
		return InvalidBufferLayoutID, nil, false
	}
	l, ok := m.layouts[id]
	return id, l, ok
}

// BufferCount returns the number of live buffers.
func (m *Manager) BufferCount() int { return len(m.buffers) }

// BufferCountByType returns the number of live buffers of typ.
func (m *Manager) BufferCountByType(typ BufferType) int { return len(m.buffersByType[typ]) }

// TotalBufferMemory returns the summed stored size of every live buffer.
func (m *Manager) TotalBufferMemory() uint64 {
	var total uint64
	for _, b := range m.buffers {
		total += b.Size
	}
	return total
}

// MeshCount returns the number of meshes.
func (m *Manager) MeshCount() int { return len(m.meshes) }

// MaterialCount returns the number of materials.
func (m *Manager) MaterialCount() int { return len(m.materials) }

// Cleanup destroys every resource and empties every index. Calling it
// again is a no-op.
func (m *Manager) Cleanup() {
	if m.cleaned {
		return
	}
	m.cleaned = true

	for _, mat := range m.materials {
		mat.Destroy()
	}
	for _, mesh := range m.meshes {
		mesh.Destroy()
	}
	for _, b := range m.buffers {
		b.Destroy()
	}
	clear(m.meshes)
	clear(m.meshNames)
	clear(m.materials)
	clear(m.materialNames)
	clear(m.buffers)
	clear(m.buffersByType)
	clear(m.bufferNames)
	clear(m.layouts)
	clear(m.layoutNames)
	clear(m.instanceBuffers)
	logging.Logger().Debug("resource: manager cleaned up")
}
