package component

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d/resource"
)

// InstanceData is one per-instance record as laid out at vertex slot 1.
type InstanceData struct {
	Model  mgl32.Mat4
	Normal mgl32.Mat4
	ID     uint32
}

// NewInstanceData derives the normal matrix from model.
func NewInstanceData(model mgl32.Mat4, id uint32) InstanceData {
	return InstanceData{Model: model, Normal: NormalMatrix(model), ID: id}
}

// NormalMatrix returns the inverse transpose of model. A singular model
// yields the identity.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat4 {
	if model.Det() == 0 {
		return mgl32.Ident4()
	}
	return model.Inv().Transpose()
}

// AppendBytes appends the 144-byte encoding of d to dst.
func (d *InstanceData) AppendBytes(dst []byte) []byte {
	for _, v := range d.Model {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	for _, v := range d.Normal {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	dst = binary.LittleEndian.AppendUint32(dst, d.ID)
	// padding to a 16-byte multiple
	return append(dst, make([]byte, 12)...)
}

// Instance is a list of per-instance transforms drawn with one call.
// Mutations mark it dirty until the render system uploads it.
type Instance struct {
	data  []InstanceData
	dirty bool
}

// NewInstance returns an Instance holding data, marked dirty.
func NewInstance(data ...InstanceData) Instance {
	return Instance{data: append([]InstanceData(nil), data...), dirty: true}
}

// Add appends d and returns its index.
func (in *Instance) Add(d InstanceData) int {
	in.data = append(in.data, d)
	in.dirty = true
	return len(in.data) - 1
}

// Update replaces the record at i.
func (in *Instance) Update(i int, d InstanceData) bool {
	if i < 0 || i >= len(in.data) {
		return false
	}
	in.data[i] = d
	in.dirty = true
	return true
}

// Remove deletes the record at i, keeping the order of the rest.
func (in *Instance) Remove(i int) bool {
	if i < 0 || i >= len(in.data) {
		return false
	}
	in.data = append(in.data[:i], in.data[i+1:]...)
	in.dirty = true
	return true
}

// Clear drops every record.
func (in *Instance) Clear() {
	in.data = in.data[:0]
	in.dirty = true
}

// Len returns the instance count.
func (in *Instance) Len() int { return len(in.data) }

// Data returns the records. The slice aliases the component.
func (in *Instance) Data() []InstanceData { return in.data }

// IsDirty reports whether the records changed since MarkClean.
func (in *Instance) IsDirty() bool { return in.dirty }

// MarkClean records that the GPU copy is current.
func (in *Instance) MarkClean() { in.dirty = false }

// Bytes encodes every record back to back.
func (in *Instance) Bytes() []byte {
	out := make([]byte, 0, len(in.data)*resource.InstanceDataSize)
	for i := range in.data {
		out = in.data[i].AppendBytes(out)
	}
	return out
}
