package resource

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"slices"

	"github.com/gogpu/gputypes"
)

// InstanceDataSize is the byte size of one per-instance record:
// model mat4, normal mat4, id u32 and three padding words.
const InstanceDataSize = 144

// First shader location used by per-instance attributes.
const InstanceFirstLocation = 5

// BufferLayout is a named vertex buffer layout registered with a Manager.
type BufferLayout struct {
	Name   string
	Layout gputypes.VertexBufferLayout
}

// InstanceBufferLayout returns the per-instance layout bound at vertex
// slot 1: model matrix columns at locations 5..8, normal matrix columns
// at 9..12 and the instance id at 13.
func InstanceBufferLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, 0, 9)
	for i := range uint32(8) {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         gputypes.VertexFormatFloat32x4,
			Offset:         uint64(i) * 16,
			ShaderLocation: InstanceFirstLocation + i,
		})
	}
	attrs = append(attrs, gputypes.VertexAttribute{
		Format:         gputypes.VertexFormatUint32,
		Offset:         128,
		ShaderLocation: InstanceFirstLocation + 8,
	})
	return gputypes.VertexBufferLayout{
		ArrayStride: InstanceDataSize,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes:  attrs,
	}
}

// cloneLayout deep-copies l so callers cannot alias the stored attributes.
func cloneLayout(l gputypes.VertexBufferLayout) gputypes.VertexBufferLayout {
	out := l
	out.Attributes = append([]gputypes.VertexAttribute(nil), l.Attributes...)
	return out
}

// HashVertexLayouts returns an FNV-1a hash over the stride, step mode and
// attributes of every layout, in order. Equal layouts hash equal.
func HashVertexLayouts(layouts []gputypes.VertexBufferLayout) uint64 {
	h := fnv.New64a()
	//nolint:gosec // G115: vertex buffer count is bounded by GPU limits (< 16)
	hashWriteUint32(h, uint32(len(layouts)))
	for i := range layouts {
		layout := &layouts[i]
		hashWriteUint64(h, layout.ArrayStride)
		hashWriteUint32(h, uint32(layout.StepMode))
		//nolint:gosec // G115: attribute count is bounded by GPU limits (< 32)
		hashWriteUint32(h, uint32(len(layout.Attributes)))
		for j := range layout.Attributes {
			attr := &layout.Attributes[j]
			hashWriteUint32(h, attr.ShaderLocation)
			hashWriteUint32(h, uint32(attr.Format))
			hashWriteUint64(h, attr.Offset)
		}
	}
	return h.Sum64()
}

// HashBindGroupLayoutEntries returns an FNV-1a hash over binding slots,
// visibility and buffer binding types. Two layouts built from entries with
// equal hashes are interchangeable in a pipeline layout.
func HashBindGroupLayoutEntries(entries []gputypes.BindGroupLayoutEntry) uint64 {
	h := fnv.New64a()
	//nolint:gosec // G115: entry count is bounded by GPU limits
	hashWriteUint32(h, uint32(len(entries)))
	for i := range entries {
		e := &entries[i]
		hashWriteUint32(h, e.Binding)
		hashWriteUint32(h, uint32(e.Visibility))
		if e.Buffer != nil {
			hashWriteBool(h, true)
			hashWriteUint32(h, uint32(e.Buffer.Type))
			hashWriteUint64(h, e.Buffer.MinBindingSize)
		} else {
			hashWriteBool(h, false)
		}
	}
	return h.Sum64()
}

// HashDefines returns an order-independent hash of shader defines.
func HashDefines(defines map[string]string) uint64 {
	keys := make([]string, 0, len(defines))
	for k := range defines {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	h := fnv.New64a()
	for _, k := range keys {
		_, _ = h.Write([]byte(k))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(defines[k]))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// CombineHashes folds values into one FNV-1a hash.
func CombineHashes(values ...uint64) uint64 {
	h := fnv.New64a()
	for _, v := range values {
		hashWriteUint64(h, v)
	}
	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
