package resource

import (
	"math"
	"strconv"
)

// MeshID is a handle to a Mesh owned by a Manager.
type MeshID uint32

// MaterialID is a handle to a Material owned by a Manager.
type MaterialID uint32

// BufferID is a handle to a BufferResource owned by a Manager.
type BufferID uint32

// BufferLayoutID is a handle to a registered vertex buffer layout.
type BufferLayoutID uint32

// Invalid handles. No Manager ever returns them for a live entry.
const (
	InvalidMeshID         MeshID         = math.MaxUint32
	InvalidMaterialID     MaterialID     = math.MaxUint32
	InvalidBufferID       BufferID       = math.MaxUint32
	InvalidBufferLayoutID BufferLayoutID = math.MaxUint32
)

func (id MeshID) IsValid() bool         { return id != InvalidMeshID && id != 0 }
func (id MaterialID) IsValid() bool     { return id != InvalidMaterialID && id != 0 }
func (id BufferID) IsValid() bool       { return id != InvalidBufferID && id != 0 }
func (id BufferLayoutID) IsValid() bool { return id != InvalidBufferLayoutID && id != 0 }

func (id MeshID) String() string         { return formatID("mesh", uint32(id)) }
func (id MaterialID) String() string     { return formatID("material", uint32(id)) }
func (id BufferID) String() string       { return formatID("buffer", uint32(id)) }
func (id BufferLayoutID) String() string { return formatID("layout", uint32(id)) }

func formatID(kind string, v uint32) string {
	if v == math.MaxUint32 {
		return kind + "(invalid)"
	}
	return kind + "(" + strconv.FormatUint(uint64(v), 10) + ")"
}

// idCounter produces handles 1, 2, 3...
type idCounter struct {
	next uint32
}

func (c *idCounter) take() uint32 {
	c.next++
	return c.next
}
