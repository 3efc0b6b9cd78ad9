package component

import "github.com/gogpu/g3d/resource"

// MeshRenderer pairs a mesh with a material. Entities carrying one are
// drawn by the mesh render system.
type MeshRenderer struct {
	Mesh     resource.MeshID
	Material resource.MaterialID

	Visible bool
	// Layer orders draws coarsely; lower layers draw first.
	Layer uint8
	// Priority orders draws within a layer; lower first.
	Priority int16

	CastShadows    bool
	ReceiveShadows bool
}

// NewMeshRenderer returns a visible renderer that casts and receives shadows.
func NewMeshRenderer(mesh resource.MeshID, material resource.MaterialID) MeshRenderer {
	return MeshRenderer{
		Mesh:           mesh,
		Material:       material,
		Visible:        true,
		CastShadows:    true,
		ReceiveShadows: true,
	}
}

// ShouldRender reports whether the renderer is visible and both handles
// are set. It does not check that the resources still exist.
func (r *MeshRenderer) ShouldRender() bool {
	return r.Visible && r.Mesh.IsValid() && r.Material.IsValid()
}

// SortKey orders draws by layer, priority, material, then mesh, so draws
// sharing a pipeline end up adjacent.
func (r *MeshRenderer) SortKey() uint64 {
	//nolint:gosec // G115: priority is biased into the unsigned range on purpose
	prio := uint64(uint16(int32(r.Priority) + 1<<15))
	return uint64(r.Layer)<<56 |
		prio<<40 |
		(uint64(r.Material)&0xFFFFF)<<20 |
		uint64(r.Mesh)&0xFFFFF
}
