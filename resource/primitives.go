package resource

// Triangle returns a unit triangle in the XY plane facing +Z.
func Triangle() ([]Vertex, []uint32) {
	n := [3]float32{0, 0, 1}
	return []Vertex{
		{Position: [3]float32{0, 0.5, 0}, Normal: n, UV: [2]float32{0.5, 0}},
		{Position: [3]float32{-0.5, -0.5, 0}, Normal: n, UV: [2]float32{0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, Normal: n, UV: [2]float32{1, 1}},
	}, []uint32{0, 1, 2}
}

// Quad returns a unit square in the XY plane facing +Z.
func Quad() ([]Vertex, []uint32) {
	n := [3]float32{0, 0, 1}
	return []Vertex{
		{Position: [3]float32{-0.5, -0.5, 0}, Normal: n, UV: [2]float32{0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, Normal: n, UV: [2]float32{1, 1}},
		{Position: [3]float32{0.5, 0.5, 0}, Normal: n, UV: [2]float32{1, 0}},
		{Position: [3]float32{-0.5, 0.5, 0}, Normal: n, UV: [2]float32{0, 0}},
	}, []uint32{0, 1, 2, 0, 2, 3}
}

// Cube returns a unit cube centered on the origin with per-face normals.
func Cube() ([]Vertex, []uint32) {
	type face struct {
		normal [3]float32
		u, v   [3]float32
	}
	faces := []face{
		{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
		{normal: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
		{normal: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
		{normal: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
		{normal: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
		{normal: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		//nolint:gosec // G115: at most 24 vertices
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for k := range 3 {
				p[k] = 0.5*f.normal[k] + 0.5*c[0]*f.u[k] + 0.5*c[1]*f.v[k]
			}
			vertices = append(vertices, Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}
