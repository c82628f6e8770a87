package kernel

// Mesh is a flat triangle list. Vertices and Normals hold three floats
// per vertex, UVs two when present, and Indices three per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	UVs      []float32 `json:"uvs,omitempty"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"` // scene part the mesh was built from
}

func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

func (m *Mesh) textured() bool { return len(m.UVs) == 2*m.VertexCount() }

// Append adds the triangles of o to m, offsetting its indices. UVs are
// kept only while every appended mesh has them.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	if m.textured() && o.textured() {
		m.UVs = append(m.UVs, o.UVs...)
	} else {
		m.UVs = nil
	}
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}
