package brush

import (
	"github.com/chazu/brushwork/pkg/kernel"
)

// Mesh triangulates every face as a fan. Faces do not share vertices, so
// normals and texture coordinates stay per face.
func (b *Brush) Mesh() *kernel.Mesh {
	m := &kernel.Mesh{}
	for _, f := range b.Faces() {
		verts := f.Vertices()
		uvs := f.VertexUVs()
		n := f.Normal()
		base := uint32(m.VertexCount())
		for i, p := range verts {
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.UVs = append(m.UVs, float32(uvs[i][0]), float32(uvs[i][1]))
		}
		for i := 1; i+1 < len(verts); i++ {
			m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
	return m
}
