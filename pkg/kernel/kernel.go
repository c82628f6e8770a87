// Package kernel defines the interface between the scene tessellator and
// the geometry backends that turn brushes into solids and meshes.
//
// Two backends exist. brushk keeps exact convex brushes and splits them on
// subtraction; sdfx samples signed distance fields with marching cubes.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is a kernel's handle to a piece of geometry. Solids are values:
// operations return new solids and leave their operands alone.
type Solid interface {
	Bounds() sdf.Box3
}

// Kernel builds, combines and meshes solids. A kernel only accepts solids
// it produced itself.
type Kernel interface {
	// Box has its minimum corner at the origin.
	Box(size v3.Vec) (Solid, error)
	// Prism is centred on the origin with its axis along Z.
	Prism(sides int, radius, height float64) (Solid, error)
	Hull(points []v3.Vec) (Solid, error)

	// Union keeps its operands as separate convex pieces.
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	Translate(s Solid, delta v3.Vec) (Solid, error)
	// Rotate applies Euler angles in degrees, about X first and Z last.
	Rotate(s Solid, degrees v3.Vec) (Solid, error)

	ToMesh(s Solid) (*Mesh, error)
}

// VertexEditor is implemented by kernels that keep exact vertex positions.
type VertexEditor interface {
	MoveVertices(s Solid, positions []v3.Vec, delta v3.Vec) (Solid, error)
}

// Painter is implemented by kernels whose solids carry face materials.
type Painter interface {
	Paint(s Solid, material string) (Solid, error)
}
