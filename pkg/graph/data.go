package graph

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
)

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// Shape distinguishes between brush primitive shapes.
type Shape int

const (
	ShapeCuboid Shape = iota // box with its minimum corner at the origin
	ShapePrism               // regular prism centered at the origin, axis Z
	ShapeHull                // convex hull of explicit points
	ShapeFaces               // intersection of half-spaces, three points per face
)

func (s Shape) String() string {
	switch s {
	case ShapeCuboid:
		return "cuboid"
	case ShapePrism:
		return "prism"
	case ShapeHull:
		return "hull"
	case ShapeFaces:
		return "faces"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// BrushData describes a convex brush primitive in its local frame.
// Only the fields of its Shape are used.
type BrushData struct {
	Shape      Shape     `json:"shape"`
	Dimensions Vec3      `json:"dimensions,omitempty"` // cuboid size
	Sides      int       `json:"sides,omitempty"`      // prism
	Radius     float64   `json:"radius,omitempty"`     // prism circumradius
	Height     float64   `json:"height,omitempty"`     // prism
	Points     []Vec3    `json:"points,omitempty"`     // hull
	Faces      [][3]Vec3 `json:"faces,omitempty"`      // clockwise seen from outside
	Material   string    `json:"material,omitempty"`   // face material; graph default if empty
}

func (BrushData) nodeData() {}

// PointVecs returns the hull points.
func (d BrushData) PointVecs() []v3.Vec { return vecs(d.Points) }

func vecs(points []Vec3) []v3.Vec {
	return lo.Map(points, func(p Vec3, _ int) v3.Vec { return p.Vec() })
}

// Build constructs the brush in its local frame.
func (d BrushData) Build(b *brush.Builder) (*brush.Brush, error) {
	if d.Material != "" {
		b = b.WithMaterial(d.Material)
	}
	switch d.Shape {
	case ShapeCuboid:
		return b.CuboidFromBounds(boxOf(Vec3{}, d.Dimensions))
	case ShapePrism:
		return b.Prism(d.Sides, d.Radius, d.Height)
	case ShapeHull:
		return b.FromPoints(d.PointVecs())
	case ShapeFaces:
		return b.FromFaces(lo.Map(d.Faces, func(f [3]Vec3, _ int) [3]v3.Vec {
			return [3]v3.Vec{f[0].Vec(), f[1].Vec(), f[2].Vec()}
		}))
	default:
		return nil, fmt.Errorf("graph: unknown brush shape %v", d.Shape)
	}
}

func boxOf(min, size Vec3) sdf.Box3 {
	return sdf.Box3{Min: min.Vec(), Max: min.Add(size).Vec()}
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to the child
// nodes. Created by the (place ...) form. Rotation applies first.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// Matrix returns the affine transform of d.
func (d TransformData) Matrix() mgl64.Mat4 {
	m := mgl64.Ident4()
	if d.Rotation != nil {
		m = geom.RotationDegrees(d.Rotation.Vec())
	}
	if d.Translation != nil {
		m = geom.Translation(d.Translation.Vec()).Mul4(m)
	}
	return m
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping of brushes.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// CSG
// ---------------------------------------------------------------------------

// SubtractData marks a subtraction. The first child is the minuend; every
// other child is carved out of it.
type SubtractData struct{}

func (SubtractData) nodeData() {}

// IntersectData marks the common volume of all children.
type IntersectData struct{}

func (IntersectData) nodeData() {}

// VertexEditData moves the vertices of the single child found at Positions
// by Delta. Positions are in the child's frame.
type VertexEditData struct {
	Positions []Vec3 `json:"positions"`
	Delta     Vec3   `json:"delta"`
}

func (VertexEditData) nodeData() {}

// PositionVecs returns the vertex positions to move.
func (d VertexEditData) PositionVecs() []v3.Vec { return vecs(d.Positions) }
