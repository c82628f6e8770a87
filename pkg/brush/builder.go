package brush

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// Builder creates primitive brushes.
type Builder struct {
	worldBounds sdf.Box3
	factory     FaceFactory
	attrs       Attributes
}

// NewBuilder returns a builder using DefaultFactory and no material.
func NewBuilder(worldBounds sdf.Box3) *Builder {
	return &Builder{
		worldBounds: worldBounds,
		factory:     DefaultFactory{},
		attrs:       NewAttributes(NoMaterialName),
	}
}

// WithMaterial returns a copy of the builder that assigns material to all
// faces.
func (b *Builder) WithMaterial(material string) *Builder {
	c := *b
	c.attrs = NewAttributes(material)
	return &c
}

// WithFactory returns a copy of the builder that creates faces with f.
func (b *Builder) WithFactory(f FaceFactory) *Builder {
	c := *b
	c.factory = f
	return &c
}

// Cube returns a cube of the given edge length centered at the origin.
func (b *Builder) Cube(size float64) (*Brush, error) {
	return b.Cuboid(v3.Vec{X: size, Y: size, Z: size})
}

// Cuboid returns a box of the given size centered at the origin.
func (b *Builder) Cuboid(size v3.Vec) (*Brush, error) {
	half := size.MulScalar(0.5)
	return b.CuboidFromBounds(sdf.Box3{Min: geom.Neg(half), Max: half})
}

// CuboidFromBounds returns the box filling bounds.
func (b *Builder) CuboidFromBounds(bounds sdf.Box3) (*Brush, error) {
	size := geom.BoundsSize(bounds)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, geometryError("build cuboid", ErrBrushEmpty, fmt.Errorf("size %v", size))
	}
	return b.fromGeometry(polyhedron.NewFromBounds(bounds))
}

// Prism returns a regular prism with the given number of sides whose axis
// is Z, centered at the origin. radius is the circumradius of the base.
func (b *Builder) Prism(sides int, radius, height float64) (*Brush, error) {
	if sides < 3 || radius <= 0 || height <= 0 {
		return nil, geometryError("build prism", ErrBrushEmpty,
			fmt.Errorf("sides %d, radius %g, height %g", sides, radius, height))
	}
	points := make([]v3.Vec, 0, 2*sides)
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		x, y := radius*math.Cos(a), radius*math.Sin(a)
		points = append(points,
			v3.Vec{X: x, Y: y, Z: -height / 2},
			v3.Vec{X: x, Y: y, Z: height / 2})
	}
	return b.FromPoints(points)
}

// FromPoints returns the convex hull of points.
func (b *Builder) FromPoints(points []v3.Vec) (*Brush, error) {
	geo := polyhedron.New(points...)
	if !geo.IsPolyhedron() {
		return nil, geometryError("build hull", ErrBrushEmpty, fmt.Errorf("hull is a %v", geo.Shape()))
	}
	return b.fromGeometry(geo)
}

// FromFaces returns the brush bounded by the planes through each point
// triple. Points wind clockwise when seen from outside the brush, as in map
// files.
func (b *Builder) FromFaces(points [][3]v3.Vec) (*Brush, error) {
	faces := make([]*Face, 0, len(points))
	for i, p := range points {
		f, err := b.factory.CreateFace(p[0], p[1], p[2], b.attrs)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		faces = append(faces, f)
	}
	return b.factory.CreateBrush(b.worldBounds, faces)
}

func (b *Builder) fromGeometry(geo *polyhedron.Polyhedron) (*Brush, error) {
	faces, err := facesFromGeometry(b.factory, geo, b.attrs)
	if err != nil {
		return nil, err
	}
	return b.factory.CreateBrush(b.worldBounds, faces)
}
