// Package sdfx is the sampled kernel. Brushes become signed distance
// fields bounded by their face planes and are meshed with marching cubes,
// so output is an approximation whose detail depends on the cell count.
// Vertex editing and materials are not supported.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
)

var _ kernel.Kernel = (*Kernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest
// axis of a solid.
const DefaultMeshCells = 200

// ErrForeignSolid is returned when a solid from another kernel is passed
// in.
var ErrForeignSolid = errors.New("sdfx: solid was not built by this kernel")

// Solid is a signed distance field.
type Solid struct {
	field sdf.SDF3
}

func (s *Solid) Bounds() sdf.Box3 { return s.field.BoundingBox() }

// Field exposes the distance function, negative inside.
func (s *Solid) Field() sdf.SDF3 { return s.field }

// planeField is the field of a convex brush: the largest signed distance
// to any of its face planes. It is exact on the surface and a lower bound
// on the distance elsewhere, which is all marching cubes needs.
type planeField struct {
	planes []geom.Plane
	bounds sdf.Box3
}

func (f *planeField) Evaluate(p v3.Vec) float64 {
	return lo.Reduce(f.planes, func(d float64, pl geom.Plane, _ int) float64 {
		return math.Max(d, pl.PointDistance(p))
	}, math.Inf(-1))
}

func (f *planeField) BoundingBox() sdf.Box3 { return f.bounds }

// FromBrush returns the field of b.
func FromBrush(b *brush.Brush) *Solid {
	return &Solid{field: &planeField{
		planes: lo.Map(b.Faces(), func(f *brush.Face, _ int) geom.Plane { return f.Boundary() }),
		bounds: b.Bounds(),
	}}
}

// Kernel samples solids on a uniform grid.
type Kernel struct {
	cells   int
	builder *brush.Builder
	log     *zap.Logger
}

type Option func(*Kernel)

// WithMeshCells sets the marching cubes resolution along the longest
// axis. Values below 1 are ignored.
func WithMeshCells(n int) Option {
	return func(k *Kernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(k *Kernel) { k.log = l }
}

func New(opts ...Option) *Kernel {
	k := &Kernel{
		cells:   DefaultMeshCells,
		builder: brush.NewBuilder(geom.WorldBounds(geom.DefaultWorldSize)),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

func fields(solids ...kernel.Solid) ([]sdf.SDF3, error) {
	out := make([]sdf.SDF3, len(solids))
	for i, s := range solids {
		ss, ok := s.(*Solid)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrForeignSolid, s)
		}
		out[i] = ss.field
	}
	return out, nil
}

// Box goes through the brush builder so that degenerate sizes fail the
// same way they do in the exact kernel.
func (k *Kernel) Box(size v3.Vec) (kernel.Solid, error) {
	b, err := k.builder.CuboidFromBounds(sdf.Box3{Max: size})
	if err != nil {
		return nil, fmt.Errorf("sdfx: box %gx%gx%g: %w", size.X, size.Y, size.Z, err)
	}
	return FromBrush(b), nil
}

func (k *Kernel) Prism(sides int, radius, height float64) (kernel.Solid, error) {
	b, err := k.builder.Prism(sides, radius, height)
	if err != nil {
		return nil, fmt.Errorf("sdfx: prism: %w", err)
	}
	return FromBrush(b), nil
}

func (k *Kernel) Hull(points []v3.Vec) (kernel.Solid, error) {
	b, err := k.builder.FromPoints(points)
	if err != nil {
		return nil, fmt.Errorf("sdfx: hull of %d points: %w", len(points), err)
	}
	return FromBrush(b), nil
}

func (k *Kernel) combine(a, b kernel.Solid, op func(a, b sdf.SDF3) sdf.SDF3) (kernel.Solid, error) {
	f, err := fields(a, b)
	if err != nil {
		return nil, err
	}
	return &Solid{field: op(f[0], f[1])}, nil
}

func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, func(a, b sdf.SDF3) sdf.SDF3 { return sdf.Union3D(a, b) })
}

func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, sdf.Difference3D)
}

func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.combine(a, b, sdf.Intersect3D)
}

func (k *Kernel) transform(s kernel.Solid, m sdf.M44) (kernel.Solid, error) {
	f, err := fields(s)
	if err != nil {
		return nil, err
	}
	return &Solid{field: sdf.Transform3D(f[0], m)}, nil
}

func (k *Kernel) Translate(s kernel.Solid, delta v3.Vec) (kernel.Solid, error) {
	return k.transform(s, sdf.Translate3d(delta))
}

func (k *Kernel) Rotate(s kernel.Solid, degrees v3.Vec) (kernel.Solid, error) {
	r := degrees.MulScalar(math.Pi / 180)
	return k.transform(s, sdf.RotateZ(r.Z).Mul(sdf.RotateY(r.Y)).Mul(sdf.RotateX(r.X)))
}

// ToMesh samples s with marching cubes. Triangles do not share vertices
// and carry their face normal; there are no texture coordinates.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	f, err := fields(s)
	if err != nil {
		return nil, err
	}
	tris := render.ToTriangles(f[0], render.NewMarchingCubesUniform(k.cells))

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, 9*len(tris)),
		Normals:  make([]float32, 0, 9*len(tris)),
		Indices:  make([]uint32, 0, 3*len(tris)),
	}
	for _, tri := range tris {
		n := tri.Normal()
		for _, v := range tri {
			m.Indices = append(m.Indices, uint32(m.VertexCount()))
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	k.log.Debug("marching cubes", zap.Int("cells", k.cells), zap.Int("triangles", len(tris)))
	return m, nil
}
