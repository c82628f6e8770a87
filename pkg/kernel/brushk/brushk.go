// Package brushk is the exact kernel. A solid is a list of convex brushes:
// unions keep the pieces apart and differences split them into convex
// fragments, so every result can still be edited face by face.
package brushk

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
)

var (
	_ kernel.Kernel       = (*Kernel)(nil)
	_ kernel.VertexEditor = (*Kernel)(nil)
	_ kernel.Painter      = (*Kernel)(nil)
)

// ErrForeignSolid is returned when a solid from another kernel is passed
// in.
var ErrForeignSolid = errors.New("brushk: solid was not built by this kernel")

// Solid is a set of convex brushes. An empty solid is valid; it is what
// a disjoint intersection produces.
type Solid struct {
	brushes []*brush.Brush
}

// NewSolid wraps existing brushes.
func NewSolid(brushes ...*brush.Brush) *Solid {
	return &Solid{brushes: brushes}
}

// Bounds returns the box around every piece, or the zero box when there
// are none.
func (s *Solid) Bounds() sdf.Box3 {
	if len(s.brushes) == 0 {
		return sdf.Box3{}
	}
	return lo.Reduce(s.brushes[1:], func(acc sdf.Box3, b *brush.Brush, _ int) sdf.Box3 {
		return geom.MergeBounds(acc, b.Bounds())
	}, s.brushes[0].Bounds())
}

// Brushes returns the convex pieces of the solid.
func (s *Solid) Brushes() []*brush.Brush { return s.brushes }

// Kernel builds and combines brushes inside fixed world bounds.
type Kernel struct {
	world    sdf.Box3
	material string
	uvLock   bool
	builder  *brush.Builder
	log      *zap.Logger
}

type Option func(*Kernel)

// WithWorldBounds sets the bounds every brush must stay inside.
func WithWorldBounds(b sdf.Box3) Option {
	return func(k *Kernel) { k.world = b }
}

// WithMaterial sets the material of new primitive faces.
func WithMaterial(name string) Option {
	return func(k *Kernel) { k.material = name }
}

// WithUVLock controls whether textures stay fixed to faces when solids
// are moved or their vertices edited. It is on by default.
func WithUVLock(lock bool) Option {
	return func(k *Kernel) { k.uvLock = lock }
}

func WithLogger(l *zap.Logger) Option {
	return func(k *Kernel) { k.log = l }
}

func New(opts ...Option) *Kernel {
	k := &Kernel{
		world:    geom.WorldBounds(geom.DefaultWorldSize),
		material: brush.NoMaterialName,
		uvLock:   true,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(k)
	}
	k.builder = brush.NewBuilder(k.world).WithMaterial(k.material)
	return k
}

// WorldBounds returns the bounds brushes are built in.
func (k *Kernel) WorldBounds() sdf.Box3 { return k.world }

func own(solids ...kernel.Solid) ([]*Solid, error) {
	out := make([]*Solid, len(solids))
	for i, s := range solids {
		bs, ok := s.(*Solid)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrForeignSolid, s)
		}
		out[i] = bs
	}
	return out, nil
}

func (k *Kernel) Box(size v3.Vec) (kernel.Solid, error) {
	b, err := k.builder.CuboidFromBounds(sdf.Box3{Max: size})
	if err != nil {
		return nil, fmt.Errorf("brushk: box %gx%gx%g: %w", size.X, size.Y, size.Z, err)
	}
	return NewSolid(b), nil
}

func (k *Kernel) Prism(sides int, radius, height float64) (kernel.Solid, error) {
	b, err := k.builder.Prism(sides, radius, height)
	if err != nil {
		return nil, fmt.Errorf("brushk: prism: %w", err)
	}
	return NewSolid(b), nil
}

func (k *Kernel) Hull(points []v3.Vec) (kernel.Solid, error) {
	b, err := k.builder.FromPoints(points)
	if err != nil {
		return nil, fmt.Errorf("brushk: hull of %d points: %w", len(points), err)
	}
	return NewSolid(b), nil
}

// Union concatenates the pieces of a and b.
func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	s, err := own(a, b)
	if err != nil {
		return nil, err
	}
	return NewSolid(append(lo.Map(s[0].brushes, cloneBrush), lo.Map(s[1].brushes, cloneBrush)...)...), nil
}

// Difference carves every piece of b out of every piece of a. Pieces of a
// that b does not touch are kept whole.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	s, err := own(a, b)
	if err != nil {
		return nil, err
	}
	minuends, cutters := s[0].brushes, s[1].brushes
	var out []*brush.Brush
	for _, m := range minuends {
		touching := lo.Filter(cutters, func(c *brush.Brush, _ int) bool { return m.IntersectsBrush(c) })
		if len(touching) == 0 {
			out = append(out, m.Clone())
			continue
		}
		out = append(out, brush.Subtract(brush.DefaultFactory{}, k.world, m, touching...)...)
	}
	k.log.Debug("difference",
		zap.Int("minuends", len(minuends)),
		zap.Int("subtrahends", len(cutters)),
		zap.Int("fragments", len(out)))
	return NewSolid(out...), nil
}

// Intersection keeps the pairwise overlaps of the pieces of a and b.
func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	s, err := own(a, b)
	if err != nil {
		return nil, err
	}
	var out []*brush.Brush
	for _, x := range s[0].brushes {
		for _, y := range s[1].brushes {
			if !x.IntersectsBrush(y) {
				continue
			}
			c, err := brush.Intersect(k.world, x, y)
			switch {
			case errors.Is(err, brush.ErrBrushEmpty):
				continue
			case err != nil:
				return nil, fmt.Errorf("brushk: intersection: %w", err)
			}
			out = append(out, c)
		}
	}
	return NewSolid(out...), nil
}

// Paint sets the material of every face of every piece.
func (k *Kernel) Paint(s kernel.Solid, material string) (kernel.Solid, error) {
	return k.each(s, "paint", func(b *brush.Brush) error {
		for _, f := range b.Faces() {
			attrs := f.Attributes()
			attrs.MaterialName = material
			f.SetAttributes(attrs)
		}
		return nil
	})
}

func (k *Kernel) Translate(s kernel.Solid, delta v3.Vec) (kernel.Solid, error) {
	return k.apply(s, "translate", geom.Translation(delta))
}

func (k *Kernel) Rotate(s kernel.Solid, degrees v3.Vec) (kernel.Solid, error) {
	return k.apply(s, "rotate", geom.RotationDegrees(degrees))
}

func (k *Kernel) apply(s kernel.Solid, op string, m mgl64.Mat4) (kernel.Solid, error) {
	return k.each(s, op, func(b *brush.Brush) error {
		return b.Transform(m, k.uvLock, k.world)
	})
}

// each runs fn on a copy of every piece of s.
func (k *Kernel) each(s kernel.Solid, op string, fn func(*brush.Brush) error) (kernel.Solid, error) {
	src, err := own(s)
	if err != nil {
		return nil, err
	}
	out := lo.Map(src[0].brushes, cloneBrush)
	for _, b := range out {
		if err := fn(b); err != nil {
			return nil, fmt.Errorf("brushk: %s: %w", op, err)
		}
	}
	return NewSolid(out...), nil
}

// MoveVertices moves the listed vertices of every piece that has them.
// Pieces without any of the vertices are left alone. The move is rejected
// as a whole if any piece cannot take it or no piece has the vertices.
func (k *Kernel) MoveVertices(s kernel.Solid, positions []v3.Vec, delta v3.Vec) (kernel.Solid, error) {
	src, err := own(s)
	if err != nil {
		return nil, err
	}

	out := make([]*brush.Brush, 0, len(src[0].brushes))
	moved := 0
	for _, b := range src[0].brushes {
		mine := lo.Filter(positions, func(p v3.Vec, _ int) bool { return b.HasVertex(p, geom.AlmostZero) })
		if len(mine) == 0 {
			out = append(out, b.Clone())
			continue
		}
		mine = b.FindClosestVertexPositions(mine)
		if err := b.CheckMoveVertices(k.world, mine, delta); err != nil {
			return nil, fmt.Errorf("brushk: move vertices %v by %v: %w", mine, delta, err)
		}
		c := b.Clone()
		if _, err := c.MoveVertices(k.world, mine, delta, k.uvLock); err != nil {
			return nil, fmt.Errorf("brushk: move vertices: %w", err)
		}
		out = append(out, c)
		moved++
	}
	if moved == 0 {
		return nil, fmt.Errorf("brushk: move vertices: no piece has vertices %v: %w", positions, brush.ErrMoveRejected)
	}
	k.log.Debug("moved vertices", zap.Int("pieces", moved), zap.Int("vertices", len(positions)))
	return NewSolid(out...), nil
}

// ToMesh triangulates every piece. Pieces keep their own vertices, so
// faces shared between pieces are emitted twice.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	src, err := own(s)
	if err != nil {
		return nil, err
	}
	m := &kernel.Mesh{}
	for _, b := range src[0].brushes {
		m.Append(b.Mesh())
	}
	return m, nil
}

func cloneBrush(b *brush.Brush, _ int) *brush.Brush { return b.Clone() }
