package brush

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// FaceFactory creates faces and brushes for operations that derive new
// brushes from geometry.
type FaceFactory interface {
	CreateFace(p0, p1, p2 v3.Vec, attrs Attributes) (*Face, error)
	CreateFaceWithAxes(p0, p1, p2 v3.Vec, attrs Attributes, uAxis, vAxis v3.Vec) (*Face, error)
	CreateBrush(worldBounds sdf.Box3, faces []*Face) (*Brush, error)
}

// DefaultFactory creates faces with paraxial texture axes.
type DefaultFactory struct{}

func (DefaultFactory) CreateFace(p0, p1, p2 v3.Vec, attrs Attributes) (*Face, error) {
	return NewFace(p0, p1, p2, attrs)
}

func (DefaultFactory) CreateFaceWithAxes(p0, p1, p2 v3.Vec, attrs Attributes, uAxis, vAxis v3.Vec) (*Face, error) {
	return NewFaceWithAxes(p0, p1, p2, attrs, uAxis, vAxis)
}

func (DefaultFactory) CreateBrush(worldBounds sdf.Box3, faces []*Face) (*Brush, error) {
	return New(worldBounds, faces)
}

// facesFromGeometry creates one face per polyhedron face, defined by three
// consecutive boundary vertices.
func facesFromGeometry(factory FaceFactory, geo *polyhedron.Polyhedron, attrs Attributes) ([]*Face, error) {
	faces := make([]*Face, 0, geo.FaceCount())
	for _, g := range geo.Faces() {
		boundary := g.Boundary()
		h1 := boundary[0]
		h0 := h1.Next()
		h2 := h0.Next()
		f, err := factory.CreateFace(h0.Origin().Position(), h1.Origin().Position(), h2.Origin().Position(), attrs)
		if err != nil {
			return nil, err
		}
		faces = append(faces, f)
	}
	return faces, nil
}

// Subtract returns convex brushes covering minuend minus every subtrahend.
// Faces of the fragments take their attributes from the minuend face on the
// same plane; faces cut by a subtrahend take the attributes of the
// subtrahend face they were cut by. Fragments that fail to build are
// dropped.
func Subtract(factory FaceFactory, worldBounds sdf.Box3, minuend *Brush, subtrahends ...*Brush) []*Brush {
	fragments := []*polyhedron.Polyhedron{minuend.geometry}
	for _, s := range subtrahends {
		fragments = lo.FlatMap(fragments, func(f *polyhedron.Polyhedron, _ int) []*polyhedron.Polyhedron {
			return f.Subtract(s.geometry)
		})
	}

	var out []*Brush
	for _, frag := range fragments {
		faces, err := facesFromGeometry(factory, frag, NewAttributes(NoMaterialName))
		if err != nil {
			continue
		}
		b, err := factory.CreateBrush(worldBounds, faces)
		if err != nil {
			continue
		}
		b.copyAttributesByPlane(minuend, false)
		for _, s := range subtrahends {
			b.copyAttributesByPlane(s, false)
			b.copyAttributesByPlane(s, true)
		}
		out = append(out, b)
	}
	return out
}

// Intersect returns the brush bounded by the faces of both a and b.
func Intersect(worldBounds sdf.Box3, a, b *Brush) (*Brush, error) {
	c := a.Clone()
	err := c.rebuildWith(worldBounds, func(ar *arena) error {
		for _, f := range b.Faces() {
			ar.insert(f.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// copyFaceAttributes gives dst the texture of src. The axes are turned from
// the plane from onto dst's plane.
func copyFaceAttributes(dst, src *Face, from geom.Plane) {
	dst.SetAttributes(src.Attributes())
	dst.CopyUVCoordSystemFromFace(src.TakeUVCoordSystemSnapshot(), src.Attributes(), from)
}

// copyAttributesByPlane copies attributes from the face of src lying on the
// same plane, or the flipped plane when inverted is set.
func (b *Brush) copyAttributesByPlane(src *Brush, inverted bool) {
	for _, dst := range b.faces.list() {
		plane := dst.Boundary()
		if inverted {
			plane = plane.Flip()
		}
		if id, ok := src.FindFaceByPlane(plane); ok {
			from := src.Face(id).Boundary()
			if inverted {
				from = dst.Boundary()
			}
			copyFaceAttributes(dst, src.Face(id), from)
			b.dirty = true
		}
	}
}

// findBestMatchingFace prefers the largest face coplanar with plane and
// otherwise the face whose center is nearest to it.
func findBestMatchingFace(plane geom.Plane, candidates []*Face) *Face {
	if len(candidates) == 0 {
		return nil
	}
	coplanar := lo.Filter(candidates, func(c *Face, _ int) bool { return c.CoplanarWith(plane) })
	if len(coplanar) > 0 {
		return lo.MaxBy(coplanar, func(x, y *Face) bool { return x.Area() > y.Area() })
	}
	offPlane := func(c *Face) float64 { return math.Abs(plane.PointDistance(c.Center())) }
	return lo.MinBy(candidates, func(x, y *Face) bool { return offPlane(x) < offPlane(y) })
}

func (b *Brush) cloneBestMatching(brushes []*Brush, inverted bool) {
	candidates := lo.FlatMap(brushes, func(src *Brush, _ int) []*Face { return src.Faces() })
	for _, dst := range b.faces.list() {
		plane := dst.Boundary()
		if inverted {
			plane = plane.Flip()
		}
		// The matched face may lie on another plane; its axes are kept
		// as they are.
		if src := findBestMatchingFace(plane, candidates); src != nil {
			copyFaceAttributes(dst, src, dst.Boundary())
			b.dirty = true
		}
	}
}

// CloneFaceAttributesFrom gives every face the attributes of the best
// matching face among brushes.
func (b *Brush) CloneFaceAttributesFrom(brushes ...*Brush) {
	b.cloneBestMatching(brushes, false)
}

// CloneInvertedFaceAttributesFrom is CloneFaceAttributesFrom matched
// against the flipped face planes.
func (b *Brush) CloneInvertedFaceAttributesFrom(brushes ...*Brush) {
	b.cloneBestMatching(brushes, true)
}
