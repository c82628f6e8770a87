package brush

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// Face is a textured half-space. Its boundary plane is defined by three
// points; the solid lies below the plane. While the face belongs to a built
// brush it is attached to exactly one polyhedron face.
type Face struct {
	points   [3]v3.Vec
	boundary geom.Plane
	attrs    Attributes
	uv       UVCoordSystem
	selected bool

	geometry *polyhedron.Face
	uvCache  []mgl64.Vec2
}

// NewFace creates a face through p0, p1 and p2 with paraxial texture axes.
// The normal is (p2-p0)×(p1-p0).
func NewFace(p0, p1, p2 v3.Vec, attrs Attributes) (*Face, error) {
	f := &Face{attrs: attrs}
	if err := f.SetPoints(p0, p1, p2); err != nil {
		return nil, err
	}
	f.uv = NewUVCoordSystem(f.boundary.Normal, attrs.Rotation)
	return f, nil
}

// NewFaceWithAxes creates a face with explicit texture axes.
func NewFaceWithAxes(p0, p1, p2 v3.Vec, attrs Attributes, uAxis, vAxis v3.Vec) (*Face, error) {
	f := &Face{attrs: attrs}
	if err := f.SetPoints(p0, p1, p2); err != nil {
		return nil, err
	}
	f.uv = UVCoordSystem{UAxis: geom.Normalize(uAxis), VAxis: geom.Normalize(vAxis)}
	return f, nil
}

// Points returns the three defining points.
func (f *Face) Points() [3]v3.Vec { return f.points }

// Boundary returns the face plane.
func (f *Face) Boundary() geom.Plane { return f.boundary }

func (f *Face) Normal() v3.Vec { return f.boundary.Normal }

func (f *Face) Attributes() Attributes { return f.attrs }

// SetAttributes replaces the attributes. A change of rotation turns the
// texture axes about the normal.
func (f *Face) SetAttributes(a Attributes) {
	if a.Rotation != f.attrs.Rotation {
		f.uv.rotate(f.boundary.Normal, a.Rotation-f.attrs.Rotation)
	}
	f.attrs = a
	f.ResetUVCoordSystemCache()
}

func (f *Face) UVCoordSystem() UVCoordSystem { return f.uv }

func (f *Face) Selected() bool { return f.selected }

func (f *Face) SetSelected(selected bool) { f.selected = selected }

// Geometry returns the attached polyhedron face, or nil.
func (f *Face) Geometry() *polyhedron.Face { return f.geometry }

func (f *Face) setGeometry(g *polyhedron.Face) {
	if f.geometry != g {
		f.geometry = g
		f.ResetUVCoordSystemCache()
	}
}

// Vertices returns the boundary positions of the attached geometry in
// counter-clockwise order seen from outside.
func (f *Face) Vertices() []v3.Vec {
	if f.geometry == nil {
		return nil
	}
	return f.geometry.VertexPositions()
}

func (f *Face) VertexCount() int {
	if f.geometry == nil {
		return 0
	}
	return f.geometry.VertexCount()
}

// Center returns the vertex centroid, or the plane anchor when detached.
func (f *Face) Center() v3.Vec {
	if f.geometry == nil {
		return f.boundary.Anchor()
	}
	return f.geometry.Center()
}

func (f *Face) Area() float64 {
	if f.geometry == nil {
		return 0
	}
	return f.geometry.Area()
}

// HasVertices reports whether the boundary matches positions up to a cyclic
// shift.
func (f *Face) HasVertices(positions []v3.Vec, eps float64) bool {
	return f.geometry != nil && f.geometry.HasVertexPositions(positions, eps)
}

func (f *Face) PointStatus(point v3.Vec) geom.PointStatus {
	return f.boundary.PointStatus(point, geom.PointStatusEpsilon)
}

// CoplanarWith reports whether plane equals the boundary, orientation
// included.
func (f *Face) CoplanarWith(plane geom.Plane) bool {
	return f.boundary.Equal(plane, geom.AlmostZero)
}

// Clone returns a detached copy.
func (f *Face) Clone() *Face {
	c := *f
	c.geometry = nil
	c.uvCache = nil
	return &c
}

// SetPoints redefines the boundary plane. The points are snapped to
// integers when already within CorrectEpsilon of them.
func (f *Face) SetPoints(p0, p1, p2 v3.Vec) error {
	pts := [3]v3.Vec{
		geom.Correct(p0, 0, geom.CorrectEpsilon),
		geom.Correct(p1, 0, geom.CorrectEpsilon),
		geom.Correct(p2, 0, geom.CorrectEpsilon),
	}
	plane, ok := geom.PlaneFromPoints(pts[0], pts[1], pts[2])
	if !ok {
		return geometryError("set face points", ErrInvalidFace,
			fmt.Errorf("colinear points %v %v %v", pts[0], pts[1], pts[2]))
	}
	f.points = pts
	f.boundary = plane
	f.ResetUVCoordSystemCache()
	return nil
}

// Invert flips the face to bound the opposite half-space.
func (f *Face) Invert() {
	f.boundary = f.boundary.Flip()
	f.points[1], f.points[2] = f.points[2], f.points[1]
	f.ResetUVCoordSystemCache()
}

// Transform applies m to the face. With lockTexture set the texture stays
// fixed to the surface.
func (f *Face) Transform(m mgl64.Mat4, lockTexture bool) error {
	invariant := f.Center()
	old := f.boundary

	var pts [3]v3.Vec
	for i, p := range f.points {
		pts[i] = geom.TransformPoint(m, p)
	}
	expected := geom.TransformNormal(m, old.Normal)
	if plane, ok := geom.PlaneFromPoints(pts[0], pts[1], pts[2]); ok && plane.Normal.Dot(expected) < 0 {
		pts[1], pts[2] = pts[2], pts[1]
	}
	if err := f.SetPoints(pts[0], pts[1], pts[2]); err != nil {
		return err
	}
	f.uv.transform(old.Normal, f.boundary.Normal, m, &f.attrs, lockTexture, invariant)
	return nil
}

// UpdatePointsFromVertices redefines the plane from three consecutive
// vertices of the attached geometry, choosing the corner closest to a right
// angle.
func (f *Face) UpdatePointsFromVertices() error {
	verts := f.Vertices()
	n := len(verts)
	if n < 3 {
		return geometryError("update face points", ErrInvalidFace, fmt.Errorf("%d vertices", n))
	}

	best, bestDot := 0, math.Inf(1)
	for i := 0; i < n && bestDot > 0; i++ {
		prev := geom.Normalize(verts[(i+n-1)%n].Sub(verts[i]))
		next := geom.Normalize(verts[(i+1)%n].Sub(verts[i]))
		if d := math.Abs(prev.Dot(next)); d < bestDot {
			best, bestDot = i, d
		}
	}

	oldNormal := f.boundary.Normal
	if err := f.SetPoints(verts[best], verts[(best+n-1)%n], verts[(best+1)%n]); err != nil {
		return err
	}
	f.uv.UpdateNormal(oldNormal, f.boundary.Normal)
	return nil
}

const integerSearchRadius = 16

// FindIntegerPlanePoints replaces the defining points with integer points
// spanning nearly the same plane. The face is left as it is when no
// integer triangle near its center reproduces the normal.
func (f *Face) FindIntegerPlanePoints() error {
	plane := f.boundary
	n := plane.Normal
	axis := geom.FirstAxis(n)
	a1, a2 := (axis+1)%3, (axis+2)%3
	center := plane.Project(f.Center())

	type candidate struct {
		p         v3.Vec
		err, dist float64
	}
	var cands []candidate
	cx, cy := math.Round(geom.Component(center, a1)), math.Round(geom.Component(center, a2))
	for i := -integerSearchRadius; i <= integerSearchRadius; i++ {
		for j := -integerSearchRadius; j <= integerSearchRadius; j++ {
			x, y := cx+float64(i), cy+float64(j)
			z := (plane.Distance - geom.Component(n, a1)*x - geom.Component(n, a2)*y) / geom.Component(n, axis)
			var p v3.Vec
			p = geom.WithComponent(p, a1, x)
			p = geom.WithComponent(p, a2, y)
			p = geom.WithComponent(p, axis, math.Round(z))
			cands = append(cands, candidate{
				p:    p,
				err:  math.Abs(plane.PointDistance(p)),
				dist: geom.Distance(p, center),
			})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.err, b.err); c != 0 {
			return c
		}
		return cmp.Compare(a.dist, b.dist)
	})

	p0 := cands[0].p
	var p1, p2 v3.Vec
	found := 0
	for _, c := range cands[1:] {
		switch {
		case found == 0 && geom.Distance(c.p, p0) >= 1:
			p1 = c.p
			found++
		case found == 1 && !geom.Colinear(p0, p1, c.p, geom.ColinearEpsilon):
			p2 = c.p
			found++
		}
		if found == 2 {
			break
		}
	}
	if found < 2 {
		return nil
	}

	candidatePlane, ok := geom.PlaneFromPoints(p0, p1, p2)
	if !ok {
		return nil
	}
	if candidatePlane.Normal.Dot(n) < 0 {
		p1, p2 = p2, p1
		candidatePlane = candidatePlane.Flip()
	}
	if candidatePlane.Normal.Dot(n) < 0.99 {
		return nil
	}
	return f.SetPoints(p0, p1, p2)
}

// IntersectWithRay returns the distance at which r hits the attached
// geometry on the given side.
func (f *Face) IntersectWithRay(r geom.Ray, side geom.Side) (float64, bool) {
	if f.geometry == nil {
		return 0, false
	}
	return f.geometry.IntersectWithRay(r, side)
}

// UV returns the texture coordinates of point.
func (f *Face) UV(point v3.Vec) mgl64.Vec2 {
	return f.uv.UV(point, f.attrs)
}

// VertexUVs returns the texture coordinates of Vertices, cached until the
// face changes.
func (f *Face) VertexUVs() []mgl64.Vec2 {
	if f.uvCache == nil && f.geometry != nil {
		verts := f.Vertices()
		f.uvCache = make([]mgl64.Vec2, len(verts))
		for i, p := range verts {
			f.uvCache[i] = f.UV(p)
		}
	}
	return f.uvCache
}

// ResetUVCoordSystemCache drops derived texture data.
func (f *Face) ResetUVCoordSystemCache() { f.uvCache = nil }

// TakeUVCoordSystemSnapshot saves the texture axes.
func (f *Face) TakeUVCoordSystemSnapshot() *UVCoordSystemSnapshot {
	return f.uv.snapshot()
}

// CopyUVCoordSystemFromFace restores axes taken from a face with boundary
// source. If the planes are not parallel the axes are turned onto this
// face's plane; parallel planes share the projection unchanged.
func (f *Face) CopyUVCoordSystemFromFace(snapshot *UVCoordSystemSnapshot, attrs Attributes, source geom.Plane) {
	if snapshot == nil {
		return
	}
	snapshot.restore(&f.uv)
	f.attrs.Offset = attrs.Offset
	f.attrs.Scale = attrs.Scale
	f.attrs.Rotation = attrs.Rotation
	if d := source.Normal.Dot(f.boundary.Normal); math.Abs(d) < 1-geom.ColinearEpsilon {
		f.uv.UpdateNormal(source.Normal, f.boundary.Normal)
	}
	f.ResetUVCoordSystemCache()
}

// sortWeight orders faces by normal so that axial planes are clipped first,
// in the order legacy compilers use.
func sortWeight(n v3.Vec) int {
	w := func(c float64) int {
		switch {
		case math.Abs(c-1) < 0.9:
			return 0
		case math.Abs(c+1) < 0.9:
			return 1
		default:
			return 2
		}
	}
	return w(n.X)*100 + w(n.Y)*10 + w(n.Z)
}
