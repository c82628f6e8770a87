package brush

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/brushwork/pkg/geom"
)

// baseAxes holds the paraxial (normal, u, v) triples used to seed the
// texture axes of new faces.
var baseAxes = [18]v3.Vec{
	{Z: 1}, {X: 1}, {Y: -1},
	{Z: -1}, {X: 1}, {Y: -1},
	{X: 1}, {Y: 1}, {Z: -1},
	{X: -1}, {Y: 1}, {Z: -1},
	{Y: 1}, {X: 1}, {Z: -1},
	{Y: -1}, {X: 1}, {Z: -1},
}

// planeNormalIndex returns the base axis triple whose normal is closest to
// normal. Ties go to the earlier triple.
func planeNormalIndex(normal v3.Vec) int {
	best, bestDot := 0, 0.0
	for i := 0; i < 6; i++ {
		if d := normal.Dot(baseAxes[i*3]); d > bestDot {
			best, bestDot = i, d
		}
	}
	return best
}

// UVCoordSystem maps world positions to texture coordinates by projecting
// them onto two explicit axes:
//
//	u = p·UAxis / scale.x + offset.x
//	v = p·VAxis / scale.y + offset.y
type UVCoordSystem struct {
	UAxis v3.Vec `json:"uAxis"`
	VAxis v3.Vec `json:"vAxis"`
}

// UVCoordSystemSnapshot is a saved copy of a face's texture axes.
type UVCoordSystemSnapshot struct {
	uAxis, vAxis v3.Vec
}

func (s *UVCoordSystemSnapshot) restore(into *UVCoordSystem) {
	into.UAxis = s.uAxis
	into.VAxis = s.vAxis
}

// NewUVCoordSystem returns the paraxial axes for normal, turned by rotation
// degrees about it.
func NewUVCoordSystem(normal v3.Vec, rotation float64) UVCoordSystem {
	i := planeNormalIndex(normal)
	s := UVCoordSystem{UAxis: baseAxes[i*3+1], VAxis: baseAxes[i*3+2]}
	s.rotate(normal, rotation)
	return s
}

// UV returns the texture coordinates of point.
func (s UVCoordSystem) UV(point v3.Vec, attrs Attributes) mgl64.Vec2 {
	sc := attrs.safeScale()
	return mgl64.Vec2{
		point.Dot(s.UAxis)/sc[0] + attrs.Offset[0],
		point.Dot(s.VAxis)/sc[1] + attrs.Offset[1],
	}
}

func (s UVCoordSystem) snapshot() *UVCoordSystemSnapshot {
	return &UVCoordSystemSnapshot{uAxis: s.UAxis, vAxis: s.VAxis}
}

func (s *UVCoordSystem) rotate(normal v3.Vec, deg float64) {
	if deg == 0 || geom.IsZero(normal, geom.ColinearEpsilon) {
		return
	}
	q := mgl64.QuatRotate(mgl64.DegToRad(deg), geom.ToMgl(geom.Normalize(normal)))
	s.UAxis = geom.FromMgl(q.Rotate(geom.ToMgl(s.UAxis)))
	s.VAxis = geom.FromMgl(q.Rotate(geom.ToMgl(s.VAxis)))
}

// UpdateNormal turns both axes by the rotation taking oldNormal onto
// newNormal.
func (s *UVCoordSystem) UpdateNormal(oldNormal, newNormal v3.Vec) {
	if geom.Equal(oldNormal, newNormal, geom.ColinearEpsilon) {
		return
	}
	q := mgl64.QuatBetweenVectors(geom.ToMgl(oldNormal), geom.ToMgl(newNormal))
	s.UAxis = geom.FromMgl(q.Rotate(geom.ToMgl(s.UAxis)))
	s.VAxis = geom.FromMgl(q.Rotate(geom.ToMgl(s.VAxis)))
}

// transform updates the axes for a face whose plane moved from oldNormal to
// newNormal under m. With lock set, attrs are adjusted so that every point
// keeps its texture coordinates; invariant is the point used to fix the
// offset.
func (s *UVCoordSystem) transform(oldNormal, newNormal v3.Vec, m mgl64.Mat4, attrs *Attributes, lock bool, invariant v3.Vec) {
	lin := m.Mat3()
	if !lock || math.Abs(lin.Det()) < geom.ColinearEpsilon {
		s.UpdateNormal(oldNormal, newNormal)
		return
	}

	oldUV := s.UV(invariant, *attrs)

	// Texture coordinates are linear in p, so u'(Mp) = u(p) holds when
	// the axes are carried by the inverse transpose of the linear part.
	invT := lin.Inv().Transpose()
	u := geom.FromMgl(invT.Mul3x1(geom.ToMgl(s.UAxis)))
	v := geom.FromMgl(invT.Mul3x1(geom.ToMgl(s.VAxis)))
	ul, vl := u.Length(), v.Length()
	if ul < geom.ColinearEpsilon || vl < geom.ColinearEpsilon {
		s.UpdateNormal(oldNormal, newNormal)
		return
	}

	sc := attrs.safeScale()
	s.UAxis = u.MulScalar(1 / ul)
	s.VAxis = v.MulScalar(1 / vl)
	attrs.Scale = mgl64.Vec2{sc[0] / ul, sc[1] / vl}

	plain := *attrs
	plain.Offset = mgl64.Vec2{}
	moved := s.UV(geom.TransformPoint(m, invariant), plain)
	attrs.Offset = oldUV.Sub(moved)
}
