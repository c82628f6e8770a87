package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PointStatus classifies a point against a plane.
type PointStatus int

const (
	Inside PointStatus = iota // on the plane within tolerance
	Above                     // on the side the normal points to
	Below
)

func (s PointStatus) String() string {
	switch s {
	case Above:
		return "above"
	case Below:
		return "below"
	default:
		return "inside"
	}
}

// Plane is the set of points p with Normal·p = Distance. Normal is a unit
// vector pointing out of the half-space the plane bounds.
type Plane struct {
	Normal   v3.Vec
	Distance float64
}

// NewPlane builds a plane from a normal and a point on it.
func NewPlane(normal, anchor v3.Vec) Plane {
	n := Normalize(normal)
	return Plane{Normal: n, Distance: n.Dot(anchor)}
}

// PlaneFromPoints builds the plane through p0, p1 and p2 whose normal is
// (p2-p0)×(p1-p0). It returns false if the points are colinear.
func PlaneFromPoints(p0, p1, p2 v3.Vec) (Plane, bool) {
	n := p2.Sub(p0).Cross(p1.Sub(p0))
	l := n.Length()
	if l < ColinearEpsilon || math.IsNaN(l) {
		return Plane{}, false
	}
	n = n.MulScalar(1 / l)
	return Plane{Normal: n, Distance: n.Dot(p0)}, true
}

// Valid reports whether the normal is a finite unit vector.
func (p Plane) Valid() bool {
	if IsNaN(p.Normal) || math.IsNaN(p.Distance) || math.IsInf(p.Distance, 0) {
		return false
	}
	return math.Abs(p.Normal.Length()-1) < AlmostZero
}

// PointDistance returns the signed distance of point from the plane.
func (p Plane) PointDistance(point v3.Vec) float64 {
	return p.Normal.Dot(point) - p.Distance
}

// PointStatus classifies point using eps as the plane thickness.
func (p Plane) PointStatus(point v3.Vec, eps float64) PointStatus {
	d := p.PointDistance(point)
	switch {
	case d > eps:
		return Above
	case d < -eps:
		return Below
	default:
		return Inside
	}
}

// Anchor returns the point of the plane closest to the origin.
func (p Plane) Anchor() v3.Vec {
	return p.Normal.MulScalar(p.Distance)
}

// Flip returns the plane with the opposite orientation.
func (p Plane) Flip() Plane {
	return Plane{Normal: Neg(p.Normal), Distance: -p.Distance}
}

// Translate moves the plane by delta.
func (p Plane) Translate(delta v3.Vec) Plane {
	return Plane{Normal: p.Normal, Distance: p.Distance + p.Normal.Dot(delta)}
}

// Project returns the orthogonal projection of point onto the plane.
func (p Plane) Project(point v3.Vec) v3.Vec {
	return point.Sub(p.Normal.MulScalar(p.PointDistance(point)))
}

// Equal compares normals and distances within eps.
func (p Plane) Equal(o Plane, eps float64) bool {
	return Equal(p.Normal, o.Normal, eps) && math.Abs(p.Distance-o.Distance) <= eps
}

// IntersectWithRay returns the distance along r at which it meets the plane,
// or NaN if r is parallel to the plane.
func (p Plane) IntersectWithRay(r Ray) float64 {
	d := p.Normal.Dot(r.Direction)
	if math.Abs(d) < ColinearEpsilon {
		return math.NaN()
	}
	return (p.Distance - p.Normal.Dot(r.Origin)) / d
}

// IntersectSegment returns the point where the segment a→b crosses the plane.
// The caller guarantees that a and b lie on different sides.
func (p Plane) IntersectSegment(a, b v3.Vec) v3.Vec {
	da := p.PointDistance(a)
	db := p.PointDistance(b)
	t := da / (da - db)
	return Lerp(a, b, t)
}

// Basis returns two unit vectors spanning the plane, forming a right-handed
// frame (u, v, Normal).
func (p Plane) Basis() (u, v v3.Vec) {
	ref := PosZ
	if math.Abs(p.Normal.Z) > 0.9 {
		ref = PosX
	}
	u = Normalize(ref.Cross(p.Normal))
	v = p.Normal.Cross(u)
	return u, v
}
