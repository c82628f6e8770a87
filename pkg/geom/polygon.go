package geom

import (
	"math"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NewellNormal returns the unit normal of the polygon loop using Newell's
// method. A counter-clockwise loop seen from outside yields the outward
// normal.
func NewellNormal(loop []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, cur := range loop {
		nxt := loop[(i+1)%len(loop)]
		n.X += (cur.Y - nxt.Y) * (cur.Z + nxt.Z)
		n.Y += (cur.Z - nxt.Z) * (cur.X + nxt.X)
		n.Z += (cur.X - nxt.X) * (cur.Y + nxt.Y)
	}
	return Normalize(n)
}

// Centroid returns the average of points.
func Centroid(points []v3.Vec) v3.Vec {
	var c v3.Vec
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.MulScalar(1 / float64(len(points)))
}

// PolygonArea returns the area of a planar loop.
func PolygonArea(loop []v3.Vec) float64 {
	if len(loop) < 3 {
		return 0
	}
	var sum v3.Vec
	for i := 1; i+1 < len(loop); i++ {
		sum = sum.Add(loop[i].Sub(loop[0]).Cross(loop[i+1].Sub(loop[0])))
	}
	return sum.Length() / 2
}

// ConvexHull2D returns the convex hull of coplanar points as a loop that
// winds counter-clockwise around normal. Points closer than eps to the hull
// boundary between two hull vertices are dropped.
func ConvexHull2D(points []v3.Vec, normal v3.Vec, eps float64) []v3.Vec {
	idx := ConvexHull2DIndices(points, normal, eps)
	out := make([]v3.Vec, len(idx))
	for i, j := range idx {
		out[i] = points[j]
	}
	return out
}

// ConvexHull2DIndices is ConvexHull2D returning indices into points.
func ConvexHull2DIndices(points []v3.Vec, normal v3.Vec, eps float64) []int {
	if len(points) < 3 {
		idx := make([]int, len(points))
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	u, v := Plane{Normal: Normalize(normal)}.Basis()
	type proj struct {
		x, y float64
		i    int
	}
	ps := make([]proj, 0, len(points))
	for i, p := range points {
		ps = append(ps, proj{x: p.Dot(u), y: p.Dot(v), i: i})
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].x != ps[j].x {
			return ps[i].x < ps[j].x
		}
		return ps[i].y < ps[j].y
	})
	cross := func(o, a, b proj) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}

	// Andrew's monotone chain; (u, v, normal) is right-handed so a positive
	// turn in (u, v) is counter-clockwise around normal.
	hull := make([]proj, 0, 2*len(ps))
	for _, p := range ps {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= eps {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(ps) - 2; i >= 0; i-- {
		p := ps[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= eps {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	idx := make([]int, len(hull))
	for i, h := range hull {
		idx[i] = h.i
	}
	return idx
}

// PointInPolygon reports whether point, assumed to lie in the polygon's
// plane, is inside the loop. The test projects onto the plane perpendicular
// to the dominant axis of normal and counts edge crossings.
func PointInPolygon(point v3.Vec, loop []v3.Vec, normal v3.Vec) bool {
	axis := FirstAxis(normal)
	a := (axis + 1) % 3
	b := (axis + 2) % 3

	px, py := Component(point, a), Component(point, b)
	inside := false
	for i, j := 0, len(loop)-1; i < len(loop); j, i = i, i+1 {
		xi, yi := Component(loop[i], a)-px, Component(loop[i], b)-py
		xj, yj := Component(loop[j], a)-px, Component(loop[j], b)-py
		if (yi > 0) != (yj > 0) {
			x := xi + (0-yi)*(xj-xi)/(yj-yi)
			if x > 0 {
				inside = !inside
			}
		}
	}
	if inside {
		return true
	}
	// Boundary points count as inside.
	for i := range loop {
		if SegmentPointDistance(loop[i], loop[(i+1)%len(loop)], point) <= AlmostZero {
			return true
		}
	}
	return false
}

// SegmentPointDistance returns the distance from p to the segment a-b.
func SegmentPointDistance(a, b, p v3.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return Distance(a, p)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return Distance(a.Add(ab.MulScalar(t)), p)
}

// SegmentDistance returns the shortest distance between segments p0-p1 and
// q0-q1.
func SegmentDistance(p0, p1, q0, q1 v3.Vec) float64 {
	d1 := p1.Sub(p0)
	d2 := q1.Sub(q0)
	r := p0.Sub(q0)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= ColinearEpsilon && e <= ColinearEpsilon:
		return Distance(p0, q0)
	case a <= ColinearEpsilon:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= ColinearEpsilon {
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = clamp01((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}
	return Distance(p0.Add(d1.MulScalar(s)), q0.Add(d2.MulScalar(t)))
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
