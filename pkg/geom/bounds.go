package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultWorldSize is the default half-extent of the world along each axis.
const DefaultWorldSize = 16384.0

// WorldBounds returns the cube [-halfSize, halfSize]³.
func WorldBounds(halfSize float64) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -halfSize, Y: -halfSize, Z: -halfSize},
		Max: v3.Vec{X: halfSize, Y: halfSize, Z: halfSize},
	}
}

// BoundsOf returns the smallest box containing points. ok is false when
// points is empty.
func BoundsOf(points []v3.Vec) (b sdf.Box3, ok bool) {
	if len(points) == 0 {
		return sdf.Box3{}, false
	}
	b = sdf.Box3{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = Min(b.Min, p)
		b.Max = Max(b.Max, p)
	}
	return b, true
}

// ExpandBounds grows b by d on every side.
func ExpandBounds(b sdf.Box3, d float64) sdf.Box3 {
	dv := v3.Vec{X: d, Y: d, Z: d}
	return sdf.Box3{Min: b.Min.Sub(dv), Max: b.Max.Add(dv)}
}

// MergeBounds returns the smallest box containing a and b.
func MergeBounds(a, b sdf.Box3) sdf.Box3 {
	return sdf.Box3{Min: Min(a.Min, b.Min), Max: Max(a.Max, b.Max)}
}

// BoundsContainsPoint reports whether p lies in b, treating the faces as
// inclusive within eps.
func BoundsContainsPoint(b sdf.Box3, p v3.Vec, eps float64) bool {
	return p.X >= b.Min.X-eps && p.X <= b.Max.X+eps &&
		p.Y >= b.Min.Y-eps && p.Y <= b.Max.Y+eps &&
		p.Z >= b.Min.Z-eps && p.Z <= b.Max.Z+eps
}

// BoundsContains reports whether inner lies entirely in outer.
func BoundsContains(outer, inner sdf.Box3, eps float64) bool {
	return BoundsContainsPoint(outer, inner.Min, eps) && BoundsContainsPoint(outer, inner.Max, eps)
}

// BoundsIntersect reports whether a and b overlap or touch within eps.
func BoundsIntersect(a, b sdf.Box3, eps float64) bool {
	return a.Min.X <= b.Max.X+eps && b.Min.X <= a.Max.X+eps &&
		a.Min.Y <= b.Max.Y+eps && b.Min.Y <= a.Max.Y+eps &&
		a.Min.Z <= b.Max.Z+eps && b.Min.Z <= a.Max.Z+eps
}

// BoundsSize returns Max - Min.
func BoundsSize(b sdf.Box3) v3.Vec {
	return b.Max.Sub(b.Min)
}

// BoundsCenter returns the midpoint of b.
func BoundsCenter(b sdf.Box3) v3.Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// BoundsEqual compares both corners within eps.
func BoundsEqual(a, b sdf.Box3, eps float64) bool {
	return Equal(a.Min, b.Min, eps) && Equal(a.Max, b.Max, eps)
}

// BoundsVertices returns the eight corners of b.
func BoundsVertices(b sdf.Box3) [8]v3.Vec {
	return [8]v3.Vec{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// IntersectBoundsWithRay returns the distance at which r enters b, or NaN
// if it misses. A ray starting inside b yields 0.
func IntersectBoundsWithRay(b sdf.Box3, r Ray) float64 {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	for i := 0; i < 3; i++ {
		o := Component(r.Origin, i)
		d := Component(r.Direction, i)
		lo := Component(b.Min, i)
		hi := Component(b.Max, i)
		if math.Abs(d) < ColinearEpsilon {
			if o < lo || o > hi {
				return math.NaN()
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return math.NaN()
		}
	}
	if tmax < 0 {
		return math.NaN()
	}
	return math.Max(tmin, 0)
}
