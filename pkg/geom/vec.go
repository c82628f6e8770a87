// Package geom provides the small vector, plane, ray, bounds and transform
// vocabulary shared by the polyhedron and brush packages. Vectors and boxes
// are the sdfx types so that geometry can flow straight into the SDF kernel.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerances used throughout the kernel.
const (
	AlmostZero         = 0.001
	PointStatusEpsilon = 0.0001
	ColinearEpsilon    = 0.00001
	CloseVertexEpsilon = 0.01
	CorrectEpsilon     = 0.001
	MinEdgeLength      = 0.01
)

// Axis unit vectors.
var (
	PosX = v3.Vec{X: 1}
	PosY = v3.Vec{Y: 1}
	PosZ = v3.Vec{Z: 1}
	NegX = v3.Vec{X: -1}
	NegY = v3.Vec{Y: -1}
	NegZ = v3.Vec{Z: -1}
)

// Component returns the i-th coordinate of v (0 = X, 1 = Y, 2 = Z).
func Component(v v3.Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns a copy of v with the i-th coordinate replaced.
func WithComponent(v v3.Vec, i int, value float64) v3.Vec {
	switch i {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// Neg returns -v.
func Neg(v v3.Vec) v3.Vec {
	return v3.Vec{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Min returns the componentwise minimum of a and b.
func Min(a, b v3.Vec) v3.Vec {
	return v3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// Max returns the componentwise maximum of a and b.
func Max(a, b v3.Vec) v3.Vec {
	return v3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Distance returns |a - b|.
func Distance(a, b v3.Vec) float64 {
	return a.Sub(b).Length()
}

// Equal reports whether a and b differ by at most eps in every coordinate.
func Equal(a, b v3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

// IsZero reports whether every coordinate of v is within eps of zero.
func IsZero(v v3.Vec, eps float64) bool {
	return Equal(v, v3.Vec{}, eps)
}

// IsNaN reports whether any coordinate of v is NaN.
func IsNaN(v v3.Vec) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// Normalize returns v scaled to unit length, or the zero vector when v has no
// length.
func Normalize(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return v.MulScalar(1 / l)
}

// Lerp interpolates between a and b.
func Lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Colinear reports whether a, b and c lie on a common line.
func Colinear(a, b, c v3.Vec, eps float64) bool {
	ab := b.Sub(a)
	ac := c.Sub(a)
	cr := ab.Cross(ac)
	return cr.Length() <= eps*math.Max(1, ab.Length()*ac.Length())
}

// Parallel reports whether the unit vectors a and b point the same way.
func Parallel(a, b v3.Vec, eps float64) bool {
	return 1-a.Dot(b) <= eps
}

// FirstAxis returns the index of the coordinate with the largest magnitude.
func FirstAxis(v v3.Vec) int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	default:
		return 2
	}
}

// MajorAxis returns the signed unit axis closest to v.
func MajorAxis(v v3.Vec) v3.Vec {
	i := FirstAxis(v)
	if Component(v, i) < 0 {
		return WithComponent(v3.Vec{}, i, -1)
	}
	return WithComponent(v3.Vec{}, i, 1)
}

// Round rounds every coordinate to the nearest integer.
func Round(v v3.Vec) v3.Vec {
	return v3.Vec{X: math.Round(v.X), Y: math.Round(v.Y), Z: math.Round(v.Z)}
}

// Snap rounds every coordinate to the nearest multiple of grid.
func Snap(v v3.Vec, grid float64) v3.Vec {
	if grid <= 0 {
		return v
	}
	return v3.Vec{
		X: math.Round(v.X/grid) * grid,
		Y: math.Round(v.Y/grid) * grid,
		Z: math.Round(v.Z/grid) * grid,
	}
}

// Correct rounds each coordinate to the given number of decimals if it is
// already within eps of that rounded value.
func Correct(v v3.Vec, decimals int, eps float64) v3.Vec {
	return v3.Vec{
		X: correct(v.X, decimals, eps),
		Y: correct(v.Y, decimals, eps),
		Z: correct(v.Z, decimals, eps),
	}
}

func correct(f float64, decimals int, eps float64) float64 {
	m := math.Pow(10, float64(decimals))
	r := math.Round(f*m) / m
	if math.Abs(f-r) <= eps {
		return r
	}
	return f
}
