package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// ToMgl converts an sdfx vector to a mathgl one.
func ToMgl(v v3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts a mathgl vector to an sdfx one.
func FromMgl(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// TransformPoint applies the affine transform m to p.
func TransformPoint(m mgl64.Mat4, p v3.Vec) v3.Vec {
	return FromMgl(mgl64.TransformCoordinate(ToMgl(p), m))
}

// TransformVector applies the linear part of m to d.
func TransformVector(m mgl64.Mat4, d v3.Vec) v3.Vec {
	return FromMgl(m.Mat3().Mul3x1(ToMgl(d)))
}

// TransformNormal transforms a surface normal by the inverse transpose of
// the linear part of m and renormalizes it.
func TransformNormal(m mgl64.Mat4, n v3.Vec) v3.Vec {
	lin := m.Mat3()
	if math.Abs(lin.Det()) < ColinearEpsilon {
		return Normalize(n)
	}
	return Normalize(FromMgl(lin.Inv().Transpose().Mul3x1(ToMgl(n))))
}

// Translation returns the matrix translating by delta.
func Translation(delta v3.Vec) mgl64.Mat4 {
	return mgl64.Translate3D(delta.X, delta.Y, delta.Z)
}

// Scaling returns the matrix scaling by s about the origin.
func Scaling(s v3.Vec) mgl64.Mat4 {
	return mgl64.Scale3D(s.X, s.Y, s.Z)
}

// RotationDegrees returns the rotation about the X, Y and Z axes applied in
// that order, angles in degrees.
func RotationDegrees(r v3.Vec) mgl64.Mat4 {
	rx := mgl64.HomogRotate3DX(mgl64.DegToRad(r.X))
	ry := mgl64.HomogRotate3DY(mgl64.DegToRad(r.Y))
	rz := mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Z))
	return rz.Mul4(ry).Mul4(rx)
}

// RotationAbout rotates by deg degrees about axis through center.
func RotationAbout(center, axis v3.Vec, deg float64) mgl64.Mat4 {
	rot := mgl64.HomogRotate3D(mgl64.DegToRad(deg), ToMgl(Normalize(axis)))
	return Translation(center).Mul4(rot).Mul4(Translation(Neg(center)))
}

// IsIdentity reports whether m is the identity within eps.
func IsIdentity(m mgl64.Mat4, eps float64) bool {
	return m.ApproxEqualThreshold(mgl64.Ident4(), eps)
}

// HasNaN reports whether any element of m is NaN or infinite.
func HasNaN(m mgl64.Mat4) bool {
	for _, f := range m {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}

// PointsTransformation returns the affine map taking the triangle from onto
// the triangle to. The out-of-plane axis of each triangle maps onto the
// other's unit normal, so the result is unique. ok is false if either
// triangle is degenerate.
func PointsTransformation(from, to [3]v3.Vec) (mgl64.Mat4, bool) {
	p := frame(from)
	q := frame(to)
	if math.Abs(p.Det()) < ColinearEpsilon*ColinearEpsilon {
		return mgl64.Mat4{}, false
	}
	lin := q.Mul3(p.Inv())
	t := ToMgl(to[0]).Sub(lin.Mul3x1(ToMgl(from[0])))

	m := lin.Mat4()
	m.Set(0, 3, t[0])
	m.Set(1, 3, t[1])
	m.Set(2, 3, t[2])
	if HasNaN(m) {
		return mgl64.Mat4{}, false
	}
	return m, true
}

func frame(pts [3]v3.Vec) mgl64.Mat3 {
	a := ToMgl(pts[1].Sub(pts[0]))
	b := ToMgl(pts[2].Sub(pts[0]))
	n := a.Cross(b)
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return mgl64.Mat3FromCols(a, b, n)
}
