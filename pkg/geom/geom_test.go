package geom

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestPlaneFromPoints(t *testing.T) {
	tests := []struct {
		name       string
		p0, p1, p2 v3.Vec
		wantNormal v3.Vec
		wantDist   float64
		wantOK     bool
	}{
		{
			name:       "top face of unit cube",
			p0:         v3.Vec{X: 0, Y: 0, Z: 1},
			p1:         v3.Vec{X: 0, Y: 1, Z: 1},
			p2:         v3.Vec{X: 1, Y: 0, Z: 1},
			wantNormal: PosZ,
			wantDist:   1,
			wantOK:     true,
		},
		{
			name:       "bottom face",
			p0:         v3.Vec{},
			p1:         v3.Vec{X: 1},
			p2:         v3.Vec{Y: 1},
			wantNormal: NegZ,
			wantDist:   0,
			wantOK:     true,
		},
		{
			name:   "colinear",
			p0:     v3.Vec{},
			p1:     v3.Vec{X: 1},
			p2:     v3.Vec{X: 2},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := PlaneFromPoints(tt.p0, tt.p1, tt.p2)
			if ok != tt.wantOK {
				t.Fatalf("PlaneFromPoints() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.wantNormal, p.Normal, approx); diff != "" {
				t.Errorf("normal mismatch (-want +got):\n%s", diff)
			}
			if math.Abs(p.Distance-tt.wantDist) > 1e-9 {
				t.Errorf("Distance = %v, want %v", p.Distance, tt.wantDist)
			}
		})
	}
}

func TestPlanePointStatus(t *testing.T) {
	p := NewPlane(PosZ, v3.Vec{Z: 2})
	tests := []struct {
		point v3.Vec
		want  PointStatus
	}{
		{v3.Vec{Z: 3}, Above},
		{v3.Vec{Z: 1}, Below},
		{v3.Vec{X: 5, Z: 2.00001}, Inside},
	}
	for _, tt := range tests {
		if got := p.PointStatus(tt.point, PointStatusEpsilon); got != tt.want {
			t.Errorf("PointStatus(%v) = %v, want %v", tt.point, got, tt.want)
		}
	}
}

func TestPlaneIntersectWithRay(t *testing.T) {
	p := NewPlane(PosZ, v3.Vec{Z: 4})
	d := p.IntersectWithRay(NewRay(v3.Vec{}, PosZ))
	if math.Abs(d-4) > 1e-9 {
		t.Errorf("IntersectWithRay() = %v, want 4", d)
	}
	if d := p.IntersectWithRay(NewRay(v3.Vec{}, PosX)); !math.IsNaN(d) {
		t.Errorf("parallel ray: IntersectWithRay() = %v, want NaN", d)
	}
}

func TestConvexHull2D(t *testing.T) {
	pts := []v3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2},
		{X: 1, Y: 1}, // interior
		{X: 1, Y: 0}, // on an edge
	}
	hull := ConvexHull2D(pts, PosZ, AlmostZero)
	if len(hull) != 4 {
		t.Fatalf("len(hull) = %d, want 4: %v", len(hull), hull)
	}
	if n := NewellNormal(hull); !Equal(n, PosZ, 1e-9) {
		t.Errorf("hull winding normal = %v, want %v", n, PosZ)
	}
	if a := PolygonArea(hull); math.Abs(a-4) > 1e-9 {
		t.Errorf("PolygonArea() = %v, want 4", a)
	}

	flipped := ConvexHull2D(pts, NegZ, AlmostZero)
	if n := NewellNormal(flipped); !Equal(n, NegZ, 1e-9) {
		t.Errorf("hull winding normal = %v, want %v", n, NegZ)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []v3.Vec{{X: 0}, {X: 2}, {X: 2, Y: 2}, {Y: 2}}
	tests := []struct {
		name  string
		point v3.Vec
		want  bool
	}{
		{"center", v3.Vec{X: 1, Y: 1}, true},
		{"outside", v3.Vec{X: 3, Y: 1}, false},
		{"on edge", v3.Vec{X: 2, Y: 1}, true},
		{"corner", v3.Vec{X: 0, Y: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.point, square, PosZ); got != tt.want {
				t.Errorf("PointInPolygon(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestSegmentDistance(t *testing.T) {
	d := SegmentDistance(v3.Vec{X: -1}, v3.Vec{X: 1}, v3.Vec{Y: -1, Z: 3}, v3.Vec{Y: 1, Z: 3})
	if math.Abs(d-3) > 1e-9 {
		t.Errorf("SegmentDistance() = %v, want 3", d)
	}
}

func TestPointsTransformation(t *testing.T) {
	from := [3]v3.Vec{{}, {X: 1}, {Y: 1}}
	delta := v3.Vec{X: 3, Y: -2, Z: 5}
	to := [3]v3.Vec{from[0].Add(delta), from[1].Add(delta), from[2].Add(delta)}

	m, ok := PointsTransformation(from, to)
	if !ok {
		t.Fatal("PointsTransformation() ok = false, want true")
	}
	if !m.ApproxEqualThreshold(Translation(delta), 1e-9) {
		t.Errorf("PointsTransformation() = %v, want translation by %v", m, delta)
	}

	off := v3.Vec{X: 0.3, Y: 0.4, Z: 2}
	if got := TransformPoint(m, off); !Equal(got, off.Add(delta), 1e-9) {
		t.Errorf("TransformPoint() = %v, want %v", got, off.Add(delta))
	}

	if _, ok := PointsTransformation([3]v3.Vec{{}, {X: 1}, {X: 2}}, to); ok {
		t.Error("degenerate source triangle: ok = true, want false")
	}
}

func TestIntersectBoundsWithRay(t *testing.T) {
	b := WorldBounds(1)
	if d := IntersectBoundsWithRay(b, NewRay(v3.Vec{X: -5}, PosX)); math.Abs(d-4) > 1e-9 {
		t.Errorf("IntersectBoundsWithRay() = %v, want 4", d)
	}
	if d := IntersectBoundsWithRay(b, NewRay(v3.Vec{X: -5, Y: 3}, PosX)); !math.IsNaN(d) {
		t.Errorf("miss: IntersectBoundsWithRay() = %v, want NaN", d)
	}
	if d := IntersectBoundsWithRay(b, NewRay(v3.Vec{}, PosX)); d != 0 {
		t.Errorf("inside: IntersectBoundsWithRay() = %v, want 0", d)
	}
}

func TestCorrect(t *testing.T) {
	got := Correct(v3.Vec{X: 1.0004, Y: 2.5, Z: -0.9996}, 0, CorrectEpsilon)
	want := v3.Vec{X: 1, Y: 2.5, Z: -1}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("Correct() mismatch (-want +got):\n%s", diff)
	}
}
