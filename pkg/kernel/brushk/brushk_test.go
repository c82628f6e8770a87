package brushk

import (
	"errors"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/kernel"
)

// must unwraps a kernel result inside a table literal.
func must(t *testing.T) func(kernel.Solid, error) kernel.Solid {
	return func(s kernel.Solid, err error) kernel.Solid {
		t.Helper()
		if err != nil {
			t.Fatalf("kernel error = %v", err)
		}
		return s
	}
}

func box(min, max v3.Vec) sdf.Box3 { return sdf.Box3{Min: min, Max: max} }

func pieces(s kernel.Solid) int {
	return len(s.(*Solid).Brushes())
}

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestBox(t *testing.T) {
	k := New(WithMaterial("oak"))
	s := must(t)(k.Box(v3.Vec{X: 16, Y: 8, Z: 4}))

	if diff := gocmp.Diff(box(v3.Vec{}, v3.Vec{X: 16, Y: 8, Z: 4}), s.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m.TriangleCount() != 12 || len(m.UVs) != 2*m.VertexCount() {
		t.Errorf("ToMesh() = %d triangles, %d uvs for %d vertices", m.TriangleCount(), len(m.UVs), m.VertexCount())
	}
	for _, f := range s.(*Solid).Brushes()[0].Faces() {
		if f.Attributes().MaterialName != "oak" {
			t.Errorf("material = %q, want oak", f.Attributes().MaterialName)
		}
	}
}

func TestDegenerateBox(t *testing.T) {
	if _, err := New().Box(v3.Vec{Y: 1, Z: 1}); !errors.Is(err, brush.ErrBrushEmpty) {
		t.Errorf("Box() error = %v, want %v", err, brush.ErrBrushEmpty)
	}
}

type foreign struct{}

func (foreign) Bounds() sdf.Box3 { return sdf.Box3{} }

func TestForeignSolid(t *testing.T) {
	k := New()
	s := must(t)(k.Box(v3.Vec{X: 1, Y: 1, Z: 1}))
	if _, err := k.Union(s, foreign{}); !errors.Is(err, ErrForeignSolid) {
		t.Errorf("Union() error = %v, want %v", err, ErrForeignSolid)
	}
	if _, err := k.ToMesh(foreign{}); !errors.Is(err, ErrForeignSolid) {
		t.Errorf("ToMesh() error = %v, want %v", err, ErrForeignSolid)
	}
}

func TestPrism(t *testing.T) {
	k := New()
	s := must(t)(k.Prism(6, 8, 16))
	y := 8 * math.Sin(math.Pi/3)
	want := box(v3.Vec{X: -8, Y: -y, Z: -8}, v3.Vec{X: 8, Y: y, Z: 8})
	if diff := gocmp.Diff(want, s.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
	if got := s.(*Solid).Brushes()[0].FaceCount(); got != 8 {
		t.Errorf("FaceCount() = %d, want 8", got)
	}
}

func TestBooleans(t *testing.T) {
	k := New()
	m := must(t)
	long := m(k.Box(v3.Vec{X: 32, Y: 16, Z: 16}))
	cutter := m(k.Translate(m(k.Box(v3.Vec{X: 16, Y: 32, Z: 32})), v3.Vec{X: 8, Y: -8, Z: -8}))
	far := func(s kernel.Solid, d v3.Vec) kernel.Solid { return m(k.Translate(s, d)) }

	tests := []struct {
		name   string
		solid  kernel.Solid
		pieces int
		bounds sdf.Box3
	}{
		{
			name:   "union",
			solid:  m(k.Union(long, far(m(k.Box(v3.Vec{X: 4, Y: 4, Z: 4})), v3.Vec{X: 40}))),
			pieces: 2,
			bounds: box(v3.Vec{}, v3.Vec{X: 44, Y: 16, Z: 16}),
		},
		{
			name:   "difference",
			solid:  m(k.Difference(long, cutter)),
			pieces: 2,
			bounds: box(v3.Vec{}, v3.Vec{X: 32, Y: 16, Z: 16}),
		},
		{
			name:   "disjoint difference",
			solid:  m(k.Difference(long, far(cutter, v3.Vec{X: 100}))),
			pieces: 1,
			bounds: box(v3.Vec{}, v3.Vec{X: 32, Y: 16, Z: 16}),
		},
		{
			name:   "intersection",
			solid:  m(k.Intersection(long, cutter)),
			pieces: 1,
			bounds: box(v3.Vec{X: 8}, v3.Vec{X: 24, Y: 16, Z: 16}),
		},
		{
			name:   "disjoint intersection",
			solid:  m(k.Intersection(long, far(long, v3.Vec{Z: 100}))),
			pieces: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pieces(tt.solid); got != tt.pieces {
				t.Errorf("pieces = %d, want %d", got, tt.pieces)
			}
			if diff := gocmp.Diff(tt.bounds, tt.solid.Bounds(), approx); diff != "" {
				t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
			}
			if _, err := k.ToMesh(tt.solid); err != nil {
				t.Errorf("ToMesh() error = %v", err)
			}
		})
	}
}

func TestTransforms(t *testing.T) {
	k := New()
	m := must(t)
	b := m(k.Box(v3.Vec{X: 16, Y: 8, Z: 4}))

	moved := m(k.Translate(b, v3.Vec{X: 1, Y: 2, Z: 3}))
	if diff := gocmp.Diff(box(v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 17, Y: 10, Z: 7}), moved.Bounds(), approx); diff != "" {
		t.Errorf("Translate() bounds mismatch (-want +got):\n%s", diff)
	}
	if diff := gocmp.Diff(box(v3.Vec{}, v3.Vec{X: 16, Y: 8, Z: 4}), b.Bounds(), approx); diff != "" {
		t.Errorf("Translate() modified its operand (-want +got):\n%s", diff)
	}

	turned := m(k.Rotate(b, v3.Vec{Z: 90}))
	if diff := gocmp.Diff(box(v3.Vec{X: -8}, v3.Vec{Y: 16, Z: 4}), turned.Bounds(), approx); diff != "" {
		t.Errorf("Rotate() bounds mismatch (-want +got):\n%s", diff)
	}

	if _, err := k.Translate(b, v3.Vec{X: 2 * geom.DefaultWorldSize}); err == nil {
		t.Error("Translate() moved a brush out of the world")
	}
}

func TestMoveVertices(t *testing.T) {
	k := New()
	m := must(t)
	pair := m(k.Union(
		m(k.Box(v3.Vec{X: 16, Y: 16, Z: 16})),
		m(k.Translate(m(k.Box(v3.Vec{X: 4, Y: 4, Z: 4})), v3.Vec{X: 40})),
	))
	corner := v3.Vec{X: 16, Y: 16, Z: 16}

	tests := []struct {
		name    string
		vertex  v3.Vec
		delta   v3.Vec
		wantErr bool
		max     v3.Vec
	}{
		{"pull corner", corner, v3.Vec{X: 1, Y: 1, Z: 1}, false, v3.Vec{X: 44, Y: 17, Z: 17}},
		{"through the opposite face", corner, v3.Vec{X: -48, Y: -40, Z: -35.2}, true, v3.Vec{}},
		{"unknown vertex", v3.Vec{X: 99, Y: 99, Z: 99}, v3.Vec{X: 1}, true, v3.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := k.MoveVertices(pair, []v3.Vec{tt.vertex}, tt.delta)
			if tt.wantErr {
				if !errors.Is(err, brush.ErrMoveRejected) {
					t.Errorf("MoveVertices() error = %v, want %v", err, brush.ErrMoveRejected)
				}
				return
			}
			if err != nil {
				t.Fatalf("MoveVertices() error = %v", err)
			}
			if diff := gocmp.Diff(tt.max, got.Bounds().Max, approx); diff != "" {
				t.Errorf("Bounds().Max mismatch (-want +got):\n%s", diff)
			}
			if pieces(got) != 2 {
				t.Errorf("pieces = %d, want 2", pieces(got))
			}
		})
	}
}

func TestHull(t *testing.T) {
	k := New()
	s := must(t)(k.Hull([]v3.Vec{{}, {X: 8}, {Y: 8}, {Z: 8}, {X: 1, Y: 1, Z: 1}}))
	if got := s.(*Solid).Brushes()[0].FaceCount(); got != 4 {
		t.Errorf("FaceCount() = %d, want 4", got)
	}
	if diff := gocmp.Diff(box(v3.Vec{}, v3.Vec{X: 8, Y: 8, Z: 8}), s.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}

	if _, err := k.Hull([]v3.Vec{{}, {X: 8}, {Y: 8}}); !errors.Is(err, brush.ErrBrushEmpty) {
		t.Errorf("Hull(flat) error = %v, want %v", err, brush.ErrBrushEmpty)
	}
}

func TestPaint(t *testing.T) {
	k := New()
	m := must(t)
	plain := m(k.Box(v3.Vec{X: 4, Y: 4, Z: 4}))
	painted := m(k.Paint(plain, "glass"))
	for _, f := range painted.(*Solid).Brushes()[0].Faces() {
		if f.Attributes().MaterialName != "glass" {
			t.Errorf("painted material = %q, want glass", f.Attributes().MaterialName)
		}
	}
	for _, f := range plain.(*Solid).Brushes()[0].Faces() {
		if f.Attributes().MaterialName != brush.NoMaterialName {
			t.Errorf("Paint() modified its operand: material = %q", f.Attributes().MaterialName)
		}
	}
}

func TestUVLock(t *testing.T) {
	sample := v3.Vec{X: 16, Y: 5, Z: 7}
	delta := v3.Vec{X: 4, Y: 3, Z: 2}

	tests := []struct {
		name string
		lock bool
		same bool
	}{
		{"locked", true, true},
		{"unlocked", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New(WithUVLock(tt.lock))
			cube := must(t)(k.Box(v3.Vec{X: 16, Y: 16, Z: 16}))
			before := cube.(*Solid).Brushes()[0]
			id, ok := before.FindFaceByNormal(geom.PosX)
			if !ok {
				t.Fatal("no +X face")
			}
			uv := before.Face(id).UV(sample)

			after := must(t)(k.Translate(cube, delta)).(*Solid).Brushes()[0]
			moved := after.Face(id).UV(sample.Add(delta))
			same := math.Abs(uv[0]-moved[0]) < 1e-6 && math.Abs(uv[1]-moved[1]) < 1e-6
			if same != tt.same {
				t.Errorf("UV before %v, after %v; equal = %v, want %v", uv, moved, same, tt.same)
			}
		})
	}
}
