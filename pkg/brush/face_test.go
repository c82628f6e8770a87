package brush

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	gocmp "github.com/google/go-cmp/cmp"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

func TestNewFace(t *testing.T) {
	f, err := NewFace(v3.Vec{}, v3.Vec{Y: 1}, v3.Vec{X: 1}, NewAttributes(""))
	if err != nil {
		t.Fatalf("NewFace() error = %v", err)
	}
	if !geom.Equal(f.Normal(), geom.PosZ, 1e-12) || f.Boundary().Distance != 0 {
		t.Errorf("Boundary() = %+v, want z = 0 facing +Z", f.Boundary())
	}
	if f.Attributes().MaterialName != NoMaterialName {
		t.Errorf("MaterialName = %q, want %q", f.Attributes().MaterialName, NoMaterialName)
	}

	_, err = NewFace(v3.Vec{}, v3.Vec{X: 1}, v3.Vec{X: 2}, NewAttributes("x"))
	if !errors.Is(err, ErrInvalidFace) {
		t.Errorf("NewFace(colinear) error = %v, want %v", err, ErrInvalidFace)
	}
}

func TestFaceInvert(t *testing.T) {
	f, err := NewFace(v3.Vec{Z: 4}, v3.Vec{Y: 1, Z: 4}, v3.Vec{X: 1, Z: 4}, NewAttributes("x"))
	if err != nil {
		t.Fatalf("NewFace() error = %v", err)
	}
	pts := f.Points()
	f.Invert()
	if !geom.Equal(f.Normal(), geom.NegZ, 1e-12) || f.Boundary().Distance != -4 {
		t.Errorf("inverted Boundary() = %+v", f.Boundary())
	}
	if got := f.Points(); got[1] != pts[2] || got[2] != pts[1] {
		t.Errorf("inverted Points() = %v, want p1 and p2 of %v swapped", got, pts)
	}
}

func TestSortWeight(t *testing.T) {
	tests := []struct {
		normal v3.Vec
		want   int
	}{
		{geom.PosX, 22},
		{geom.NegX, 122},
		{geom.PosY, 202},
		{geom.NegY, 212},
		{geom.PosZ, 220},
		{geom.NegZ, 221},
		{geom.Normalize(v3.Vec{X: 1, Y: 1, Z: 1}), 0},
	}
	for _, tt := range tests {
		if got := sortWeight(tt.normal); got != tt.want {
			t.Errorf("sortWeight(%v) = %d, want %d", tt.normal, got, tt.want)
		}
	}
}

func TestFaceTransformUV(t *testing.T) {
	delta := v3.Vec{X: 3, Y: 5, Z: 0}
	p := v3.Vec{X: 2, Y: 7, Z: 4}

	tests := []struct {
		name string
		m    mgl64.Mat4
		lock bool
		same bool
	}{
		{"locked translation", geom.Translation(delta), true, true},
		{"unlocked translation", geom.Translation(delta), false, false},
		{"locked rotation", geom.RotationAbout(v3.Vec{X: 1, Y: 1}, geom.PosZ, 30), true, true},
		{"locked scale", geom.Scaling(v3.Vec{X: 2, Y: 0.5, Z: 1}), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := NewAttributes("x")
			attrs.Offset = mgl64.Vec2{5, -3}
			attrs.Scale = mgl64.Vec2{0.5, 2}
			f, err := NewFace(v3.Vec{Z: 4}, v3.Vec{Y: 1, Z: 4}, v3.Vec{X: 1, Z: 4}, attrs)
			if err != nil {
				t.Fatalf("NewFace() error = %v", err)
			}
			before := f.UV(p)
			if err := f.Transform(tt.m, tt.lock); err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			after := f.UV(geom.TransformPoint(tt.m, p))
			if got := vec2Equal(before, after, 1e-6); got != tt.same {
				t.Errorf("UV before %v, after %v; equal = %v, want %v", before, after, got, tt.same)
			}
			if n := geom.TransformNormal(tt.m, geom.PosZ); !geom.Equal(f.Normal(), geom.Normalize(n), 1e-9) {
				t.Errorf("Normal() = %v, want %v", f.Normal(), n)
			}
		})
	}
}

func TestFaceFindIntegerPlanePoints(t *testing.T) {
	f, err := NewFace(
		v3.Vec{X: 0.5, Y: 0.25, Z: 4},
		v3.Vec{X: 0.5, Y: 1.25, Z: 4},
		v3.Vec{X: 1.5, Y: 0.25, Z: 4},
		NewAttributes("x"))
	if err != nil {
		t.Fatalf("NewFace() error = %v", err)
	}
	if err := f.FindIntegerPlanePoints(); err != nil {
		t.Fatalf("FindIntegerPlanePoints() error = %v", err)
	}
	for _, p := range f.Points() {
		if p != geom.Round(p) {
			t.Errorf("point %v is not integral", p)
		}
	}
	want := geom.Plane{Normal: geom.PosZ, Distance: 4}
	if !f.Boundary().Equal(want, 1e-9) {
		t.Errorf("Boundary() = %+v, want %+v", f.Boundary(), want)
	}
}

func TestVertexUVs(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	id, _ := b.FindFaceByNormal(geom.PosZ)
	f := b.Face(id)

	uvs := f.VertexUVs()
	verts := f.Vertices()
	if len(uvs) != len(verts) {
		t.Fatalf("len(VertexUVs()) = %d, want %d", len(uvs), len(verts))
	}
	for i, p := range verts {
		// +Z faces project onto X and -Y.
		want := mgl64.Vec2{p.X, -p.Y}
		if !vec2Equal(uvs[i], want, 1e-9) {
			t.Errorf("VertexUVs()[%d] = %v, want %v", i, uvs[i], want)
		}
	}
}

func TestCopyUVCoordSystemFromFace(t *testing.T) {
	src, err := NewFace(v3.Vec{}, v3.Vec{Y: 1}, v3.Vec{X: 1}, NewAttributes("src"))
	if err != nil {
		t.Fatalf("NewFace() error = %v", err)
	}
	attrs := src.Attributes()
	attrs.Offset = mgl64.Vec2{3, 4}
	attrs.Rotation = 15
	src.SetAttributes(attrs)

	dst, err := NewFace(v3.Vec{Z: 8}, v3.Vec{Y: 1, Z: 8}, v3.Vec{X: 1, Z: 8}, NewAttributes("dst"))
	if err != nil {
		t.Fatalf("NewFace() error = %v", err)
	}
	dst.CopyUVCoordSystemFromFace(src.TakeUVCoordSystemSnapshot(), src.Attributes(), src.Boundary())

	if diff := gocmp.Diff(src.UVCoordSystem(), dst.UVCoordSystem(), approx); diff != "" {
		t.Errorf("UVCoordSystem() mismatch (-want +got):\n%s", diff)
	}
	if got := dst.Attributes(); got.MaterialName != "dst" || got.Offset != attrs.Offset || got.Rotation != 15 {
		t.Errorf("Attributes() = %+v", got)
	}
}

func TestFaceBinder(t *testing.T) {
	geo := polyhedron.NewFromBounds(box(0, 0, 0, 1, 1, 1))
	g := geo.Faces()
	a := newArena()
	f := planeFace(t, geom.PosZ, 1)
	id := a.insert(f)
	g[0].SetPayload(id.slot())
	binder := &faceBinder{faces: a, pending: noFace}

	t.Run("split", func(t *testing.T) {
		binder.FaceWasSplit(g[0], g[1])
		cid, ok := a.slotOf(g[1])
		if !ok || cid == id || a.len() != 2 {
			t.Fatalf("FaceWasSplit() left %d faces, clone slot %d", a.len(), cid)
		}
	})

	t.Run("flip", func(t *testing.T) {
		binder.FaceWasFlipped(g[0])
		if !geom.Equal(f.Normal(), geom.NegZ, 1e-12) {
			t.Errorf("Normal() = %v after flip, want -Z", f.Normal())
		}
	})

	t.Run("delete", func(t *testing.T) {
		binder.FaceWillBeDeleted(g[1])
		if a.len() != 1 || g[1].Payload() != polyhedron.NoSlot {
			t.Errorf("FaceWillBeDeleted() left %d faces", a.len())
		}
	})

	t.Run("delete selected", func(t *testing.T) {
		f.SetSelected(true)
		defer func() {
			if recover() == nil {
				t.Error("deleting a selected face did not panic")
			}
		}()
		binder.FaceWillBeDeleted(g[0])
	})
}

func TestSelectedFaceAcrossRebuild(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	top, _ := b.FindFaceByNormal(geom.PosZ)
	b.Face(top).SetSelected(true)

	if err := b.Clip(world, planeFace(t, geom.PosX, 8)); err != nil {
		t.Fatalf("Clip(x <= 8) error = %v", err)
	}
	if !b.Face(top).Selected() {
		t.Error("selection lost across rebuild")
	}

	defer func() {
		if recover() == nil {
			t.Error("clipping away a selected face did not panic")
		}
	}()
	_ = b.Clip(world, planeFace(t, geom.PosZ, 8))
}

func TestGeometryErrorIs(t *testing.T) {
	cause := errors.New("boom")
	err := geometryError("op", ErrBrushInvalid, cause)
	if !errors.Is(err, ErrBrushInvalid) || !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v) failed for kind or cause", err)
	}
	if errors.Is(err, ErrBrushEmpty) {
		t.Errorf("errors.Is(%v, ErrBrushEmpty) = true", err)
	}
	if got := err.Error(); got != "op: Brush is invalid: boom" {
		t.Errorf("Error() = %q", got)
	}
}
