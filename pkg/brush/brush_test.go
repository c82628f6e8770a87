package brush

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

var world = geom.WorldBounds(geom.DefaultWorldSize)

var approx = cmpopts.EquateApprox(0, 1e-6)

func box(x0, y0, z0, x1, y1, z1 float64) sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{X: x0, Y: y0, Z: z0}, Max: v3.Vec{X: x1, Y: y1, Z: z1}}
}

func cuboid(t *testing.T, b sdf.Box3) *Brush {
	t.Helper()
	br, err := NewBuilder(world).WithMaterial("stone").CuboidFromBounds(b)
	if err != nil {
		t.Fatalf("CuboidFromBounds(%v) error = %v", b, err)
	}
	return br
}

// planeFace returns a face on the plane n·p = d.
func planeFace(t *testing.T, n v3.Vec, d float64) *Face {
	t.Helper()
	pl := geom.Plane{Normal: geom.Normalize(n), Distance: d}
	u, v := pl.Basis()
	a := pl.Anchor()
	f, err := NewFace(a, a.Add(v), a.Add(u), NewAttributes("test"))
	if err != nil {
		t.Fatalf("NewFace(%v, %v) error = %v", n, d, err)
	}
	return f
}

func sortedPositions(ps []v3.Vec) []v3.Vec {
	out := slices.Clone(ps)
	slices.SortFunc(out, func(a, b v3.Vec) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Z, b.Z)
	})
	return out
}

func assertFullRoundTrip(t *testing.T, b *Brush) {
	t.Helper()
	if got, want := b.FaceCount(), b.Geometry().FaceCount(); got != want {
		t.Errorf("FaceCount() = %d, want geometry face count %d", got, want)
	}
	if !b.FullySpecified() {
		t.Error("FullySpecified() = false, want true")
	}
	seen := make(map[*polyhedron.Face]bool)
	for _, id := range b.FaceIDs() {
		g := b.Face(id).Geometry()
		if g == nil {
			t.Errorf("face %d has no geometry", id)
			continue
		}
		if seen[g] {
			t.Errorf("face %d shares geometry with another face", id)
		}
		seen[g] = true
		if FaceID(g.Payload()) != id {
			t.Errorf("face %d geometry payload = %d", id, g.Payload())
		}
	}
}

func TestNewCuboid(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))

	if b.VertexCount() != 8 || b.EdgeCount() != 12 || b.FaceCount() != 6 {
		t.Errorf("counts = (%d, %d, %d), want (8, 12, 6)", b.VertexCount(), b.EdgeCount(), b.FaceCount())
	}
	if !b.Closed() {
		t.Error("Closed() = false, want true")
	}
	assertFullRoundTrip(t, b)
	if diff := gocmp.Diff(box(0, 0, 0, 16, 16, 16), b.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
	for _, f := range b.Faces() {
		if f.Attributes().MaterialName != "stone" {
			t.Errorf("material = %q, want stone", f.Attributes().MaterialName)
		}
		for _, p := range f.Vertices() {
			if s := f.PointStatus(p); s != geom.Inside {
				t.Errorf("vertex %v of face %v is %v", p, f.Normal(), s)
			}
		}
	}
}

func TestNewFailures(t *testing.T) {
	tests := []struct {
		name  string
		faces func(t *testing.T) []*Face
		want  error
	}{
		{
			name: "disjoint half-spaces",
			faces: func(t *testing.T) []*Face {
				return []*Face{planeFace(t, geom.PosZ, 0), planeFace(t, geom.NegZ, -1)}
			},
			want: ErrBrushEmpty,
		},
		{
			name: "open solid",
			faces: func(t *testing.T) []*Face {
				return []*Face{planeFace(t, geom.PosX, 1), planeFace(t, geom.PosY, 1), planeFace(t, geom.PosZ, 1)}
			},
			want: ErrBrushIncomplete,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(world, tt.faces(t))
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
			var ge *GeometryError
			if !errors.As(err, &ge) {
				t.Errorf("New() error %T is not a *GeometryError", err)
			}
		})
	}
}

func TestNewDropsRedundantFaces(t *testing.T) {
	faces := []*Face{
		planeFace(t, geom.PosX, 1), planeFace(t, geom.NegX, 0),
		planeFace(t, geom.PosY, 1), planeFace(t, geom.NegY, 0),
		planeFace(t, geom.PosZ, 1), planeFace(t, geom.NegZ, 0),
		planeFace(t, geom.PosX, 5),
	}
	b, err := New(world, faces)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.FaceCount() != 6 {
		t.Errorf("FaceCount() = %d, want 6", b.FaceCount())
	}
	assertFullRoundTrip(t, b)
}

func TestClip(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 2, 2, 2))
	v := b.Version()

	if err := b.Clip(world, planeFace(t, v3.Vec{X: 1, Y: 1}, 3/math.Sqrt2)); err != nil {
		t.Fatalf("Clip() error = %v", err)
	}
	if b.VertexCount() != 10 || b.FaceCount() != 7 {
		t.Errorf("counts = (%d vertices, %d faces), want (10, 7)", b.VertexCount(), b.FaceCount())
	}
	if b.Version() != v+1 {
		t.Errorf("Version() = %d, want %d", b.Version(), v+1)
	}
	assertFullRoundTrip(t, b)
}

func TestClipFailureLeavesBrush(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	before := sortedPositions(b.VertexPositions())
	v := b.Version()

	err := b.Clip(world, planeFace(t, geom.NegZ, -32))
	if !errors.Is(err, ErrBrushEmpty) {
		t.Fatalf("Clip() error = %v, want %v", err, ErrBrushEmpty)
	}
	if b.Version() != v || b.FaceCount() != 6 {
		t.Errorf("brush changed: version %d -> %d, %d faces", v, b.Version(), b.FaceCount())
	}
	if diff := gocmp.Diff(before, sortedPositions(b.VertexPositions()), approx); diff != "" {
		t.Errorf("VertexPositions() changed (-want +got):\n%s", diff)
	}
	assertFullRoundTrip(t, b)
}

func TestExpand(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	if err := b.Expand(world, 2, false); err != nil {
		t.Fatalf("Expand(2) error = %v", err)
	}
	if diff := gocmp.Diff(box(-2, -2, -2, 18, 18, 18), b.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}

	v := b.Version()
	if err := b.Expand(world, -10, false); !errors.Is(err, ErrBrushEmpty) {
		t.Errorf("Expand(-10) error = %v, want %v", err, ErrBrushEmpty)
	}
	if b.Version() != v {
		t.Errorf("failed Expand changed the version")
	}
	if diff := gocmp.Diff(box(-2, -2, -2, 18, 18, 18), b.Bounds(), approx); diff != "" {
		t.Errorf("failed Expand changed Bounds() (-want +got):\n%s", diff)
	}
}

func TestMoveBoundary(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	top, ok := b.FindFaceByNormal(geom.PosZ)
	if !ok {
		t.Fatal("FindFaceByNormal(+Z) found nothing")
	}

	tests := []struct {
		name  string
		delta v3.Vec
		want  bool
	}{
		{"raise", v3.Vec{Z: 8}, true},
		{"lower", v3.Vec{Z: -8}, true},
		{"through the bottom", v3.Vec{Z: -24}, false},
		{"out of the world", v3.Vec{Z: geom.DefaultWorldSize}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.CanMoveBoundary(world, top, tt.delta); got != tt.want {
				t.Errorf("CanMoveBoundary(%v) = %v, want %v", tt.delta, got, tt.want)
			}
		})
	}

	if err := b.MoveBoundary(world, top, v3.Vec{Z: 8}, true); err != nil {
		t.Fatalf("MoveBoundary() error = %v", err)
	}
	if diff := gocmp.Diff(box(0, 0, 0, 16, 16, 24), b.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
	if b.Face(top) == nil {
		t.Error("moved face lost its id")
	}
}

func TestTransformIdentity(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	before := sortedPositions(b.VertexPositions())
	if err := b.Transform(geom.Translation(v3.Vec{}), false, world); err != nil {
		t.Fatalf("Transform(identity) error = %v", err)
	}
	if diff := gocmp.Diff(before, sortedPositions(b.VertexPositions()), approx); diff != "" {
		t.Errorf("VertexPositions() mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformRotation(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 8, 4))
	if err := b.Transform(geom.RotationDegrees(v3.Vec{Z: 90}), false, world); err != nil {
		t.Fatalf("Transform(rotate) error = %v", err)
	}
	if diff := gocmp.Diff(box(-8, 0, 0, 0, 16, 4), b.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
	assertFullRoundTrip(t, b)
}

func TestQueries(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))

	t.Run("contains point", func(t *testing.T) {
		for _, tt := range []struct {
			p    v3.Vec
			want bool
		}{
			{v3.Vec{X: 8, Y: 8, Z: 8}, true},
			{v3.Vec{X: 16, Y: 16, Z: 16}, true},
			{v3.Vec{X: 17, Y: 8, Z: 8}, false},
		} {
			if got := b.ContainsPoint(tt.p); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.p, got, tt.want)
			}
		}
	})

	t.Run("contains bounds", func(t *testing.T) {
		if !b.ContainsBounds(box(2, 2, 2, 4, 4, 4)) {
			t.Error("ContainsBounds(inner) = false, want true")
		}
		if b.ContainsBounds(box(2, 2, 2, 20, 4, 4)) {
			t.Error("ContainsBounds(overlapping) = true, want false")
		}
	})

	t.Run("brush relations", func(t *testing.T) {
		inner := cuboid(t, box(4, 4, 4, 8, 8, 8))
		overlapping := cuboid(t, box(8, 8, 8, 24, 24, 24))
		touching := cuboid(t, box(16, 0, 0, 32, 16, 16))
		if !b.ContainsBrush(inner) || b.ContainsBrush(overlapping) {
			t.Error("ContainsBrush() gave the wrong answer")
		}
		if !b.IntersectsBrush(overlapping) {
			t.Error("IntersectsBrush(overlapping) = false, want true")
		}
		if b.IntersectsBrush(touching) {
			t.Error("IntersectsBrush(touching) = true, want false")
		}
		if !b.IntersectsBounds(touching.Bounds()) {
			t.Error("IntersectsBounds(touching) = false, want true")
		}
	})

	t.Run("face lookup", func(t *testing.T) {
		id, ok := b.FindFaceByPlane(geom.Plane{Normal: geom.PosX, Distance: 16})
		if !ok {
			t.Fatal("FindFaceByPlane(x=16) found nothing")
		}
		poly := b.Face(id).Vertices()
		if got, ok := b.FindFaceByPolygon(poly, geom.AlmostZero); !ok || got != id {
			t.Errorf("FindFaceByPolygon() = %d, %v, want %d", got, ok, id)
		}
		if got, ok := b.FindFaceByCandidates([][]v3.Vec{{{X: 99}}, poly}, geom.AlmostZero); !ok || got != id {
			t.Errorf("FindFaceByCandidates() = %d, %v, want %d", got, ok, id)
		}
		if _, ok := b.FindFaceByMaterial("stone"); !ok {
			t.Error("FindFaceByMaterial(stone) found nothing")
		}
		if !b.HasFace(poly, geom.AlmostZero) || !b.HasEdge(poly[0], poly[1], geom.AlmostZero) || !b.HasVertex(poly[0], 0) {
			t.Error("HasFace/HasEdge/HasVertex missed an element of the brush")
		}
	})

	t.Run("incident faces", func(t *testing.T) {
		v := b.Geometry().FindVertexByPosition(v3.Vec{}, 0)
		if got := len(b.IncidentFaces(v)); got != 3 {
			t.Errorf("len(IncidentFaces(origin)) = %d, want 3", got)
		}
	})

	t.Run("face hit", func(t *testing.T) {
		id, d, ok := b.FindFaceHit(geom.NewRay(v3.Vec{X: 8, Y: 8, Z: 100}, geom.NegZ))
		if !ok {
			t.Fatal("FindFaceHit() missed")
		}
		if n := b.Face(id).Normal(); !geom.Equal(n, geom.PosZ, 1e-9) || math.Abs(d-84) > 1e-9 {
			t.Errorf("FindFaceHit() = face %v at %v, want +Z at 84", n, d)
		}
		if _, _, ok := b.FindFaceHit(geom.NewRay(v3.Vec{X: 100, Y: 8, Z: 100}, geom.NegZ)); ok {
			t.Error("FindFaceHit() hit with a ray passing the brush")
		}
	})
}

func TestArenaOwnership(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	top, _ := b.FindFaceByNormal(geom.PosZ)

	f := b.DetachFace(top)
	if f == nil || f.Geometry() != nil {
		t.Fatal("DetachFace() did not hand back a detached face")
	}
	if b.FullySpecified() {
		t.Error("FullySpecified() = true after detaching a face")
	}
	if err := b.Rebuild(world); !errors.Is(err, ErrBrushIncomplete) {
		t.Errorf("Rebuild() error = %v, want %v", err, ErrBrushIncomplete)
	}

	id := b.AddFace(planeFace(t, geom.PosZ, 8))
	if err := b.Rebuild(world); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if b.Face(id) == nil || b.Bounds().Max.Z != 8 {
		t.Errorf("rebuilt brush has bounds %v", b.Bounds())
	}
	if !b.RemoveFace(id) || b.RemoveFace(id) {
		t.Error("RemoveFace() should succeed once")
	}
}

func TestVersionAndDirty(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	if !b.Dirty() {
		t.Error("new brush is not dirty")
	}
	b.ClearDirty()
	v := b.Version()
	if err := b.Transform(geom.Translation(v3.Vec{X: 1}), false, world); err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !b.Dirty() || b.Version() <= v {
		t.Errorf("after edit: Dirty() = %v, Version() = %d (was %d)", b.Dirty(), b.Version(), v)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	c := b.Clone()
	assertFullRoundTrip(t, c)
	if err := c.Transform(geom.Translation(v3.Vec{X: 100}), false, world); err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if b.Bounds().Min.X != 0 {
		t.Errorf("original moved with its clone: %v", b.Bounds())
	}
}

func TestFindIntegerPlanePoints(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	if err := b.FindIntegerPlanePoints(world); err != nil {
		t.Fatalf("FindIntegerPlanePoints() error = %v", err)
	}
	for _, f := range b.Faces() {
		for _, p := range f.Points() {
			if !geom.Equal(p, geom.Round(p), 0) {
				t.Errorf("point %v is not integral", p)
			}
		}
	}
	if diff := gocmp.Diff(box(0, 0, 0, 16, 16, 16), b.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
}

func TestMesh(t *testing.T) {
	b := cuboid(t, box(0, 0, 0, 16, 16, 16))
	m := b.Mesh()
	if m.VertexCount() != 24 || m.TriangleCount() != 12 {
		t.Errorf("mesh = %d vertices, %d triangles, want 24, 12", m.VertexCount(), m.TriangleCount())
	}
	if len(m.UVs) != 2*m.VertexCount() || len(m.Normals) != len(m.Vertices) {
		t.Errorf("attribute lengths: %d uvs, %d normals for %d vertices", len(m.UVs), len(m.Normals), m.VertexCount())
	}
}

func TestBuilderFromFaces(t *testing.T) {
	v := func(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }
	cube := [][3]v3.Vec{
		{v(8, 0, 0), v(8, 0, 1), v(8, 1, 0)},
		{v(0, 0, 0), v(0, 1, 0), v(0, 0, 1)},
		{v(0, 8, 0), v(1, 8, 0), v(0, 8, 1)},
		{v(0, 0, 0), v(0, 0, 1), v(1, 0, 0)},
		{v(0, 0, 8), v(0, 1, 8), v(1, 0, 8)},
		{v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)},
	}

	b, err := NewBuilder(world).WithMaterial("slate").FromFaces(cube)
	if err != nil {
		t.Fatalf("FromFaces() error = %v", err)
	}
	if b.FaceCount() != 6 {
		t.Errorf("FaceCount() = %d, want 6", b.FaceCount())
	}
	if diff := gocmp.Diff(box(0, 0, 0, 8, 8, 8), b.Bounds(), approx); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
	if got := b.Faces()[0].Attributes().MaterialName; got != "slate" {
		t.Errorf("material = %q, want slate", got)
	}

	if _, err := NewBuilder(world).FromFaces(cube[:3]); !errors.Is(err, ErrBrushIncomplete) {
		t.Errorf("FromFaces(3 faces) error = %v, want %v", err, ErrBrushIncomplete)
	}
	colinear := [][3]v3.Vec{{v(0, 0, 0), v(1, 0, 0), v(2, 0, 0)}}
	if _, err := NewBuilder(world).FromFaces(colinear); !errors.Is(err, ErrInvalidFace) {
		t.Errorf("FromFaces(colinear) error = %v, want %v", err, ErrInvalidFace)
	}
}
