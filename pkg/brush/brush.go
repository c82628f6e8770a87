// Package brush binds textured planar faces to a convex polyhedron. A Brush
// is the intersection of the half-spaces below its faces; its geometry is
// rebuilt from the faces after every structural edit, and every edit either
// succeeds completely or leaves the brush as it was.
package brush

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// Brush is a convex solid bounded by faces. It is not safe for concurrent
// use. Face pointers obtained from a brush stay valid until its next
// successful edit; FaceIDs stay valid for as long as the face exists.
type Brush struct {
	faces    *arena
	geometry *polyhedron.Polyhedron
	version  uint64
	dirty    bool
}

// New builds a brush from faces, taking ownership of them. Faces that do
// not contribute to the solid are dropped.
func New(worldBounds sdf.Box3, faces []*Face) (*Brush, error) {
	a := newArena()
	for _, f := range faces {
		f.setGeometry(nil)
		a.insert(f)
	}
	geo, err := buildGeometry(worldBounds, a)
	if err != nil {
		return nil, err
	}
	b := &Brush{}
	b.commit(a, geo)
	return b, nil
}

func (b *Brush) commit(a *arena, geo *polyhedron.Polyhedron) {
	b.faces = a
	b.geometry = geo
	b.version++
	b.dirty = true
}

// rebuildWith applies edit to a copy of the faces and commits the copy if
// the geometry builds.
func (b *Brush) rebuildWith(worldBounds sdf.Box3, edit func(a *arena) error) error {
	a := b.faces.clone()
	if edit != nil {
		if err := edit(a); err != nil {
			return err
		}
	}
	geo, err := buildGeometry(worldBounds, a)
	if err != nil {
		return err
	}
	b.commit(a, geo)
	return nil
}

// Clone returns a deep copy.
func (b *Brush) Clone() *Brush {
	c := &Brush{faces: b.faces.clone(), version: b.version, dirty: b.dirty}
	if b.geometry != nil {
		c.geometry = b.geometry.Clone()
		for _, g := range c.geometry.Faces() {
			if id, ok := c.faces.slotOf(g); ok {
				f, _ := c.faces.get(id)
				f.setGeometry(g)
			}
		}
	}
	return c
}

// Version increases with every successful structural edit.
func (b *Brush) Version() uint64 { return b.version }

// Dirty reports whether the geometry changed since ClearDirty.
func (b *Brush) Dirty() bool { return b.dirty }

func (b *Brush) ClearDirty() { b.dirty = false }

// Geometry returns the underlying polyhedron. Callers must not modify it.
func (b *Brush) Geometry() *polyhedron.Polyhedron { return b.geometry }

// Faces returns the faces in clipping order.
func (b *Brush) Faces() []*Face { return b.faces.list() }

// FaceIDs returns the face ids in clipping order.
func (b *Brush) FaceIDs() []FaceID { return append([]FaceID(nil), b.faces.order...) }

func (b *Brush) FaceCount() int { return b.faces.len() }

// Face returns the face with the given id, or nil.
func (b *Brush) Face(id FaceID) *Face {
	f, _ := b.faces.get(id)
	return f
}

// AddFace hands f to the brush. The geometry is not updated until Rebuild.
func (b *Brush) AddFace(f *Face) FaceID {
	f.setGeometry(nil)
	return b.faces.insert(f)
}

// RemoveFace deletes a face. The geometry is not updated until Rebuild.
func (b *Brush) RemoveFace(id FaceID) bool {
	return b.DetachFace(id) != nil
}

// DetachFace removes a face and returns it to the caller. The geometry is
// not updated until Rebuild.
func (b *Brush) DetachFace(id FaceID) *Face {
	f := b.faces.remove(id)
	if f == nil {
		return nil
	}
	if g := f.Geometry(); g != nil {
		g.SetPayload(polyhedron.NoSlot)
	}
	f.setGeometry(nil)
	return f
}

// Rebuild recomputes the geometry from the current faces.
func (b *Brush) Rebuild(worldBounds sdf.Box3) error {
	return b.rebuildWith(worldBounds, nil)
}

// SetFaces replaces all faces and rebuilds.
func (b *Brush) SetFaces(worldBounds sdf.Box3, faces []*Face) error {
	a := newArena()
	for _, f := range faces {
		a.insert(f.Clone())
	}
	geo, err := buildGeometry(worldBounds, a)
	if err != nil {
		return err
	}
	b.commit(a, geo)
	return nil
}

// Clip adds face as another bounding half-space.
func (b *Brush) Clip(worldBounds sdf.Box3, face *Face) error {
	return b.rebuildWith(worldBounds, func(a *arena) error {
		a.insert(face.Clone())
		return nil
	})
}

// Expand pushes every face delta units outward along its normal. A
// negative delta shrinks the brush.
func (b *Brush) Expand(worldBounds sdf.Box3, delta float64, lockTexture bool) error {
	return b.rebuildWith(worldBounds, func(a *arena) error {
		for _, f := range a.list() {
			m := geom.Translation(f.Normal().MulScalar(delta))
			if err := f.Transform(m, lockTexture); err != nil {
				return err
			}
		}
		return nil
	})
}

// CanMoveBoundary reports whether translating face id by delta keeps the
// brush inside worldBounds, closed and with all of its faces.
func (b *Brush) CanMoveBoundary(worldBounds sdf.Box3, id FaceID, delta v3.Vec) bool {
	if _, ok := b.faces.get(id); !ok {
		return false
	}
	test := b.Clone()
	if err := test.MoveBoundary(worldBounds, id, delta, false); err != nil {
		return false
	}
	return geom.BoundsContains(worldBounds, test.Bounds(), 0) &&
		test.Closed() &&
		test.FaceCount() == b.FaceCount()
}

// MoveBoundary translates the plane of face id by delta.
func (b *Brush) MoveBoundary(worldBounds sdf.Box3, id FaceID, delta v3.Vec, lockTexture bool) error {
	return b.rebuildWith(worldBounds, func(a *arena) error {
		f, ok := a.get(id)
		if !ok {
			return geometryError("move boundary", ErrInvalidFace, nil)
		}
		return f.Transform(geom.Translation(delta), lockTexture)
	})
}

// Transform applies m to every face and rebuilds.
func (b *Brush) Transform(m mgl64.Mat4, lockTextures bool, worldBounds sdf.Box3) error {
	return b.rebuildWith(worldBounds, func(a *arena) error {
		for _, f := range a.list() {
			if err := f.Transform(m, lockTextures); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindIntegerPlanePoints moves the defining points of every face onto the
// integer lattice where that preserves the plane, then rebuilds.
func (b *Brush) FindIntegerPlanePoints(worldBounds sdf.Box3) error {
	return b.rebuildWith(worldBounds, func(a *arena) error {
		for id, f := range a.faces {
			if orig, ok := b.faces.get(id); ok {
				f.setGeometry(orig.Geometry())
			}
			err := f.FindIntegerPlanePoints()
			f.setGeometry(nil)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Bounds returns the bounding box of the solid.
func (b *Brush) Bounds() sdf.Box3 { return b.geometry.Bounds() }

func (b *Brush) Closed() bool { return b.geometry.Closed() }

// FullySpecified reports whether every face of the geometry is attached to
// a face of the brush.
func (b *Brush) FullySpecified() bool {
	return lo.EveryBy(b.geometry.Faces(), func(g *polyhedron.Face) bool {
		_, ok := b.faces.slotOf(g)
		return ok
	})
}

func (b *Brush) Vertices() []*polyhedron.Vertex { return b.geometry.Vertices() }

func (b *Brush) Edges() []*polyhedron.Edge { return b.geometry.Edges() }

func (b *Brush) VertexPositions() []v3.Vec { return b.geometry.VertexPositions() }

func (b *Brush) VertexCount() int { return b.geometry.VertexCount() }

func (b *Brush) EdgeCount() int { return b.geometry.EdgeCount() }

func (b *Brush) HasVertex(position v3.Vec, eps float64) bool {
	return b.geometry.HasVertex(position, eps)
}

func (b *Brush) HasEdge(start, end v3.Vec, eps float64) bool {
	return b.geometry.HasEdge(start, end, eps)
}

func (b *Brush) HasFace(positions []v3.Vec, eps float64) bool {
	return b.geometry.HasFace(positions, eps)
}

// FindClosestVertexPosition returns the position of the vertex nearest to
// position.
func (b *Brush) FindClosestVertexPosition(position v3.Vec) v3.Vec {
	v := b.geometry.FindClosestVertex(position, geom.DefaultWorldSize*4)
	if v == nil {
		return position
	}
	return v.Position()
}

// FindClosestVertexPositions maps each position to a vertex within
// CloseVertexEpsilon. Positions without such a vertex are skipped.
func (b *Brush) FindClosestVertexPositions(positions []v3.Vec) []v3.Vec {
	var out []v3.Vec
	for _, p := range positions {
		if v := b.geometry.FindClosestVertex(p, geom.CloseVertexEpsilon); v != nil {
			out = append(out, v.Position())
		}
	}
	return out
}

// FindClosestEdgePositions maps each segment to an edge within
// CloseVertexEpsilon.
func (b *Brush) FindClosestEdgePositions(edges []Segment) []Segment {
	var out []Segment
	for _, s := range edges {
		if e := b.geometry.FindClosestEdge(s[0], s[1], geom.CloseVertexEpsilon); e != nil {
			out = append(out, Segment{e.FirstVertex().Position(), e.SecondVertex().Position()})
		}
	}
	return out
}

// FindClosestFacePositions maps each polygon to a face within
// CloseVertexEpsilon.
func (b *Brush) FindClosestFacePositions(polygons [][]v3.Vec) [][]v3.Vec {
	var out [][]v3.Vec
	for _, p := range polygons {
		if f := b.geometry.FindClosestFace(p, geom.CloseVertexEpsilon); f != nil {
			out = append(out, f.VertexPositions())
		}
	}
	return out
}

// Segment is an edge given by its end points.
type Segment [2]v3.Vec

func (b *Brush) findFace(pred func(f *Face) bool) (FaceID, bool) {
	for _, id := range b.faces.order {
		if pred(b.faces.faces[id]) {
			return id, true
		}
	}
	return noFace, false
}

// FindFaceByMaterial returns the first face using material.
func (b *Brush) FindFaceByMaterial(material string) (FaceID, bool) {
	return b.findFace(func(f *Face) bool { return f.Attributes().MaterialName == material })
}

// FindFaceByNormal returns the first face whose normal equals normal.
func (b *Brush) FindFaceByNormal(normal v3.Vec) (FaceID, bool) {
	return b.findFace(func(f *Face) bool { return geom.Equal(f.Normal(), normal, geom.AlmostZero) })
}

// FindFaceByPlane returns the first face whose boundary equals plane.
func (b *Brush) FindFaceByPlane(plane geom.Plane) (FaceID, bool) {
	return b.findFace(func(f *Face) bool { return f.CoplanarWith(plane) })
}

// FindFaceByPolygon returns the face whose vertices match polygon.
func (b *Brush) FindFaceByPolygon(polygon []v3.Vec, eps float64) (FaceID, bool) {
	return b.findFace(func(f *Face) bool { return f.HasVertices(polygon, eps) })
}

// FindFaceByCandidates returns the face matching the first candidate
// polygon that matches any face.
func (b *Brush) FindFaceByCandidates(candidates [][]v3.Vec, eps float64) (FaceID, bool) {
	for _, c := range candidates {
		if id, ok := b.FindFaceByPolygon(c, eps); ok {
			return id, true
		}
	}
	return noFace, false
}

// IncidentFaces returns the faces around v.
func (b *Brush) IncidentFaces(v *polyhedron.Vertex) []*Face {
	var out []*Face
	for _, g := range b.geometry.IncidentFaces(v) {
		if id, ok := b.faces.slotOf(g); ok {
			out = append(out, b.faces.faces[id])
		}
	}
	return out
}

// FindFaceHit returns the face first hit by r from outside and the
// distance along r.
func (b *Brush) FindFaceHit(r geom.Ray) (FaceID, float64, bool) {
	g, d := b.geometry.FindFaceHit(r)
	if g == nil {
		return noFace, 0, false
	}
	id, ok := b.faces.slotOf(g)
	return id, d, ok
}

// ContainsPoint reports whether point is inside or on the brush.
func (b *Brush) ContainsPoint(point v3.Vec) bool {
	if !geom.BoundsContainsPoint(b.Bounds(), point, geom.PointStatusEpsilon) {
		return false
	}
	return lo.NoneBy(b.faces.list(), func(f *Face) bool {
		return f.PointStatus(point) == geom.Above
	})
}

// ContainsBounds reports whether the whole box is inside the brush.
func (b *Brush) ContainsBounds(box sdf.Box3) bool {
	if !geom.BoundsContains(b.Bounds(), box, geom.PointStatusEpsilon) {
		return false
	}
	corners := geom.BoundsVertices(box)
	return lo.EveryBy(corners[:], b.ContainsPoint)
}

// ContainsBrush reports whether other lies entirely inside b.
func (b *Brush) ContainsBrush(other *Brush) bool {
	return b.geometry.ContainsPolyhedron(other.geometry)
}

// IntersectsBounds reports whether the bounding boxes overlap.
func (b *Brush) IntersectsBounds(box sdf.Box3) bool {
	return geom.BoundsIntersect(b.Bounds(), box, 0)
}

// IntersectsBrush reports whether the solids share interior points.
func (b *Brush) IntersectsBrush(other *Brush) bool {
	return b.geometry.Intersects(other.geometry)
}
