package brush

import (
	"errors"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// moveResult is the outcome of planning a vertex transformation.
type moveResult struct {
	ok     bool
	reason string
	result *polyhedron.Polyhedron
}

func accept(result *polyhedron.Polyhedron) moveResult {
	return moveResult{ok: true, result: result}
}

func reject(reason string) moveResult {
	return moveResult{reason: reason}
}

func (r moveResult) err(op string) error {
	if r.ok {
		return nil
	}
	return geometryError(op, ErrMoveRejected, errors.New(r.reason))
}

// planMove checks whether moving the vertices at positions by delta yields a
// valid brush.
func (b *Brush) planMove(worldBounds sdf.Box3, positions []v3.Vec, delta v3.Vec, allowVertexRemoval bool) moveResult {
	if geom.IsZero(delta, 0) {
		return reject("zero delta")
	}
	return b.planTransform(worldBounds, positions, geom.Translation(delta), allowVertexRemoval)
}

// planTransform decides whether applying m to the vertices at positions
// keeps the brush a valid convex solid. The remaining and moving vertex sets
// are classified by shape; the table below is indexed by moving (rows) and
// remaining (columns):
//
//	            empty   point   edge    polygon polyhedron
//	empty       -       -       -       -       reject
//	point       -       -       -       accept  check
//	edge        -       -       accept  check   check
//	polygon     -       invert  invert  check   check
//	polyhedron  accept  invert  invert  invert  check
//
// invert swaps the two sets and inverts m before checking. check rejects
// the move if a moving vertex would pass through a face of the remaining
// solid.
func (b *Brush) planTransform(worldBounds sdf.Box3, positions []v3.Vec, m mgl64.Mat4, allowVertexRemoval bool) moveResult {
	if len(positions) == 0 || geom.IsIdentity(m, geom.AlmostZero) {
		return reject("nothing to move")
	}

	selected := make(map[v3.Vec]bool, len(positions))
	for _, p := range positions {
		selected[p] = true
	}

	var remainingPts, movingPts, resultPts []v3.Vec
	for _, p := range b.geometry.VertexPositions() {
		if selected[p] {
			movingPts = append(movingPts, p)
			resultPts = append(resultPts, geom.TransformPoint(m, p))
		} else {
			remainingPts = append(remainingPts, p)
			resultPts = append(resultPts, p)
		}
	}

	remaining := polyhedron.New(remainingPts...)
	moving := polyhedron.New(movingPts...)
	result := polyhedron.New(resultPts...)

	if !geom.BoundsContains(worldBounds, result.Bounds(), 0) {
		return reject("result leaves the world bounds")
	}
	if moving.VertexCount() == b.geometry.VertexCount() {
		return accept(result)
	}
	if moving.Empty() {
		return reject("no vertex selected")
	}

	if !allowVertexRemoval {
		for _, p := range moving.VertexPositions() {
			if !result.HasVertex(geom.TransformPoint(m, p), geom.AlmostZero) {
				return reject("a moved vertex would be removed")
			}
		}
	}

	if !result.IsPolyhedron() {
		return reject("result is not a solid")
	}

	if (moving.Point() && remaining.Polygon()) || (moving.Edge() && remaining.Edge()) {
		return accept(result)
	}

	if remaining.Point() || remaining.Edge() || (remaining.Polygon() && moving.IsPolyhedron()) {
		if geom.HasNaN(m) || m.Det() == 0 {
			return reject("transform is not invertible")
		}
		remaining, moving = moving, remaining
		m = m.Inv()
	}

	// A flat remaining set has no inside, so its single face may point
	// either way. Crossing its plane in any direction turns the brush
	// inside out.
	if remaining.Polygon() {
		plane := remaining.Faces()[0].Plane()
		for _, v := range moving.Vertices() {
			from := plane.PointStatus(v.Position(), geom.PointStatusEpsilon)
			to := plane.PointStatus(geom.TransformPoint(m, v.Position()), geom.PointStatusEpsilon)
			if from != geom.Inside && to != geom.Inside && from != to {
				return reject("a vertex would pass through the remaining face")
			}
		}
		return accept(result)
	}

	for _, v := range moving.Vertices() {
		oldPos := v.Position()
		newPos := geom.TransformPoint(m, oldPos)
		for _, f := range remaining.Faces() {
			if f.PointStatus(oldPos, geom.PointStatusEpsilon) != geom.Below ||
				f.PointStatus(newPos, geom.PointStatusEpsilon) != geom.Above {
				continue
			}
			ray := geom.NewRay(oldPos, newPos.Sub(oldPos))
			if _, hit := f.IntersectWithRay(ray, geom.SideBack); hit {
				return reject("a vertex would pass through the brush")
			}
		}
	}
	return accept(result)
}

// CanMoveVertices reports whether the vertices at positions can be moved by
// delta. Vertices may be absorbed into the hull.
func (b *Brush) CanMoveVertices(worldBounds sdf.Box3, positions []v3.Vec, delta v3.Vec) bool {
	return b.CheckMoveVertices(worldBounds, positions, delta) == nil
}

// CheckMoveVertices is CanMoveVertices returning why a move is rejected.
// The error matches ErrMoveRejected.
func (b *Brush) CheckMoveVertices(worldBounds sdf.Box3, positions []v3.Vec, delta v3.Vec) error {
	return b.planMove(worldBounds, positions, delta, true).err("move vertices")
}

// MoveVertices moves the vertices at positions by delta and returns their
// new positions. Feasibility is not rechecked; call CanMoveVertices first.
func (b *Brush) MoveVertices(worldBounds sdf.Box3, positions []v3.Vec, delta v3.Vec, uvLock bool) ([]v3.Vec, error) {
	m := geom.Translation(delta)
	if err := b.doTransformVertices(worldBounds, positions, m, uvLock); err != nil {
		return nil, err
	}
	return b.FindClosestVertexPositions(transformAll(m, positions)), nil
}

// CanTransformVertices is the general form of CanMoveVertices.
func (b *Brush) CanTransformVertices(worldBounds sdf.Box3, positions []v3.Vec, m mgl64.Mat4) bool {
	return b.planTransform(worldBounds, positions, m, true).ok
}

// TransformVertices applies m to the vertices at positions.
func (b *Brush) TransformVertices(worldBounds sdf.Box3, positions []v3.Vec, m mgl64.Mat4, uvLock bool) ([]v3.Vec, error) {
	if err := b.doTransformVertices(worldBounds, positions, m, uvLock); err != nil {
		return nil, err
	}
	return b.FindClosestVertexPositions(transformAll(m, positions)), nil
}

// CanMoveEdges reports whether the edges can be moved by delta without
// losing any of their vertices.
func (b *Brush) CanMoveEdges(worldBounds sdf.Box3, edges []Segment, delta v3.Vec) bool {
	if geom.IsZero(delta, 0) {
		return false
	}
	m := geom.Translation(delta)
	res := b.planTransform(worldBounds, edgeVertices(edges), m, false)
	if !res.ok {
		return false
	}
	return lo.EveryBy(edges, func(e Segment) bool {
		return res.result.HasEdge(geom.TransformPoint(m, e[0]), geom.TransformPoint(m, e[1]), geom.AlmostZero)
	})
}

// MoveEdges moves the edges by delta and returns their new positions.
func (b *Brush) MoveEdges(worldBounds sdf.Box3, edges []Segment, delta v3.Vec, uvLock bool) ([]Segment, error) {
	m := geom.Translation(delta)
	if err := b.doTransformVertices(worldBounds, edgeVertices(edges), m, uvLock); err != nil {
		return nil, err
	}
	moved := lo.Map(edges, func(e Segment, _ int) Segment {
		return Segment{geom.TransformPoint(m, e[0]), geom.TransformPoint(m, e[1])}
	})
	return b.FindClosestEdgePositions(moved), nil
}

// CanMoveFaces reports whether the faces, given by their vertex loops, can
// be moved by delta and still exist afterwards.
func (b *Brush) CanMoveFaces(worldBounds sdf.Box3, faces [][]v3.Vec, delta v3.Vec) bool {
	if geom.IsZero(delta, 0) {
		return false
	}
	m := geom.Translation(delta)
	res := b.planTransform(worldBounds, lo.Flatten(faces), m, false)
	if !res.ok {
		return false
	}
	return lo.EveryBy(faces, func(f []v3.Vec) bool {
		return res.result.HasFace(transformAll(m, f), geom.AlmostZero)
	})
}

// MoveFaces moves the faces by delta and returns their new vertex loops.
func (b *Brush) MoveFaces(worldBounds sdf.Box3, faces [][]v3.Vec, delta v3.Vec, uvLock bool) ([][]v3.Vec, error) {
	m := geom.Translation(delta)
	if err := b.doTransformVertices(worldBounds, lo.Flatten(faces), m, uvLock); err != nil {
		return nil, err
	}
	moved := lo.Map(faces, func(f []v3.Vec, _ int) []v3.Vec { return transformAll(m, f) })
	return b.FindClosestFacePositions(moved), nil
}

// doTransformVertices rebuilds the brush from the hull of the transformed
// vertex set and carries the faces over through a Matcher.
func (b *Brush) doTransformVertices(worldBounds sdf.Box3, positions []v3.Vec, m mgl64.Mat4, uvLock bool) error {
	selected := make(map[v3.Vec]bool, len(positions))
	for _, p := range positions {
		selected[p] = true
	}
	target := func(p v3.Vec) v3.Vec {
		if selected[p] {
			return geom.TransformPoint(m, p)
		}
		return p
	}

	old := b.geometry.VertexPositions()
	next := polyhedron.New(lo.Map(old, func(p v3.Vec, _ int) v3.Vec { return target(p) })...)

	mapping := make(map[v3.Vec]v3.Vec, len(old))
	for _, p := range old {
		if v := next.FindClosestVertex(target(p), geom.CloseVertexEpsilon); v != nil {
			mapping[p] = v.Position()
		}
	}
	matcher := polyhedron.NewMatcherWithMap(b.geometry, next, mapping)
	return b.updateFacesFromGeometry(worldBounds, matcher, next, uvLock)
}

func edgeVertices(edges []Segment) []v3.Vec {
	return lo.FlatMap(edges, func(e Segment, _ int) []v3.Vec { return e[:] })
}

func transformAll(m mgl64.Mat4, points []v3.Vec) []v3.Vec {
	return lo.Map(points, func(p v3.Vec, _ int) v3.Vec { return geom.TransformPoint(m, p) })
}
