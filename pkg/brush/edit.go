package brush

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// CanAddVertex reports whether position lies inside worldBounds and would
// become a vertex of the enlarged hull.
func (b *Brush) CanAddVertex(worldBounds sdf.Box3, position v3.Vec) bool {
	if !geom.BoundsContainsPoint(worldBounds, position, 0) {
		return false
	}
	next := polyhedron.New(append(b.VertexPositions(), position)...)
	return next.HasVertex(position, 0)
}

// AddVertex grows the brush to the hull of its vertices and position.
func (b *Brush) AddVertex(worldBounds sdf.Box3, position v3.Vec) error {
	next := polyhedron.New(append(b.VertexPositions(), position)...)
	return b.updateFacesFromGeometry(worldBounds, polyhedron.NewMatcher(b.geometry, next), next, false)
}

func (b *Brush) withoutVertices(positions []v3.Vec) *polyhedron.Polyhedron {
	remove := lo.SliceToMap(positions, func(p v3.Vec) (v3.Vec, bool) { return p, true })
	return polyhedron.New(lo.Reject(b.VertexPositions(), func(p v3.Vec, _ int) bool { return remove[p] })...)
}

// CanRemoveVertices reports whether the remaining vertices still span a
// solid.
func (b *Brush) CanRemoveVertices(worldBounds sdf.Box3, positions []v3.Vec) bool {
	if len(positions) == 0 {
		return false
	}
	next := b.withoutVertices(positions)
	return next.IsPolyhedron() && geom.BoundsContains(worldBounds, next.Bounds(), 0)
}

// RemoveVertices shrinks the brush to the hull of the remaining vertices.
func (b *Brush) RemoveVertices(worldBounds sdf.Box3, positions []v3.Vec) error {
	next := b.withoutVertices(positions)
	return b.updateFacesFromGeometry(worldBounds, polyhedron.NewMatcher(b.geometry, next), next, false)
}

func (b *Brush) snapped(snapTo float64) []v3.Vec {
	return lo.Map(b.VertexPositions(), func(p v3.Vec, _ int) v3.Vec { return geom.Snap(p, snapTo) })
}

// CanSnapVertices reports whether rounding every vertex to a multiple of
// snapTo leaves a solid.
func (b *Brush) CanSnapVertices(worldBounds sdf.Box3, snapTo float64) bool {
	if snapTo <= 0 {
		return false
	}
	next := polyhedron.New(b.snapped(snapTo)...)
	return next.IsPolyhedron() && geom.BoundsContains(worldBounds, next.Bounds(), 0)
}

// SnapVertices rounds every vertex to a multiple of snapTo.
func (b *Brush) SnapVertices(worldBounds sdf.Box3, snapTo float64, uvLock bool) error {
	next := polyhedron.New(b.snapped(snapTo)...)
	mapping := make(map[v3.Vec]v3.Vec)
	for _, p := range b.VertexPositions() {
		if dest := geom.Snap(p, snapTo); next.HasVertex(dest, 0) {
			mapping[p] = dest
		}
	}
	matcher := polyhedron.NewMatcherWithMap(b.geometry, next, mapping)
	return b.updateFacesFromGeometry(worldBounds, matcher, next, uvLock)
}
