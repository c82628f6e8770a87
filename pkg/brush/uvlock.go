package brush

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// updateFacesFromGeometry carries the faces over to next, which replaces the
// current geometry. Every face of next receives a copy of its matching old
// face with the plane recomputed from the new vertices. The first copy of an
// old face keeps its id; further copies get fresh ids.
func (b *Brush) updateFacesFromGeometry(worldBounds sdf.Box3, matcher *polyhedron.Matcher, next *polyhedron.Polyhedron, uvLock bool) error {
	a := newArena()
	a.next = b.faces.next
	used := make(map[FaceID]bool)

	var firstErr error
	matcher.ProcessRightFaces(func(left, right *polyhedron.Face) {
		id, ok := b.faces.slotOf(left)
		if !ok || firstErr != nil {
			return
		}
		leftFace, _ := b.faces.get(id)

		face := leftFace.Clone()
		face.setGeometry(right)
		if err := face.UpdatePointsFromVertices(); err != nil {
			firstErr = err
			return
		}
		if uvLock {
			if m, ok := findTransformForUVLock(matcher, left, right); ok {
				applyUVLock(m, leftFace, face)
			}
		}
		face.setGeometry(nil)

		if used[id] {
			a.insert(face)
			return
		}
		used[id] = true
		a.insertAt(id, face)
	})
	if firstErr != nil {
		return firstErr
	}

	geo, err := buildGeometry(worldBounds, a)
	if err != nil {
		return err
	}
	b.commit(a, geo)
	return nil
}

// findTransformForUVLock solves the affine map taking the old face onto the
// new one from three matching vertex pairs, unmoved pairs first. It fails
// when the face did not move or too few pairs exist.
func findTransformForUVLock(matcher *polyhedron.Matcher, left, right *polyhedron.Face) (mgl64.Mat4, bool) {
	var unmoved, moved [][2]v3.Vec
	matcher.VisitMatchingVertexPairs(left, right, func(l, r *polyhedron.Vertex) {
		pair := [2]v3.Vec{l.Position(), r.Position()}
		if geom.Equal(pair[0], pair[1], geom.AlmostZero) {
			unmoved = append(unmoved, pair)
		} else {
			moved = append(moved, pair)
		}
	})
	if len(unmoved) >= 3 {
		return mgl64.Mat4{}, false
	}

	refs := append(unmoved, moved...)
	if len(refs) < 3 {
		return mgl64.Mat4{}, false
	}
	from := [3]v3.Vec{refs[0][0], refs[1][0], refs[2][0]}
	to := [3]v3.Vec{refs[0][1], refs[1][1], refs[2][1]}
	return geom.PointsTransformation(from, to)
}

// applyUVLock gives right the texture that left would have after being
// transformed by m with texture lock on. right's plane is not touched.
func applyUVLock(m mgl64.Mat4, left, right *Face) {
	moved := left.Clone()
	if err := moved.Transform(m, true); err != nil {
		return
	}
	right.SetAttributes(moved.Attributes())
	right.CopyUVCoordSystemFromFace(moved.TakeUVCoordSystemSnapshot(), moved.Attributes(), moved.Boundary())
	right.ResetUVCoordSystemCache()
}
