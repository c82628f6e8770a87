package brush

import (
	"fmt"
	"slices"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// faceBinder keeps the face arena in step with the polyhedron while it is
// being clipped and healed.
type faceBinder struct {
	polyhedron.NopCallback
	faces   *arena
	pending FaceID
}

func (b *faceBinder) FaceWasCreated(f *polyhedron.Face) {
	if b.pending != noFace {
		f.SetPayload(b.pending.slot())
	}
}

func (b *faceBinder) FaceWillBeDeleted(f *polyhedron.Face) {
	b.free(f)
}

func (b *faceBinder) FacesWillBeMerged(remaining, toDelete *polyhedron.Face) {
	if id, ok := b.faces.slotOf(remaining); ok {
		face, _ := b.faces.get(id)
		face.ResetUVCoordSystemCache()
	}
	b.free(toDelete)
}

func (b *faceBinder) FaceWasSplit(original, clone *polyhedron.Face) {
	id, ok := b.faces.slotOf(original)
	if !ok {
		return
	}
	face, _ := b.faces.get(id)
	clone.SetPayload(b.faces.insert(face.Clone()).slot())
}

func (b *faceBinder) FaceWasFlipped(f *polyhedron.Face) {
	if id, ok := b.faces.slotOf(f); ok {
		face, _ := b.faces.get(id)
		face.Invert()
	}
}

func (b *faceBinder) free(f *polyhedron.Face) {
	id, ok := b.faces.slotOf(f)
	if !ok {
		return
	}
	face, _ := b.faces.get(id)
	if face.Selected() {
		panic(fmt.Sprintf("brush: selected face %d deleted by geometry update", id))
	}
	b.faces.remove(id)
	f.SetPayload(polyhedron.NoSlot)
}

// sortFaces orders the arena by normal weight, keeping insertion order
// among equal weights.
func sortFaces(a *arena) {
	slices.SortStableFunc(a.order, func(x, y FaceID) int {
		return sortWeight(a.faces[x].Normal()) - sortWeight(a.faces[y].Normal())
	})
}

// buildGeometry clips a box slightly larger than worldBounds by every face
// of a, attaches each surviving polyhedron face to the face that created it
// and drops the faces that did not contribute.
func buildGeometry(worldBounds sdf.Box3, a *arena) (*polyhedron.Polyhedron, error) {
	sortFaces(a)

	geo := polyhedron.NewFromBounds(geom.ExpandBounds(worldBounds, 1))
	binder := &faceBinder{faces: a, pending: noFace}
	for _, id := range slices.Clone(a.order) {
		face, ok := a.get(id)
		if !ok {
			continue
		}
		face.setGeometry(nil)
		binder.pending = id
		res := geo.Clip(face.Boundary(), binder)
		binder.pending = noFace
		if res.Empty() {
			return nil, geometryError("build brush", ErrBrushEmpty, nil)
		}
	}

	geo.CorrectVertexPositions(0, geom.CorrectEpsilon)
	if !geo.HealEdges(binder, geom.MinEdgeLength) {
		return nil, geometryError("build brush", ErrBrushInvalid, nil)
	}

	attached := make(map[FaceID]bool, a.len())
	for _, g := range geo.Faces() {
		id, ok := a.slotOf(g)
		if !ok || attached[id] {
			return nil, geometryError("build brush", ErrBrushIncomplete, nil)
		}
		attached[id] = true
		face, _ := a.get(id)
		face.setGeometry(g)
	}
	for _, id := range slices.Clone(a.order) {
		if !attached[id] {
			a.remove(id)
		}
	}
	return geo, nil
}
