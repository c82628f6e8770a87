package brush

import (
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// FaceID identifies a face within one brush. IDs survive rebuilds for faces
// that are kept; a face that is split gets a fresh ID for the new part.
type FaceID int32

const noFace FaceID = -1

func (id FaceID) slot() polyhedron.Slot { return polyhedron.Slot(id) }

// arena owns the faces of a brush in clipping order.
type arena struct {
	faces map[FaceID]*Face
	order []FaceID
	next  FaceID
}

func newArena() *arena {
	return &arena{faces: make(map[FaceID]*Face)}
}

func (a *arena) insert(f *Face) FaceID {
	id := a.next
	a.next++
	a.faces[id] = f
	a.order = append(a.order, id)
	return id
}

// insertAt stores f under an existing id, used when a rebuild keeps ids.
func (a *arena) insertAt(id FaceID, f *Face) {
	if _, ok := a.faces[id]; !ok {
		a.order = append(a.order, id)
	}
	a.faces[id] = f
	if id >= a.next {
		a.next = id + 1
	}
}

func (a *arena) remove(id FaceID) *Face {
	f, ok := a.faces[id]
	if !ok {
		return nil
	}
	delete(a.faces, id)
	for i, o := range a.order {
		if o == id {
			a.order = append(a.order[:i:i], a.order[i+1:]...)
			break
		}
	}
	return f
}

func (a *arena) get(id FaceID) (*Face, bool) {
	f, ok := a.faces[id]
	return f, ok
}

func (a *arena) len() int { return len(a.order) }

func (a *arena) list() []*Face {
	out := make([]*Face, len(a.order))
	for i, id := range a.order {
		out[i] = a.faces[id]
	}
	return out
}

// clone deep-copies every face. The copies are detached.
func (a *arena) clone() *arena {
	c := &arena{
		faces: make(map[FaceID]*Face, len(a.faces)),
		order: append([]FaceID(nil), a.order...),
		next:  a.next,
	}
	for id, f := range a.faces {
		c.faces[id] = f.Clone()
	}
	return c
}

func (a *arena) slotOf(f *polyhedron.Face) (FaceID, bool) {
	if f == nil || f.Payload() == polyhedron.NoSlot {
		return noFace, false
	}
	id := FaceID(f.Payload())
	_, ok := a.faces[id]
	return id, ok
}
