package polyhedron

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Matcher pairs the faces of an old (left) polyhedron with the faces of a
// new (right) one that represent the same logical face, based on a relation
// between their vertices.
type Matcher struct {
	left, right *Polyhedron
	relation    vertexRelation
}

type vertexRelation struct {
	byLeft  map[*Vertex]map[*Vertex]bool
	byRight map[*Vertex]map[*Vertex]bool
	size    int
}

func newVertexRelation() vertexRelation {
	return vertexRelation{
		byLeft:  make(map[*Vertex]map[*Vertex]bool),
		byRight: make(map[*Vertex]map[*Vertex]bool),
	}
}

func (r *vertexRelation) insert(l, rv *Vertex) {
	if r.byLeft[l][rv] {
		return
	}
	if r.byLeft[l] == nil {
		r.byLeft[l] = make(map[*Vertex]bool)
	}
	if r.byRight[rv] == nil {
		r.byRight[rv] = make(map[*Vertex]bool)
	}
	r.byLeft[l][rv] = true
	r.byRight[rv][l] = true
	r.size++
}

func (r *vertexRelation) contains(l, rv *Vertex) bool {
	return r.byLeft[l][rv]
}

// NewMatcher relates vertices with identical positions.
func NewMatcher(left, right *Polyhedron) *Matcher {
	rel := newVertexRelation()
	byPos := make(map[v3.Vec]*Vertex, len(right.vertices))
	for _, v := range right.vertices {
		byPos[v.position] = v
	}
	for _, l := range left.vertices {
		if r, ok := byPos[l.position]; ok {
			rel.insert(l, r)
		}
	}
	return newMatcher(left, right, rel)
}

// NewMatcherWithMap relates vertices through an old-to-new position map.
// Left vertices missing from the map are related by identical position.
func NewMatcherWithMap(left, right *Polyhedron, vertexMap map[v3.Vec]v3.Vec) *Matcher {
	rel := newVertexRelation()
	for _, l := range left.vertices {
		pos, ok := vertexMap[l.position]
		if !ok {
			pos = l.position
		}
		if r := right.FindVertexByPosition(pos, 0); r != nil {
			rel.insert(l, r)
		}
	}
	return newMatcher(left, right, rel)
}

func newMatcher(left, right *Polyhedron, rel vertexRelation) *Matcher {
	m := &Matcher{left: left, right: right, relation: rel}
	m.addAddedVertices()
	m.addRemovedVertices()
	return m
}

func neighbours(v *Vertex) []*Vertex {
	var out []*Vertex
	seen := make(map[*HalfEdge]bool)
	for h := v.leaving; h != nil && !seen[h]; {
		seen[h] = true
		out = append(out, h.Destination())
		if h.twin == nil {
			break
		}
		h = h.twin.next
	}
	return out
}

// addAddedVertices relates every right vertex without a partner to the left
// partners of its right neighbours, repeating until nothing changes.
func (m *Matcher) addAddedVertices() {
	var added []*Vertex
	for _, v := range m.right.vertices {
		if len(m.relation.byRight[v]) == 0 {
			added = append(added, v)
		}
	}
	for {
		before := m.relation.size
		for _, v := range added {
			for _, n := range neighbours(v) {
				for l := range m.relation.byRight[n] {
					m.relation.insert(l, v)
				}
			}
		}
		if m.relation.size == before {
			return
		}
	}
}

// addRemovedVertices is the mirror image of addAddedVertices for left
// vertices that vanished.
func (m *Matcher) addRemovedVertices() {
	var removed []*Vertex
	for _, v := range m.left.vertices {
		if len(m.relation.byLeft[v]) == 0 {
			removed = append(removed, v)
		}
	}
	for {
		before := m.relation.size
		for _, v := range removed {
			for _, n := range neighbours(v) {
				for r := range m.relation.byLeft[n] {
					m.relation.insert(v, r)
				}
			}
		}
		if m.relation.size == before {
			return
		}
	}
}

const maxMatchScore = math.MaxInt32

func (m *Matcher) score(left, right *Face) int {
	if left.VertexCount() == right.VertexCount() && left.HasVertexPositions(right.VertexPositions(), 0) {
		return maxMatchScore
	}
	s := 0
	for _, l := range left.loop {
		for _, r := range right.loop {
			if m.relation.contains(l, r) {
				s++
			}
		}
	}
	return s
}

// MatchingLeftFace returns the left face that best matches right. Ties go
// to the face whose normal is closest to right's. It returns nil if the
// left polyhedron has no faces.
func (m *Matcher) MatchingLeftFace(right *Face) *Face {
	var best []*Face
	bestScore := 0
	for _, l := range m.left.faces {
		s := m.score(l, right)
		switch {
		case s > bestScore:
			best, bestScore = []*Face{l}, s
		case s == bestScore && s > 0:
			best = append(best, l)
		}
	}
	if len(best) == 0 {
		best = m.left.faces
	}
	if len(best) == 0 {
		return nil
	}
	n := right.Normal()
	pick := best[0]
	bestDot := math.Inf(-1)
	for _, l := range best {
		if d := l.Normal().Dot(n); d > bestDot {
			pick, bestDot = l, d
		}
	}
	return pick
}

// ProcessRightFaces calls fn for every right face with its best matching
// left face (nil if the left polyhedron has no faces).
func (m *Matcher) ProcessRightFaces(fn func(left, right *Face)) {
	for _, r := range m.right.faces {
		fn(m.MatchingLeftFace(r), r)
	}
}

// VisitMatchingVertexPairs calls fn for every related pair of boundary
// vertices of left and right.
func (m *Matcher) VisitMatchingVertexPairs(left, right *Face, fn func(l, r *Vertex)) {
	if left == nil || right == nil {
		return
	}
	for _, l := range left.loop {
		for _, r := range right.loop {
			if m.relation.contains(l, r) {
				fn(l, r)
			}
		}
	}
}
