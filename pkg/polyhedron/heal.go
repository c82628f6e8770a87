package polyhedron

import (
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
)

// CorrectVertexPositions rounds vertex coordinates that lie within eps of a
// value with the given number of decimals.
func (p *Polyhedron) CorrectVertexPositions(decimals int, eps float64) {
	for _, v := range p.vertices {
		v.position = geom.Correct(v.position, decimals, eps)
	}
	p.updateBounds()
}

// HealEdges collapses edges shorter than minLength, merges faces that became
// coplanar and drops vertices left in the interior of an edge. It reports
// whether the result is still a closed polyhedron.
func (p *Polyhedron) HealEdges(cb Callback, minLength float64) bool {
	cb = orNop(cb)
	for p.IsPolyhedron() {
		e := p.shortestEdge()
		if e == nil || e.Length() >= minLength {
			break
		}
		p.collapseEdge(e, cb)
	}
	if !p.IsPolyhedron() {
		return false
	}
	p.mergeCoplanarFaces(cb)
	p.removeDegenerateVertices(cb)
	return p.IsPolyhedron() && p.Closed() && p.rebuild() && p.wellFormed()
}

func (p *Polyhedron) shortestEdge() *Edge {
	if len(p.edges) == 0 {
		return nil
	}
	return lo.MinBy(p.edges, func(a, b *Edge) bool { return a.Length() < b.Length() })
}

// collapseEdge merges the second vertex of e into the first.
func (p *Polyhedron) collapseEdge(e *Edge, cb Callback) {
	keep, gone := e.v1, e.v2
	cb.VertexWillBeRemoved(gone)

	dead := make(map[*Face]bool)
	for _, f := range p.faces {
		loop := make([]*Vertex, 0, len(f.loop))
		for _, v := range f.loop {
			if v == gone {
				v = keep
			}
			if len(loop) > 0 && loop[len(loop)-1] == v {
				continue
			}
			loop = append(loop, v)
		}
		if len(loop) > 1 && loop[0] == loop[len(loop)-1] {
			loop = loop[:len(loop)-1]
		}
		f.loop = loop
		if len(loop) < 3 {
			cb.FaceWillBeDeleted(f)
			dead[f] = true
		}
	}
	p.removeFaces(dead)
	p.vertices = lo.Filter(p.vertices, func(v *Vertex, _ int) bool { return v != gone })
	p.rebuild()
}

// wellFormed checks that every face is a loop of distinct vertices with a
// usable plane.
func (p *Polyhedron) wellFormed() bool {
	for _, f := range p.faces {
		if len(lo.Uniq(f.loop)) != len(f.loop) || !f.Plane().Valid() {
			return false
		}
	}
	return true
}
