// Package polyhedron implements a boundary-represented convex polyhedron.
//
// Faces are stored as vertex loops wound counter-clockwise around their
// outward normal; half-edges, twins and edges are derived from the loops
// after every mutation. Vertex and Face pointers stay valid across
// mutations as long as the element itself survives.
//
// A Polyhedron is in exactly one of five shapes: empty, point, edge,
// polygon or polyhedron. Only the polyhedron shape supports clipping.
package polyhedron

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
)

// Slot is an opaque payload handle carried by a Face. The polyhedron never
// interprets it.
type Slot int32

// NoSlot marks a face without payload.
const NoSlot Slot = -1

// Vertex is a corner of the polyhedron.
type Vertex struct {
	position v3.Vec
	leaving  *HalfEdge
}

// Position returns the vertex position.
func (v *Vertex) Position() v3.Vec { return v.position }

// Leaving returns one half-edge whose origin is v, or nil for the point and
// edge shapes.
func (v *Vertex) Leaving() *HalfEdge { return v.leaving }

// HalfEdge is a directed edge of one face boundary.
type HalfEdge struct {
	origin   *Vertex
	next     *HalfEdge
	previous *HalfEdge
	twin     *HalfEdge
	face     *Face
	edge     *Edge
}

func (h *HalfEdge) Origin() *Vertex      { return h.origin }
func (h *HalfEdge) Destination() *Vertex { return h.next.origin }
func (h *HalfEdge) Next() *HalfEdge      { return h.next }
func (h *HalfEdge) Previous() *HalfEdge  { return h.previous }
func (h *HalfEdge) Twin() *HalfEdge      { return h.twin }
func (h *HalfEdge) Face() *Face          { return h.face }
func (h *HalfEdge) Edge() *Edge          { return h.edge }

// Edge joins two vertices. For the polyhedron shape both half-edges are set;
// a polygon has only First, and the edge shape has none.
type Edge struct {
	v1, v2 *Vertex
	first  *HalfEdge
	second *HalfEdge
}

func (e *Edge) FirstVertex() *Vertex  { return e.v1 }
func (e *Edge) SecondVertex() *Vertex { return e.v2 }
func (e *Edge) First() *HalfEdge      { return e.first }
func (e *Edge) Second() *HalfEdge     { return e.second }

// Length returns the distance between the two vertices.
func (e *Edge) Length() float64 {
	return geom.Distance(e.v1.position, e.v2.position)
}

// Center returns the edge midpoint.
func (e *Edge) Center() v3.Vec {
	return geom.Lerp(e.v1.position, e.v2.position, 0.5)
}

// Polyhedron is a convex solid together with its degenerate lower-rank
// forms.
type Polyhedron struct {
	vertices []*Vertex
	edges    []*Edge
	faces    []*Face
	bounds   sdf.Box3
}

// NewFromBounds returns the cuboid spanning b.
func NewFromBounds(b sdf.Box3) *Polyhedron {
	c := geom.BoundsVertices(b)
	vs := make([]*Vertex, len(c))
	for i := range c {
		vs[i] = &Vertex{position: c[i]}
	}
	loops := [][4]int{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
	}
	p := &Polyhedron{vertices: vs}
	for _, l := range loops {
		p.faces = append(p.faces, &Face{
			loop:    []*Vertex{vs[l[0]], vs[l[1]], vs[l[2]], vs[l[3]]},
			payload: NoSlot,
		})
	}
	p.rebuild()
	return p
}

// Empty reports the empty shape.
func (p *Polyhedron) Empty() bool { return len(p.vertices) == 0 }

// Point reports the single-vertex shape.
func (p *Polyhedron) Point() bool { return len(p.vertices) == 1 }

// Edge reports the two-vertex shape.
func (p *Polyhedron) Edge() bool { return len(p.vertices) == 2 }

// Polygon reports the single-face shape.
func (p *Polyhedron) Polygon() bool { return len(p.faces) == 1 }

// IsPolyhedron reports the solid shape.
func (p *Polyhedron) IsPolyhedron() bool { return len(p.faces) > 3 }

// Closed reports whether Euler's formula holds.
func (p *Polyhedron) Closed() bool {
	return len(p.vertices)+len(p.faces) == len(p.edges)+2
}

// Shape returns the classification of p.
func (p *Polyhedron) Shape() Shape {
	switch {
	case p.Empty():
		return ShapeEmpty
	case p.Point():
		return ShapePoint
	case p.Edge():
		return ShapeEdge
	case p.Polygon():
		return ShapePolygon
	default:
		return ShapePolyhedron
	}
}

// Shape enumerates the five polyhedron ranks.
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapePoint
	ShapeEdge
	ShapePolygon
	ShapePolyhedron
)

func (s Shape) String() string {
	switch s {
	case ShapePoint:
		return "point"
	case ShapeEdge:
		return "edge"
	case ShapePolygon:
		return "polygon"
	case ShapePolyhedron:
		return "polyhedron"
	default:
		return "empty"
	}
}

func (p *Polyhedron) Vertices() []*Vertex { return append([]*Vertex(nil), p.vertices...) }
func (p *Polyhedron) Edges() []*Edge      { return append([]*Edge(nil), p.edges...) }
func (p *Polyhedron) Faces() []*Face      { return append([]*Face(nil), p.faces...) }
func (p *Polyhedron) VertexCount() int    { return len(p.vertices) }
func (p *Polyhedron) EdgeCount() int      { return len(p.edges) }
func (p *Polyhedron) FaceCount() int      { return len(p.faces) }

// Bounds returns the bounding box of the vertices.
func (p *Polyhedron) Bounds() sdf.Box3 { return p.bounds }

// VertexPositions returns the vertex positions in storage order.
func (p *Polyhedron) VertexPositions() []v3.Vec {
	return lo.Map(p.vertices, func(v *Vertex, _ int) v3.Vec { return v.position })
}

// Clone returns a deep copy that preserves face payload slots.
func (p *Polyhedron) Clone() *Polyhedron {
	vmap := make(map[*Vertex]*Vertex, len(p.vertices))
	c := &Polyhedron{vertices: make([]*Vertex, len(p.vertices))}
	for i, v := range p.vertices {
		nv := &Vertex{position: v.position}
		vmap[v] = nv
		c.vertices[i] = nv
	}
	for _, f := range p.faces {
		c.faces = append(c.faces, &Face{
			loop:    lo.Map(f.loop, func(v *Vertex, _ int) *Vertex { return vmap[v] }),
			payload: f.payload,
		})
	}
	c.rebuild()
	return c
}

type vertexPair struct{ a, b *Vertex }

// rebuild derives half-edges, twins, edges and bounds from the face loops
// and drops vertices no face refers to. It reports whether every half-edge
// found its twin.
func (p *Polyhedron) rebuild() bool {
	for _, v := range p.vertices {
		v.leaving = nil
	}
	p.edges = p.edges[:0]

	if len(p.faces) == 0 {
		if len(p.vertices) == 2 {
			p.edges = append(p.edges, &Edge{v1: p.vertices[0], v2: p.vertices[1]})
		}
		p.updateBounds()
		return true
	}

	used := make(map[*Vertex]bool, len(p.vertices))
	halfEdges := make(map[vertexPair]*HalfEdge)
	for _, f := range p.faces {
		f.boundary = make([]*HalfEdge, len(f.loop))
		for i, v := range f.loop {
			h := &HalfEdge{origin: v, face: f}
			f.boundary[i] = h
			used[v] = true
			if v.leaving == nil {
				v.leaving = h
			}
		}
		n := len(f.boundary)
		for i, h := range f.boundary {
			h.next = f.boundary[(i+1)%n]
			h.previous = f.boundary[(i+n-1)%n]
		}
		for _, h := range f.boundary {
			halfEdges[vertexPair{h.origin, h.Destination()}] = h
		}
	}

	consistent := true
	for _, f := range p.faces {
		for _, h := range f.boundary {
			if h.edge != nil {
				continue
			}
			e := &Edge{v1: h.origin, v2: h.Destination(), first: h}
			h.edge = e
			if twin, ok := halfEdges[vertexPair{h.Destination(), h.origin}]; ok {
				h.twin = twin
				twin.twin = h
				twin.edge = e
				e.second = twin
			} else if len(p.faces) > 1 {
				consistent = false
			}
			p.edges = append(p.edges, e)
		}
	}

	p.vertices = lo.Filter(p.vertices, func(v *Vertex, _ int) bool { return used[v] })
	p.updateBounds()
	return consistent
}

func (p *Polyhedron) updateBounds() {
	b, ok := geom.BoundsOf(p.VertexPositions())
	if !ok {
		b = sdf.Box3{}
	}
	p.bounds = b
}

// faceIndex returns the position of f in the face list, or -1.
func (p *Polyhedron) faceIndex(f *Face) int {
	return lo.IndexOf(p.faces, f)
}

func (p *Polyhedron) removeFaces(dead map[*Face]bool) {
	if len(dead) == 0 {
		return
	}
	p.faces = lo.Filter(p.faces, func(f *Face, _ int) bool { return !dead[f] })
}
