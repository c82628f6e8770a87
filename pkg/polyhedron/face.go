package polyhedron

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
)

// Face is a planar convex polygon on the boundary of the polyhedron.
type Face struct {
	loop     []*Vertex
	boundary []*HalfEdge
	payload  Slot
}

// Payload returns the slot attached to f.
func (f *Face) Payload() Slot { return f.payload }

// SetPayload attaches s to f.
func (f *Face) SetPayload(s Slot) { f.payload = s }

// Vertices returns the boundary vertices in counter-clockwise order.
func (f *Face) Vertices() []*Vertex { return append([]*Vertex(nil), f.loop...) }

// Boundary returns the boundary half-edges, each starting at the vertex with
// the same index.
func (f *Face) Boundary() []*HalfEdge { return append([]*HalfEdge(nil), f.boundary...) }

func (f *Face) VertexCount() int { return len(f.loop) }

// VertexPositions returns the boundary positions in counter-clockwise order.
func (f *Face) VertexPositions() []v3.Vec {
	return lo.Map(f.loop, func(v *Vertex, _ int) v3.Vec { return v.position })
}

// Normal returns the outward unit normal.
func (f *Face) Normal() v3.Vec {
	return geom.NewellNormal(f.VertexPositions())
}

// Center returns the vertex centroid.
func (f *Face) Center() v3.Vec {
	return geom.Centroid(f.VertexPositions())
}

// Plane returns the supporting plane with the outward normal.
func (f *Face) Plane() geom.Plane {
	return geom.NewPlane(f.Normal(), f.Center())
}

// Area returns the polygon area.
func (f *Face) Area() float64 {
	return geom.PolygonArea(f.VertexPositions())
}

// PointStatus classifies point against the face plane.
func (f *Face) PointStatus(point v3.Vec, eps float64) geom.PointStatus {
	return f.Plane().PointStatus(point, eps)
}

// HasVertex reports whether v is on the boundary of f.
func (f *Face) HasVertex(v *Vertex) bool {
	return lo.Contains(f.loop, v)
}

// HasVertexPositions reports whether the boundary matches positions up to a
// cyclic shift, comparing each pair within eps.
func (f *Face) HasVertexPositions(positions []v3.Vec, eps float64) bool {
	return f.vertexPositionsDistance(positions) <= eps
}

// vertexPositionsDistance returns the smallest, over all cyclic shifts, of
// the largest distance between corresponding positions. It is +Inf when the
// counts differ.
func (f *Face) vertexPositionsDistance(positions []v3.Vec) float64 {
	n := len(f.loop)
	if n != len(positions) || n == 0 {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for shift := 0; shift < n; shift++ {
		worst := 0.0
		for i := 0; i < n && worst < best; i++ {
			worst = math.Max(worst, geom.Distance(f.loop[(i+shift)%n].position, positions[i]))
		}
		best = math.Min(best, worst)
	}
	return best
}

// IntersectWithRay returns the distance at which r hits the face, restricted
// to the given side. The front side is hit by rays travelling against the
// normal.
func (f *Face) IntersectWithRay(r geom.Ray, side geom.Side) (float64, bool) {
	return intersectPolygonWithRay(f.VertexPositions(), f.Plane(), r, side)
}

func intersectPolygonWithRay(loop []v3.Vec, plane geom.Plane, r geom.Ray, side geom.Side) (float64, bool) {
	cos := plane.Normal.Dot(r.Direction)
	switch {
	case cos < 0 && side&geom.SideFront == 0:
		return 0, false
	case cos > 0 && side&geom.SideBack == 0:
		return 0, false
	case cos == 0:
		return 0, false
	}
	d := plane.IntersectWithRay(r)
	if math.IsNaN(d) || d < 0 {
		return 0, false
	}
	if !geom.PointInPolygon(r.PointAtDistance(d), loop, plane.Normal) {
		return 0, false
	}
	return d, true
}
