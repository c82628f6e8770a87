package polyhedron

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
)

// FindVertexByPosition returns the first vertex within eps of position.
func (p *Polyhedron) FindVertexByPosition(position v3.Vec, eps float64) *Vertex {
	v, _ := lo.Find(p.vertices, func(v *Vertex) bool {
		return geom.Distance(v.position, position) <= eps
	})
	return v
}

// FindClosestVertex returns the vertex nearest to position if it is within
// maxDistance.
func (p *Polyhedron) FindClosestVertex(position v3.Vec, maxDistance float64) *Vertex {
	var best *Vertex
	bestDist := maxDistance
	for _, v := range p.vertices {
		if d := geom.Distance(v.position, position); d <= bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

func (p *Polyhedron) HasVertex(position v3.Vec, eps float64) bool {
	return p.FindVertexByPosition(position, eps) != nil
}

// HasVertices reports whether every position is a vertex.
func (p *Polyhedron) HasVertices(positions []v3.Vec, eps float64) bool {
	return lo.EveryBy(positions, func(pos v3.Vec) bool { return p.HasVertex(pos, eps) })
}

// edgeDistance is the larger endpoint distance for the better of the two
// orientations of e.
func edgeDistance(e *Edge, a, b v3.Vec) float64 {
	forward := math.Max(geom.Distance(e.v1.position, a), geom.Distance(e.v2.position, b))
	backward := math.Max(geom.Distance(e.v1.position, b), geom.Distance(e.v2.position, a))
	return math.Min(forward, backward)
}

// FindEdgeByPositions returns the edge joining a and b in either direction.
func (p *Polyhedron) FindEdgeByPositions(a, b v3.Vec, eps float64) *Edge {
	e, _ := lo.Find(p.edges, func(e *Edge) bool { return edgeDistance(e, a, b) <= eps })
	return e
}

// FindClosestEdge returns the edge nearest to the segment a-b if both
// endpoints are within maxDistance.
func (p *Polyhedron) FindClosestEdge(a, b v3.Vec, maxDistance float64) *Edge {
	var best *Edge
	bestDist := maxDistance
	for _, e := range p.edges {
		if d := edgeDistance(e, a, b); d <= bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

func (p *Polyhedron) HasEdge(a, b v3.Vec, eps float64) bool {
	return p.FindEdgeByPositions(a, b, eps) != nil
}

// FindFaceByPositions returns the face whose boundary matches positions up
// to a cyclic shift.
func (p *Polyhedron) FindFaceByPositions(positions []v3.Vec, eps float64) *Face {
	f, _ := lo.Find(p.faces, func(f *Face) bool { return f.HasVertexPositions(positions, eps) })
	return f
}

// FindClosestFace returns the face whose boundary is nearest to positions.
func (p *Polyhedron) FindClosestFace(positions []v3.Vec, maxDistance float64) *Face {
	var best *Face
	bestDist := maxDistance
	for _, f := range p.faces {
		if d := f.vertexPositionsDistance(positions); d <= bestDist {
			best, bestDist = f, d
		}
	}
	return best
}

func (p *Polyhedron) HasFace(positions []v3.Vec, eps float64) bool {
	return p.FindFaceByPositions(positions, eps) != nil
}

// IncidentFaces returns the faces around v. For closed solids they are in
// counter-clockwise order seen from outside.
func (p *Polyhedron) IncidentFaces(v *Vertex) []*Face {
	if v == nil || v.leaving == nil {
		return nil
	}
	if p.IsPolyhedron() {
		var faces []*Face
		h := v.leaving
		for i := 0; i <= len(p.faces); i++ {
			faces = append(faces, h.face)
			if h.twin == nil {
				break
			}
			h = h.twin.next
			if h == v.leaving {
				return faces
			}
		}
	}
	return lo.Filter(p.faces, func(f *Face, _ int) bool { return f.HasVertex(v) })
}

// Contains reports whether point is inside or on the boundary of the solid.
func (p *Polyhedron) Contains(point v3.Vec) bool {
	if !p.IsPolyhedron() || !geom.BoundsContainsPoint(p.bounds, point, geom.PointStatusEpsilon) {
		return false
	}
	return lo.NoneBy(p.faces, func(f *Face) bool {
		return f.PointStatus(point, geom.PointStatusEpsilon) == geom.Above
	})
}

// ContainsPolyhedron reports whether every vertex of other is contained.
func (p *Polyhedron) ContainsPolyhedron(other *Polyhedron) bool {
	if !p.IsPolyhedron() || !geom.BoundsContains(p.bounds, other.bounds, geom.PointStatusEpsilon) {
		return false
	}
	return lo.EveryBy(other.vertices, func(v *Vertex) bool { return p.Contains(v.position) })
}

// Intersects reports whether the two shapes share interior points. Solids
// that only touch do not intersect.
func (p *Polyhedron) Intersects(other *Polyhedron) bool {
	if p.Empty() || other.Empty() {
		return false
	}
	if !geom.BoundsIntersect(p.bounds, other.bounds, geom.PointStatusEpsilon) {
		return false
	}
	hi, lower := p, other
	if other.Shape() > p.Shape() {
		hi, lower = other, p
	}

	switch hi.Shape() {
	case ShapePolyhedron:
		if lower.IsPolyhedron() {
			c := lower.Clone()
			for _, f := range hi.faces {
				if c.Clip(f.Plane(), nil).Empty() {
					return false
				}
			}
			return true
		}
		return len(clipConvex(lower.subject(), hi.constraintPlanes())) > 0
	case ShapePolygon:
		return len(clipConvex(lower.subject(), hi.constraintPlanes())) > 0
	case ShapeEdge:
		a, b := hi.vertices[0].position, hi.vertices[1].position
		if lower.Edge() {
			return geom.SegmentDistance(a, b, lower.vertices[0].position, lower.vertices[1].position) <= geom.AlmostZero
		}
		return geom.SegmentPointDistance(a, b, lower.vertices[0].position) <= geom.AlmostZero
	default:
		return geom.Distance(hi.vertices[0].position, lower.vertices[0].position) <= geom.AlmostZero
	}
}

// subject returns the boundary of a non-solid shape as a convex point loop.
func (p *Polyhedron) subject() []v3.Vec {
	if p.Polygon() {
		return p.faces[0].VertexPositions()
	}
	return p.VertexPositions()
}

// constraintPlanes returns half-spaces whose intersection is the shape. For a
// polygon the slab has zero thickness and is bounded by its edge planes.
func (p *Polyhedron) constraintPlanes() []geom.Plane {
	planes := lo.Map(p.faces, func(f *Face, _ int) geom.Plane { return f.Plane() })
	if !p.Polygon() {
		return planes
	}
	f := p.faces[0]
	n := f.Normal()
	planes = append(planes, planes[0].Flip())
	for _, h := range f.boundary {
		a, b := h.origin.position, h.Destination().position
		out := geom.Normalize(b.Sub(a).Cross(n))
		planes = append(planes, geom.NewPlane(out, a))
	}
	return planes
}

// clipConvex clips a convex point loop, segment or point against every
// plane and returns what is left below all of them.
func clipConvex(subject []v3.Vec, planes []geom.Plane) []v3.Vec {
	out := subject
	for _, pl := range planes {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = nil
		if len(in) == 1 {
			if pl.PointStatus(in[0], geom.PointStatusEpsilon) != geom.Above {
				out = in
			}
			continue
		}
		n := len(in)
		for i, cur := range in {
			nxt := in[(i+1)%n]
			if n == 2 && i == 1 {
				// A segment has one edge only.
				if pl.PointStatus(cur, geom.PointStatusEpsilon) != geom.Above {
					out = append(out, cur)
				}
				break
			}
			cs := pl.PointStatus(cur, geom.PointStatusEpsilon)
			ns := pl.PointStatus(nxt, geom.PointStatusEpsilon)
			if cs != geom.Above {
				out = append(out, cur)
			}
			if (cs == geom.Above && ns == geom.Below) || (cs == geom.Below && ns == geom.Above) {
				out = append(out, pl.IntersectSegment(cur, nxt))
			}
		}
	}
	return out
}

// FindFaceHit returns the face first hit by r from outside and the distance
// to it.
func (p *Polyhedron) FindFaceHit(r geom.Ray) (*Face, float64) {
	if math.IsNaN(geom.IntersectBoundsWithRay(p.bounds, r)) {
		return nil, 0
	}
	var best *Face
	bestDist := math.Inf(1)
	for _, f := range p.faces {
		if d, ok := f.IntersectWithRay(r, geom.SideFront); ok && d < bestDist {
			best, bestDist = f, d
		}
	}
	return best, bestDist
}
