package polyhedron

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
)

// visibilityEpsilon is the distance a point must lie above a face plane for
// the face to be replaced during hull insertion.
const visibilityEpsilon = geom.PointStatusEpsilon

// New returns the convex hull of points. Points closer than AlmostZero to an
// earlier point are ignored. The result may be of any shape.
func New(points ...v3.Vec) *Polyhedron {
	return hullOf(dedupe(points, geom.AlmostZero))
}

func dedupe(points []v3.Vec, eps float64) []v3.Vec {
	out := make([]v3.Vec, 0, len(points))
	for _, p := range points {
		if !lo.ContainsBy(out, func(q v3.Vec) bool { return geom.Equal(p, q, eps) }) {
			out = append(out, p)
		}
	}
	return out
}

func hullOf(pts []v3.Vec) *Polyhedron {
	p := &Polyhedron{}
	switch len(pts) {
	case 0:
		return p
	case 1:
		p.vertices = []*Vertex{{position: pts[0]}}
		p.rebuild()
		return p
	}

	p0 := pts[0]
	i1 := argMax(pts, func(q v3.Vec) float64 { return geom.Distance(q, p0) })
	dir := geom.Normalize(pts[i1].Sub(p0))

	i2 := argMax(pts, func(q v3.Vec) float64 { return q.Sub(p0).Cross(dir).Length() })
	if pts[i2].Sub(p0).Cross(dir).Length() <= geom.AlmostZero {
		first := argMax(pts, func(q v3.Vec) float64 { return -q.Sub(p0).Dot(dir) })
		last := argMax(pts, func(q v3.Vec) float64 { return q.Sub(p0).Dot(dir) })
		p.vertices = []*Vertex{{position: pts[first]}, {position: pts[last]}}
		p.rebuild()
		return p
	}

	n := geom.Normalize(pts[i1].Sub(p0).Cross(pts[i2].Sub(p0)))
	i3 := argMax(pts, func(q v3.Vec) float64 { return math.Abs(n.Dot(q.Sub(p0))) })
	if math.Abs(n.Dot(pts[i3].Sub(p0))) <= geom.AlmostZero {
		idx := geom.ConvexHull2DIndices(pts, n, geom.ColinearEpsilon)
		loop := lo.Map(idx, func(i int, _ int) *Vertex { return &Vertex{position: pts[i]} })
		p.vertices = loop
		p.faces = []*Face{{loop: append([]*Vertex(nil), loop...), payload: NoSlot}}
		p.rebuild()
		return p
	}

	v0 := &Vertex{position: p0}
	v1 := &Vertex{position: pts[i1]}
	v2 := &Vertex{position: pts[i2]}
	apex := &Vertex{position: pts[i3]}
	base := []*Vertex{v0, v1, v2}
	if n.Dot(apex.position.Sub(p0)) > 0 {
		base = []*Vertex{v0, v2, v1}
	}
	p.vertices = []*Vertex{v0, v1, v2, apex}
	p.faces = []*Face{{loop: base, payload: NoSlot}}
	for i := range base {
		a, b := base[i], base[(i+1)%3]
		p.faces = append(p.faces, &Face{loop: []*Vertex{b, a, apex}, payload: NoSlot})
	}
	p.rebuild()

	for i, q := range pts {
		if i == 0 || i == i1 || i == i2 || i == i3 {
			continue
		}
		p.insertPoint(q, NopCallback{})
	}
	p.mergeCoplanarFaces(NopCallback{})
	p.removeDegenerateVertices(NopCallback{})
	return p
}

func argMax(pts []v3.Vec, f func(v3.Vec) float64) int {
	best, bestVal := 0, math.Inf(-1)
	for i, q := range pts {
		if v := f(q); v > bestVal {
			best, bestVal = i, v
		}
	}
	return best
}

// AddPoint inserts position into the hull and returns its vertex. It returns
// the existing vertex if one is at position, and nil if the point lies
// inside the solid or was absorbed by a coplanar merge.
func (p *Polyhedron) AddPoint(position v3.Vec, cb Callback) *Vertex {
	cb = orNop(cb)
	if v := p.FindVertexByPosition(position, geom.AlmostZero); v != nil {
		return v
	}
	if !p.IsPolyhedron() {
		return p.regrow(position, cb)
	}
	if p.Contains(position) {
		return nil
	}
	v := p.insertPoint(position, cb)
	if v == nil {
		return nil
	}
	p.mergeCoplanarFaces(cb)
	p.removeDegenerateVertices(cb)
	if !lo.Contains(p.vertices, v) {
		return nil
	}
	return v
}

// regrow handles insertion into a lower-rank shape by recomputing the hull
// and reusing existing vertices by position.
func (p *Polyhedron) regrow(position v3.Vec, cb Callback) *Vertex {
	for _, f := range p.faces {
		cb.FaceWillBeDeleted(f)
	}
	q := hullOf(append(p.VertexPositions(), position))

	byPos := make(map[v3.Vec]*Vertex, len(p.vertices))
	for _, v := range p.vertices {
		byPos[v.position] = v
	}
	kept := make(map[*Vertex]bool)
	remap := make(map[*Vertex]*Vertex, len(q.vertices))
	var added *Vertex
	for _, qv := range q.vertices {
		if old, ok := byPos[qv.position]; ok {
			remap[qv] = old
			kept[old] = true
			continue
		}
		nv := &Vertex{position: qv.position}
		remap[qv] = nv
		added = nv
	}
	for _, v := range p.vertices {
		if !kept[v] {
			cb.VertexWillBeRemoved(v)
		}
	}

	p.vertices = lo.Map(q.vertices, func(v *Vertex, _ int) *Vertex { return remap[v] })
	p.faces = lo.Map(q.faces, func(f *Face, _ int) *Face {
		return &Face{
			loop:    lo.Map(f.loop, func(v *Vertex, _ int) *Vertex { return remap[v] }),
			payload: NoSlot,
		}
	})
	p.rebuild()

	if added != nil {
		cb.VertexWasAdded(added)
	}
	for _, f := range p.faces {
		cb.FaceWasCreated(f)
	}
	return added
}

// insertPoint replaces every face the point can see with a fan of triangles
// from the horizon to the new vertex. It returns nil when no face is
// visible.
func (p *Polyhedron) insertPoint(position v3.Vec, cb Callback) *Vertex {
	visible := make(map[*Face]bool)
	for _, f := range p.faces {
		if f.Plane().PointDistance(position) > visibilityEpsilon {
			visible[f] = true
		}
	}
	if len(visible) == 0 {
		return nil
	}

	var horizon []*HalfEdge
	for _, f := range p.faces {
		if !visible[f] {
			continue
		}
		for _, h := range f.boundary {
			if h.twin == nil || !visible[h.twin.face] {
				horizon = append(horizon, h)
			}
		}
	}

	nv := &Vertex{position: position}
	newFaces := make([]*Face, 0, len(horizon))
	for _, h := range horizon {
		newFaces = append(newFaces, &Face{
			loop:    []*Vertex{h.origin, h.Destination(), nv},
			payload: NoSlot,
		})
	}

	for _, f := range p.faces {
		if visible[f] {
			cb.FaceWillBeDeleted(f)
		}
	}
	p.removeFaces(visible)
	p.faces = append(p.faces, newFaces...)
	p.vertices = append(p.vertices, nv)

	used := make(map[*Vertex]bool)
	for _, f := range p.faces {
		for _, v := range f.loop {
			used[v] = true
		}
	}
	for _, v := range p.vertices {
		if !used[v] {
			cb.VertexWillBeRemoved(v)
		}
	}
	p.rebuild()

	cb.VertexWasAdded(nv)
	for _, f := range newFaces {
		cb.FaceWasCreated(f)
	}
	return nv
}

// mergeCoplanarFaces merges neighbouring faces that lie in a common plane.
// The face that comes first in storage order survives.
func (p *Polyhedron) mergeCoplanarFaces(cb Callback) bool {
	merged := false
	for {
		keep, drop := p.findCoplanarNeighbours()
		if keep == nil {
			return merged
		}
		cb.FacesWillBeMerged(keep, drop)
		keep.loop = mergedLoop(keep, drop)
		p.removeFaces(map[*Face]bool{drop: true})
		p.rebuild()
		merged = true
	}
}

func (p *Polyhedron) findCoplanarNeighbours() (keep, drop *Face) {
	for _, e := range p.edges {
		if e.first == nil || e.second == nil {
			continue
		}
		f1, f2 := e.first.face, e.second.face
		if f1 == f2 || !coplanar(f1, f2) {
			continue
		}
		if p.faceIndex(f2) < p.faceIndex(f1) {
			return f2, f1
		}
		return f1, f2
	}
	return nil, nil
}

func coplanar(f1, f2 *Face) bool {
	if f1.Normal().Dot(f2.Normal()) <= 0 {
		return false
	}
	p1, p2 := f1.Plane(), f2.Plane()
	for _, v := range f2.loop {
		if math.Abs(p1.PointDistance(v.position)) > geom.AlmostZero {
			return false
		}
	}
	for _, v := range f1.loop {
		if math.Abs(p2.PointDistance(v.position)) > geom.AlmostZero {
			return false
		}
	}
	return true
}

func mergedLoop(keep, drop *Face) []*Vertex {
	verts := lo.Uniq(append(append([]*Vertex(nil), keep.loop...), drop.loop...))
	positions := lo.Map(verts, func(v *Vertex, _ int) v3.Vec { return v.position })
	idx := geom.ConvexHull2DIndices(positions, keep.Normal(), geom.ColinearEpsilon)
	return lo.Map(idx, func(i int, _ int) *Vertex { return verts[i] })
}

// removeDegenerateVertices drops vertices shared by fewer than three faces;
// such vertices lie in the interior of an edge.
func (p *Polyhedron) removeDegenerateVertices(cb Callback) {
	if len(p.faces) < 2 {
		return
	}
	for {
		count := make(map[*Vertex]int, len(p.vertices))
		for _, f := range p.faces {
			for _, v := range f.loop {
				count[v]++
			}
		}
		dead := make(map[*Vertex]bool)
		for _, v := range p.vertices {
			if count[v] < 3 {
				dead[v] = true
				cb.VertexWillBeRemoved(v)
			}
		}
		if len(dead) == 0 {
			return
		}
		deadFaces := make(map[*Face]bool)
		for _, f := range p.faces {
			f.loop = lo.Filter(f.loop, func(v *Vertex, _ int) bool { return !dead[v] })
			if len(f.loop) < 3 {
				cb.FaceWillBeDeleted(f)
				deadFaces[f] = true
			}
		}
		p.removeFaces(deadFaces)
		p.vertices = lo.Filter(p.vertices, func(v *Vertex, _ int) bool { return !dead[v] })
		p.rebuild()
	}
}
