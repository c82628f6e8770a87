package polyhedron

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/geom"
)

// ClipType is the outcome of a clip.
type ClipType int

const (
	ClipUnchanged ClipType = iota // no vertex above the plane
	ClipEmpty                     // no vertex below the plane
	ClipSuccess
)

func (t ClipType) String() string {
	switch t {
	case ClipEmpty:
		return "empty"
	case ClipSuccess:
		return "success"
	default:
		return "unchanged"
	}
}

// ClipResult reports the outcome of Clip. Face is the new cap face on
// success.
type ClipResult struct {
	Type ClipType
	Face *Face
}

func (r ClipResult) Unchanged() bool { return r.Type == ClipUnchanged }
func (r ClipResult) Empty() bool     { return r.Type == ClipEmpty }
func (r ClipResult) Success() bool   { return r.Type == ClipSuccess }

// Clip intersects the solid with the half-space below plane. Planes with a
// zero or NaN normal leave the solid unchanged. An empty result leaves the
// polyhedron untouched and fires no events.
func (p *Polyhedron) Clip(plane geom.Plane, cb Callback) ClipResult {
	cb = orNop(cb)
	if !p.IsPolyhedron() || !plane.Valid() {
		return ClipResult{Type: ClipUnchanged}
	}

	status := make(map[*Vertex]geom.PointStatus, len(p.vertices))
	var above, below int
	for _, v := range p.vertices {
		s := plane.PointStatus(v.position, geom.PointStatusEpsilon)
		status[v] = s
		switch s {
		case geom.Above:
			above++
		case geom.Below:
			below++
		}
	}
	if above == 0 {
		return ClipResult{Type: ClipUnchanged}
	}
	if below == 0 {
		return ClipResult{Type: ClipEmpty}
	}

	onPlane := make(map[*Vertex]bool)
	for v, s := range status {
		if s == geom.Inside {
			onPlane[v] = true
		}
	}

	// Intersection vertices are shared by the two faces of a crossing edge.
	split := make(map[vertexPair]*Vertex)
	var added []*Vertex
	splitVertex := func(a, b *Vertex) *Vertex {
		if v, ok := split[vertexPair{a, b}]; ok {
			return v
		}
		v := &Vertex{position: plane.IntersectSegment(a.position, b.position)}
		split[vertexPair{a, b}] = v
		split[vertexPair{b, a}] = v
		onPlane[v] = true
		added = append(added, v)
		return v
	}

	newLoops := make(map[*Face][]*Vertex, len(p.faces))
	dead := make(map[*Face]bool)
	for _, f := range p.faces {
		n := len(f.loop)
		loop := make([]*Vertex, 0, n+1)
		for i, cur := range f.loop {
			nxt := f.loop[(i+1)%n]
			if status[cur] != geom.Above {
				loop = append(loop, cur)
			}
			if (status[cur] == geom.Above && status[nxt] == geom.Below) ||
				(status[cur] == geom.Below && status[nxt] == geom.Above) {
				loop = append(loop, splitVertex(cur, nxt))
			}
		}
		if len(loop) < 3 {
			dead[f] = true
			continue
		}
		newLoops[f] = loop
	}

	// Every surviving edge p->q lying in the plane is matched by q->p on the
	// cap.
	capNext := make(map[*Vertex]*Vertex)
	for _, f := range p.faces {
		loop, ok := newLoops[f]
		if !ok {
			continue
		}
		for i, a := range loop {
			b := loop[(i+1)%len(loop)]
			if onPlane[a] && onPlane[b] {
				capNext[b] = a
			}
		}
	}
	capLoop := chainLoop(capNext)
	if capLoop == nil {
		capLoop = hullLoop(lo.Keys(capNext), plane.Normal)
	}
	if len(capLoop) < 3 {
		return ClipResult{Type: ClipUnchanged}
	}

	for _, f := range p.faces {
		if dead[f] {
			cb.FaceWillBeDeleted(f)
		}
	}
	for _, v := range p.vertices {
		if status[v] == geom.Above {
			cb.VertexWillBeRemoved(v)
		}
	}

	for f, loop := range newLoops {
		f.loop = loop
	}
	p.removeFaces(dead)
	capFace := &Face{loop: capLoop, payload: NoSlot}
	p.faces = append(p.faces, capFace)
	p.vertices = lo.Filter(p.vertices, func(v *Vertex, _ int) bool { return status[v] != geom.Above })
	p.vertices = append(p.vertices, added...)
	p.rebuild()

	for _, v := range added {
		cb.VertexWasAdded(v)
	}
	cb.FaceWasCreated(capFace)
	return ClipResult{Type: ClipSuccess, Face: capFace}
}

// chainLoop follows next from an arbitrary start and returns the cycle if it
// visits every key exactly once.
func chainLoop(next map[*Vertex]*Vertex) []*Vertex {
	if len(next) < 3 {
		return nil
	}
	var start *Vertex
	for v := range next {
		start = v
		break
	}
	loop := make([]*Vertex, 0, len(next))
	seen := make(map[*Vertex]bool, len(next))
	for v := start; ; {
		if seen[v] {
			break
		}
		seen[v] = true
		loop = append(loop, v)
		nv, ok := next[v]
		if !ok {
			return nil
		}
		v = nv
	}
	if len(loop) != len(next) || next[loop[len(loop)-1]] != start {
		return nil
	}
	return loop
}

func hullLoop(verts []*Vertex, normal v3.Vec) []*Vertex {
	positions := lo.Map(verts, func(v *Vertex, _ int) v3.Vec { return v.position })
	idx := geom.ConvexHull2DIndices(positions, normal, geom.ColinearEpsilon)
	return lo.Map(idx, func(i int, _ int) *Vertex { return verts[i] })
}
