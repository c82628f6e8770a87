package polyhedron

// Subtract returns convex fragments whose union is p minus other. Each face
// plane of other cuts off the part of the remainder lying above it; the
// remainder that is left at the end is the intersection and is discarded.
// A p that does not intersect other is returned as a single clone.
func (p *Polyhedron) Subtract(other *Polyhedron) []*Polyhedron {
	if !p.IsPolyhedron() {
		return nil
	}
	if !other.IsPolyhedron() || !p.Intersects(other) {
		return []*Polyhedron{p.Clone()}
	}

	var fragments []*Polyhedron
	rest := p.Clone()
	for _, f := range other.faces {
		plane := f.Plane()

		piece := rest.Clone()
		switch piece.Clip(plane.Flip(), nil).Type {
		case ClipSuccess, ClipUnchanged:
			if piece.IsPolyhedron() {
				fragments = append(fragments, piece)
			}
		}

		if rest.Clip(plane, nil).Empty() {
			return fragments
		}
	}
	return fragments
}
