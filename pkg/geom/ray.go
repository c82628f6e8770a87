package geom

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Side selects which side of a face a ray may hit.
type Side int

const (
	SideFront Side = 1 << iota // ray travels against the face normal
	SideBack                   // ray travels along the face normal
	SideBoth  = SideFront | SideBack
)

// Ray is a half line starting at Origin. Direction is expected to be unit
// length so that distances are metric.
type Ray struct {
	Origin    v3.Vec
	Direction v3.Vec
}

// NewRay normalizes direction.
func NewRay(origin, direction v3.Vec) Ray {
	return Ray{Origin: origin, Direction: Normalize(direction)}
}

// PointAtDistance returns Origin + Direction*d.
func (r Ray) PointAtDistance(d float64) v3.Vec {
	return r.Origin.Add(r.Direction.MulScalar(d))
}
