package brush

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NoMaterialName is the material of faces created without one.
const NoMaterialName = "__none__"

// Attributes are the texturing properties of a face. Offset and Scale are
// in texels; Rotation is in degrees about the face normal.
type Attributes struct {
	MaterialName    string     `json:"material"`
	Offset          mgl64.Vec2 `json:"offset"`
	Scale           mgl64.Vec2 `json:"scale"`
	Rotation        float64    `json:"rotation"`
	SurfaceContents int        `json:"surfaceContents,omitempty"`
	SurfaceFlags    int        `json:"surfaceFlags,omitempty"`
	SurfaceValue    float64    `json:"surfaceValue,omitempty"`
}

// NewAttributes returns unit-scaled attributes for material.
func NewAttributes(material string) Attributes {
	if material == "" {
		material = NoMaterialName
	}
	return Attributes{MaterialName: material, Scale: mgl64.Vec2{1, 1}}
}

// safeScale replaces zero scale components with 1.
func (a Attributes) safeScale() mgl64.Vec2 {
	s := a.Scale
	if s[0] == 0 {
		s[0] = 1
	}
	if s[1] == 0 {
		s[1] = 1
	}
	return s
}

// Equal compares two attribute sets, using eps for the numeric fields.
func (a Attributes) Equal(o Attributes, eps float64) bool {
	return a.MaterialName == o.MaterialName &&
		vec2Equal(a.Offset, o.Offset, eps) &&
		vec2Equal(a.Scale, o.Scale, eps) &&
		math.Abs(a.Rotation-o.Rotation) <= eps &&
		a.SurfaceContents == o.SurfaceContents &&
		a.SurfaceFlags == o.SurfaceFlags &&
		math.Abs(a.SurfaceValue-o.SurfaceValue) <= eps
}

func vec2Equal(a, b mgl64.Vec2, eps float64) bool {
	return math.Abs(a[0]-b[0]) <= eps && math.Abs(a[1]-b[1]) <= eps
}
