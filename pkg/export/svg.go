// Package export writes evaluated brushes to interchange formats.
package export

import (
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/polyhedron"
)

// View selects the orthographic projection of an SVG drawing.
type View int

const (
	ViewTop   View = iota // looking down -Z: X right, Y up
	ViewFront             // looking along +Y: X right, Z up
	ViewSide              // looking along -X: Y right, Z up
)

func (v View) String() string {
	switch v {
	case ViewTop:
		return "top"
	case ViewFront:
		return "front"
	case ViewSide:
		return "side"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// ParseView returns the view called name.
func ParseView(name string) (View, error) {
	switch name {
	case "top":
		return ViewTop, nil
	case "front":
		return ViewFront, nil
	case "side":
		return ViewSide, nil
	}
	return 0, fmt.Errorf("export: unknown view %q, expected top, front or side", name)
}

// project maps a point to drawing coordinates, before scaling.
func (v View) project(p v3.Vec) (float64, float64) {
	switch v {
	case ViewFront:
		return p.X, p.Z
	case ViewSide:
		return p.Y, p.Z
	default:
		return p.X, p.Y
	}
}

// Part is a named set of brushes drawn as one SVG group.
type Part struct {
	Name    string
	Brushes []*brush.Brush
}

// Options controls the SVG canvas.
type Options struct {
	Width, Height int
	Margin        int
	View          View
	Stroke        float64
}

// DefaultOptions returns an 800x800 top view.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 800, Margin: 20, View: ViewTop, Stroke: 1}
}

type segment struct {
	x1, y1, x2, y2 float64
}

// WriteSVG draws the edges of every brush in parts as an orthographic
// wireframe, scaled to fit the canvas inside the margin.
func WriteSVG(w io.Writer, parts []Part, opts Options) error {
	innerW, innerH := opts.Width-2*opts.Margin, opts.Height-2*opts.Margin
	if innerW <= 0 || innerH <= 0 {
		return fmt.Errorf("export: canvas %dx%d leaves no room inside margin %d", opts.Width, opts.Height, opts.Margin)
	}

	lines := make([][]segment, len(parts))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, part := range parts {
		edges := lo.FlatMap(part.Brushes, func(b *brush.Brush, _ int) []*polyhedron.Edge { return b.Edges() })
		for _, e := range edges {
			x1, y1 := opts.View.project(e.FirstVertex().Position())
			x2, y2 := opts.View.project(e.SecondVertex().Position())
			lines[i] = append(lines[i], segment{x1, y1, x2, y2})
			minX, maxX = math.Min(minX, math.Min(x1, x2)), math.Max(maxX, math.Max(x1, x2))
			minY, maxY = math.Min(minY, math.Min(y1, y2)), math.Max(maxY, math.Max(y1, y2))
		}
	}

	scale := 1.0
	if dx, dy := maxX-minX, maxY-minY; dx > 0 || dy > 0 {
		scale = math.Inf(1)
		if dx > 0 {
			scale = float64(innerW) / dx
		}
		if dy > 0 {
			scale = math.Min(scale, float64(innerH)/dy)
		}
	}
	px := func(x float64) int { return opts.Margin + int(math.Round((x-minX)*scale)) }
	// SVG y grows downwards.
	py := func(y float64) int { return opts.Height - opts.Margin - int(math.Round((y-minY)*scale)) }

	style := fmt.Sprintf("stroke:black;stroke-width:%g;fill:none", opts.Stroke)
	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Title(fmt.Sprintf("%s view", opts.View))
	for i, part := range parts {
		if len(lines[i]) == 0 {
			continue
		}
		canvas.Gid(html.EscapeString(part.Name))
		for _, s := range lines[i] {
			canvas.Line(px(s.x1), py(s.y1), px(s.x2), py(s.y2), style)
		}
		canvas.Gend()
	}
	canvas.End()
	return nil
}
