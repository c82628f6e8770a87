// Package tessellate turns a scene graph into kernel solids and meshes.
// Every brush or CSG node reached from a root through groups and
// transforms is one part, placed in world space, and yields one mesh.
package tessellate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/graph"
	"github.com/chazu/brushwork/pkg/kernel"
)

// ErrVertexEditUnsupported is returned for vertex-edit nodes when the
// kernel does not implement kernel.VertexEditor.
var ErrVertexEditUnsupported = errors.New("kernel cannot move vertices")

// Options configures a tessellation.
type Options struct {
	Logger *zap.Logger // nil discards
}

// Part is an evaluated part of the scene in world space.
type Part struct {
	Name  string
	Node  graph.NodeID
	Solid kernel.Solid
}

// Evaluate builds every part of g. It reads the graph and never changes
// it. A nil graph has no parts.
func Evaluate(g *graph.SceneGraph, k kernel.Kernel, opts Options) ([]Part, error) {
	if g == nil {
		return nil, nil
	}
	w := &walker{g: g, k: k, log: opts.Logger}
	if w.log == nil {
		w.log = zap.NewNop()
	}

	var parts []Part
	for _, id := range g.Roots {
		root := g.Get(id)
		if root == nil {
			return nil, fmt.Errorf("tessellate: root %s not found", id.Short())
		}
		if err := w.collect(root, nil, &parts); err != nil {
			return nil, fmt.Errorf("tessellate: root %s: %w", partName(root), err)
		}
	}
	return parts, nil
}

// Tessellate evaluates g and meshes every part.
func Tessellate(g *graph.SceneGraph, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	parts, err := Evaluate(g, k, opts)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	meshes := make([]*kernel.Mesh, len(parts))
	for i, p := range parts {
		m, err := k.ToMesh(p.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: mesh part %q: %w", p.Name, err)
		}
		m.PartName = p.Name
		log.Debug("tessellated part", zap.String("part", p.Name), zap.Int("triangles", m.TriangleCount()))
		meshes[i] = m
	}
	return meshes, nil
}

func partName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

type walker struct {
	g   *graph.SceneGraph
	k   kernel.Kernel
	log *zap.Logger
}

// placement is the chain of transforms above a part, outermost first.
type placement []graph.TransformData

func (pl placement) apply(k kernel.Kernel, s kernel.Solid) (kernel.Solid, error) {
	for i := len(pl) - 1; i >= 0; i-- {
		var err error
		if s, err = transform(k, s, pl[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// transform rotates s and then translates it.
func transform(k kernel.Kernel, s kernel.Solid, td graph.TransformData) (kernel.Solid, error) {
	var err error
	if r := td.Rotation; r != nil && !r.IsZero() {
		if s, err = k.Rotate(s, r.Vec()); err != nil {
			return nil, err
		}
	}
	if t := td.Translation; t != nil && !t.IsZero() {
		if s, err = k.Translate(s, t.Vec()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func transformData(n *graph.Node) (graph.TransformData, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return td, fmt.Errorf("transform node %s carries %T", partName(n), n.Data)
	}
	return td, nil
}

// collect appends the parts at or below n. Groups and transforms are
// walked through; anything else is a part.
func (w *walker) collect(n *graph.Node, above placement, parts *[]Part) error {
	switch n.Kind {
	case graph.NodeGroup:
		return w.collectChildren(n, above, parts)

	case graph.NodeTransform:
		td, err := transformData(n)
		if err != nil {
			return err
		}
		// Full slice expression so siblings never share a backing array.
		return w.collectChildren(n, append(above[:len(above):len(above)], td), parts)

	case graph.NodeBrush, graph.NodeSubtract, graph.NodeIntersect, graph.NodeVertexEdit:
		s, err := w.solid(n)
		if err != nil || s == nil {
			return err
		}
		if s, err = above.apply(w.k, s); err != nil {
			return fmt.Errorf("place %s: %w", partName(n), err)
		}
		*parts = append(*parts, Part{Name: partName(n), Node: n.ID, Solid: s})
		return nil
	}
	return fmt.Errorf("unknown node kind: %v", n.Kind)
}

func (w *walker) collectChildren(n *graph.Node, above placement, parts *[]Part) error {
	for _, c := range w.g.Children(n) {
		if err := w.collect(c, above, parts); err != nil {
			return err
		}
	}
	return nil
}

// solid evaluates the subtree at n into one solid in n's frame. A subtree
// without brushes yields nil.
func (w *walker) solid(n *graph.Node) (kernel.Solid, error) {
	children := w.g.Children(n)
	switch n.Kind {
	case graph.NodeBrush:
		return w.brush(n)

	case graph.NodeGroup:
		return w.fold(children, w.k.Union)

	case graph.NodeTransform:
		td, err := transformData(n)
		if err != nil {
			return nil, err
		}
		s, err := w.fold(children, w.k.Union)
		if err != nil || s == nil {
			return s, err
		}
		return transform(w.k, s, td)

	case graph.NodeSubtract:
		if len(children) == 0 {
			return nil, nil
		}
		minuend, err := w.solid(children[0])
		if err != nil || minuend == nil {
			return minuend, err
		}
		cutters, err := w.fold(children[1:], w.k.Union)
		if err != nil || cutters == nil {
			return minuend, err
		}
		s, err := w.k.Difference(minuend, cutters)
		if err != nil {
			return nil, fmt.Errorf("subtract %s: %w", partName(n), err)
		}
		return s, nil

	case graph.NodeIntersect:
		s, err := w.fold(children, w.k.Intersection)
		if err != nil {
			return nil, fmt.Errorf("intersect %s: %w", partName(n), err)
		}
		return s, nil

	case graph.NodeVertexEdit:
		return w.vertexEdit(n, children)
	}
	return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
}

// fold combines the solids of nodes pairwise with op, skipping subtrees
// that have none.
func (w *walker) fold(nodes []*graph.Node, op func(a, b kernel.Solid) (kernel.Solid, error)) (kernel.Solid, error) {
	var acc kernel.Solid
	for _, n := range nodes {
		s, err := w.solid(n)
		if err != nil {
			return nil, err
		}
		switch {
		case s == nil:
		case acc == nil:
			acc = s
		default:
			if acc, err = op(acc, s); err != nil {
				return nil, err
			}
		}
	}
	return acc, nil
}

// brush builds the primitive of a brush node and paints it.
func (w *walker) brush(n *graph.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BrushData)
	if !ok {
		return nil, fmt.Errorf("brush node %s carries %T", partName(n), n.Data)
	}

	var (
		s   kernel.Solid
		err error
	)
	switch bd.Shape {
	case graph.ShapeCuboid:
		s, err = w.k.Box(bd.Dimensions.Vec())
	case graph.ShapePrism:
		s, err = w.k.Prism(bd.Sides, bd.Radius, bd.Height)
	case graph.ShapeHull:
		s, err = w.k.Hull(bd.PointVecs())
	case graph.ShapeFaces:
		// Face planes are resolved by the brush builder; the kernel sees
		// the hull of the resulting vertices.
		var b *brush.Brush
		if b, err = bd.Build(w.g.Builder()); err == nil {
			s, err = w.k.Hull(b.VertexPositions())
		}
	default:
		err = fmt.Errorf("unknown shape %v", bd.Shape)
	}
	if err != nil {
		return nil, fmt.Errorf("brush %s: %w", partName(n), err)
	}

	material := bd.Material
	if material == "" {
		material = w.g.Defaults.Material
	}
	if p, ok := w.k.(kernel.Painter); ok && material != "" && material != brush.NoMaterialName {
		if s, err = p.Paint(s, material); err != nil {
			return nil, fmt.Errorf("brush %s: %w", partName(n), err)
		}
	}
	return s, nil
}

func (w *walker) vertexEdit(n *graph.Node, children []*graph.Node) (kernel.Solid, error) {
	vd, ok := n.Data.(graph.VertexEditData)
	if !ok {
		return nil, fmt.Errorf("vertex-edit node %s carries %T", partName(n), n.Data)
	}
	editor, ok := w.k.(kernel.VertexEditor)
	if !ok {
		return nil, fmt.Errorf("vertex-edit node %s: %w", partName(n), ErrVertexEditUnsupported)
	}
	s, err := w.fold(children, w.k.Union)
	if err != nil || s == nil {
		return s, err
	}
	moved, err := editor.MoveVertices(s, vd.PositionVecs(), vd.Delta.Vec())
	if err != nil {
		return nil, fmt.Errorf("vertex-edit node %s: %w", partName(n), err)
	}
	w.log.Debug("moved vertices", zap.String("node", partName(n)), zap.Int("vertices", len(vd.Positions)))
	return moved, nil
}
