package graph

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/brushwork/pkg/world"
)

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation (errors)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks. Nodes are visited in
// id order so findings are stable.
func validateGeometry(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateBrushes(g)...)
	errs = append(errs, validateVertexEdits(g)...)
	return errs
}

// validateBrushes checks primitive parameters and then that each primitive
// builds into a closed brush inside the world.
func validateBrushes(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	builder := g.Builder()

	for _, node := range g.Brushes() {
		bd := node.Data.(BrushData)

		dimErrs := validateDimensions(node.ID, bd)
		errs = append(errs, dimErrs...)
		if len(dimErrs) > 0 {
			continue
		}

		if _, err := bd.Build(builder); err != nil {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s does not build a brush: %v", bd.Shape, err),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateDimensions checks the parameters of a single primitive.
func validateDimensions(id NodeID, bd BrushData) []ValidationError {
	var errs []ValidationError
	fail := func(format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	switch bd.Shape {
	case ShapeCuboid:
		if bd.Dimensions.X <= 0 {
			fail("cuboid dimension X is %.4f, must be positive", bd.Dimensions.X)
		}
		if bd.Dimensions.Y <= 0 {
			fail("cuboid dimension Y is %.4f, must be positive", bd.Dimensions.Y)
		}
		if bd.Dimensions.Z <= 0 {
			fail("cuboid dimension Z is %.4f, must be positive", bd.Dimensions.Z)
		}
	case ShapePrism:
		if bd.Sides < 3 {
			fail("prism has %d sides, want at least 3", bd.Sides)
		}
		if bd.Radius <= 0 {
			fail("prism radius is %.4f, must be positive", bd.Radius)
		}
		if bd.Height <= 0 {
			fail("prism height is %.4f, must be positive", bd.Height)
		}
	case ShapeHull:
		if len(bd.Points) < 4 {
			fail("hull has %d points, want at least 4", len(bd.Points))
		}
	case ShapeFaces:
		if len(bd.Faces) < 4 {
			fail("brush has %d faces, want at least 4", len(bd.Faces))
		}
	default:
		fail("unknown brush shape %v", bd.Shape)
	}

	return errs
}

// validateVertexEdits checks that every vertex edit moves something.
func validateVertexEdits(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.OfKind(NodeVertexEdit) {
		vd := node.Data.(VertexEditData)
		if len(vd.Positions) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "vertex-edit selects no vertices",
				Severity: SeverityError,
			})
		}
		if vd.Delta.IsZero() {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "vertex-edit delta is zero",
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// ---------------------------------------------------------------------------
// Tier 3: Scene warnings
// ---------------------------------------------------------------------------

// WorldLimitFraction is the share of the world size within which a brush
// counts as near the world limit.
const WorldLimitFraction = 0.01

// validateScene places every brush that is not a CSG operand into a world
// index and warns about overlapping brushes and brushes near the world
// limit. Operands of subtract, intersect and vertex-edit nodes overlap on
// purpose and are skipped.
func validateScene(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	worldBounds := g.WorldBounds()
	builder := g.Builder()
	index := world.NewIndex()
	placed := make(map[string]*Node) // index key to brush node
	seen := make(map[string]int)

	var walk func(n *Node, m mgl64.Mat4)
	walk = func(n *Node, m mgl64.Mat4) {
		switch n.Kind {
		case NodeBrush:
			label := n.Name
			if label == "" {
				label = n.ID.Short()
			}
			seen[label]++
			key := label
			if seen[label] > 1 {
				key = fmt.Sprintf("%s#%d", label, seen[label])
			}

			b, err := n.Data.(BrushData).Build(builder)
			if err != nil {
				return // reported by Tier 2
			}
			if err := b.Transform(m, true, worldBounds); err != nil {
				warnings = append(warnings, ValidationWarning{
					NodeID:  n.ID,
					Message: fmt.Sprintf("brush %q cannot be placed: %v", key, err),
				})
				return
			}
			index.Insert(key, b)
			placed[key] = n

		case NodeTransform:
			local := n.Data.(TransformData).Matrix()
			for _, c := range g.Children(n) {
				walk(c, m.Mul4(local))
			}

		case NodeGroup:
			for _, c := range g.Children(n) {
				walk(c, m)
			}

		case NodeSubtract, NodeIntersect, NodeVertexEdit:
			// Operands overlap by construction.
		}
	}

	for _, rid := range g.Roots {
		if root := g.Get(rid); root != nil {
			walk(root, mgl64.Ident4())
		}
	}

	for _, o := range index.Overlaps() {
		warnings = append(warnings, ValidationWarning{
			NodeID:  placed[o.A.Name].ID,
			Message: fmt.Sprintf("brush %q overlaps brush %q", o.A.Name, o.B.Name),
		})
	}

	margin := g.Defaults.WorldSize * WorldLimitFraction
	for _, e := range index.OutsideMargin(worldBounds, margin) {
		warnings = append(warnings, ValidationWarning{
			NodeID:  placed[e.Name].ID,
			Message: fmt.Sprintf("brush %q is within %g of the world limit", e.Name, margin),
		})
	}

	sort.SliceStable(warnings, func(i, j int) bool { return warnings[i].Message < warnings[j].Message })
	return warnings
}
