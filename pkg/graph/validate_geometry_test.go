package graph

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers for ValidationResult
// ---------------------------------------------------------------------------

// resultHasError returns true if result.Errors contains at least one entry
// whose Message contains substr.
func resultHasError(r ValidationResult, substr string) bool {
	for _, e := range r.Errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// resultHasWarning returns true if result.Warnings contains at least one entry
// whose Message contains substr.
func resultHasWarning(r ValidationResult, substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

func logResult(t *testing.T, r ValidationResult) {
	t.Helper()
	for _, e := range r.Errors {
		t.Logf("  error: %s", e.Message)
	}
	for _, w := range r.Warnings {
		t.Logf("  warning: %s", w.Message)
	}
}

// rootedBrush builds a graph whose only root is a group holding one brush.
func rootedBrush(data BrushData) *SceneGraph {
	g := New()
	brushID := NewNodeID("brush/under-test")
	groupID := NewNodeID("group/test")
	g.AddNode(&Node{ID: brushID, Kind: NodeBrush, Name: "under-test", Data: data})
	g.AddNode(&Node{ID: groupID, Kind: NodeGroup, Name: "root", Children: []NodeID{brushID}, Data: GroupData{}})
	g.AddRoot(groupID)
	return g
}

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation tests
// ---------------------------------------------------------------------------

func TestValidateAll_Primitives(t *testing.T) {
	tests := []struct {
		name    string
		data    BrushData
		message string
	}{
		{"zero X", BrushData{Shape: ShapeCuboid, Dimensions: Vec3{0, 200, 19}}, "cuboid dimension X is 0.0000"},
		{"negative Y", BrushData{Shape: ShapeCuboid, Dimensions: Vec3{400, -5, 19}}, "cuboid dimension Y is -5.0000"},
		{"zero Z", BrushData{Shape: ShapeCuboid, Dimensions: Vec3{400, 5, 0}}, "cuboid dimension Z"},
		{"prism sides", BrushData{Shape: ShapePrism, Sides: 2, Radius: 8, Height: 8}, "prism has 2 sides"},
		{"prism radius", BrushData{Shape: ShapePrism, Sides: 6, Radius: 0, Height: 8}, "prism radius"},
		{"prism height", BrushData{Shape: ShapePrism, Sides: 6, Radius: 8, Height: -1}, "prism height"},
		{"hull points", BrushData{Shape: ShapeHull, Points: []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}, "hull has 3 points"},
		{
			"flat hull",
			BrushData{Shape: ShapeHull, Points: []Vec3{{0, 0, 0}, {8, 0, 0}, {0, 8, 0}, {8, 8, 0}}},
			"hull does not build a brush",
		},
		{"bigger than the world", BrushData{Shape: ShapeCuboid, Dimensions: Vec3{20000, 1, 1}}, "cuboid does not build a brush"},
		{"face count", BrushData{Shape: ShapeFaces, Faces: tetrahedronFaces[:3]}, "brush has 3 faces"},
		{
			"open faces",
			BrushData{Shape: ShapeFaces, Faces: [][3]Vec3{
				{{8, 0, 0}, {8, 0, 1}, {8, 1, 0}},
				{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}},
				{{0, 8, 0}, {1, 8, 0}, {0, 8, 1}},
				{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}},
			}},
			"faces does not build a brush",
		},
		{"unknown shape", BrushData{Shape: Shape(5)}, "unknown brush shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAll(rootedBrush(tt.data))
			if !resultHasError(result, tt.message) {
				t.Errorf("expected error containing %q", tt.message)
				logResult(t, result)
			}
		})
	}
}

func TestValidateAll_AllZeroDimensions(t *testing.T) {
	result := ValidateAll(rootedBrush(BrushData{Shape: ShapeCuboid}))
	if len(result.Errors) != 3 {
		t.Errorf("error count = %d, want 3 (one per axis)", len(result.Errors))
		logResult(t, result)
	}
}

func TestValidateAll_VertexEdit(t *testing.T) {
	tests := []struct {
		name    string
		data    VertexEditData
		message string
	}{
		{"no positions", VertexEditData{Delta: Vec3{1, 0, 0}}, "selects no vertices"},
		{"zero delta", VertexEditData{Positions: []Vec3{{16, 16, 16}}}, "delta is zero"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			box := cuboidNode("box", 16, 16, 16)
			edit := &Node{
				ID: NewNodeID("vertex-edit/pull"), Kind: NodeVertexEdit, Name: "pull",
				Children: []NodeID{box.ID},
				Data:     tt.data,
			}
			g.AddNode(box)
			g.AddNode(edit)
			g.AddRoot(edit.ID)

			result := ValidateAll(g)
			if !resultHasError(result, tt.message) {
				t.Errorf("expected error containing %q", tt.message)
				logResult(t, result)
			}
		})
	}
}

func TestValidateAll_StructuralErrorsStopGeometry(t *testing.T) {
	g := rootedBrush(BrushData{Shape: ShapeCuboid})
	g.AddRoot(NewNodeID("nowhere"))

	result := ValidateAll(g)
	if !resultHasError(result, "root reference") {
		t.Error("expected structural error")
	}
	if resultHasError(result, "cuboid dimension") {
		t.Error("geometric checks ran on a structurally invalid graph")
	}
}

// ---------------------------------------------------------------------------
// Tier 3: Scene warnings
// ---------------------------------------------------------------------------

// placedPair builds a root group holding a at the origin and b placed at
// offset.
func placedPair(worldSize float64, a, b *Node, offset Vec3) *SceneGraph {
	g := New()
	g.Defaults.WorldSize = worldSize
	placeID := NewNodeID("place/" + b.Name)
	groupID := NewNodeID("group/pair")
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(&Node{ID: placeID, Kind: NodeTransform, Children: []NodeID{b.ID}, Data: TransformData{Translation: &offset}})
	g.AddNode(&Node{ID: groupID, Kind: NodeGroup, Name: "pair", Children: []NodeID{a.ID, placeID}, Data: GroupData{}})
	g.AddRoot(groupID)
	return g
}

func TestValidateAll_ValidGraph(t *testing.T) {
	result := ValidateAll(buildValidRoom())
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Error("expected a clean result")
		logResult(t, result)
	}
}

func TestValidateAll_EmptyGraph(t *testing.T) {
	result := ValidateAll(New())
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Error("expected a clean result for the empty graph")
		logResult(t, result)
	}
}

func TestValidateAll_Overlap(t *testing.T) {
	tests := []struct {
		name    string
		offset  Vec3
		overlap bool
	}{
		{"overlapping", Vec3{8, 0, 0}, true},
		{"touching", Vec3{16, 0, 0}, false},
		{"apart", Vec3{32, 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := placedPair(1024, cuboidNode("a", 16, 16, 16), cuboidNode("b", 16, 16, 16), tt.offset)
			result := ValidateAll(g)
			if len(result.Errors) != 0 {
				t.Fatalf("unexpected errors: %v", result.Errors)
			}
			if got := resultHasWarning(result, `brush "a" overlaps brush "b"`); got != tt.overlap {
				t.Errorf("overlap warning = %v, want %v", got, tt.overlap)
				logResult(t, result)
			}
		})
	}
}

func TestValidateAll_SameBrushPlacedTwice(t *testing.T) {
	a := cuboidNode("a", 16, 16, 16)
	g := New()
	off := Vec3{4, 0, 0}
	placeID := NewNodeID("place/a")
	groupID := NewNodeID("group/twice")
	g.AddNode(a)
	g.AddNode(&Node{ID: placeID, Kind: NodeTransform, Children: []NodeID{a.ID}, Data: TransformData{Translation: &off}})
	g.AddNode(&Node{ID: groupID, Kind: NodeGroup, Name: "twice", Children: []NodeID{a.ID, placeID}, Data: GroupData{}})
	g.AddRoot(groupID)

	result := ValidateAll(g)
	if !resultHasWarning(result, `brush "a" overlaps brush "a#2"`) {
		t.Error("expected the two instances to overlap")
		logResult(t, result)
	}
}

func TestValidateAll_CSGOperandsDoNotWarn(t *testing.T) {
	g := New()
	a := cuboidNode("a", 16, 16, 16)
	b := cuboidNode("b", 8, 8, 32)
	cut := &Node{ID: NewNodeID("subtract/cut"), Kind: NodeSubtract, Name: "cut", Children: []NodeID{a.ID, b.ID}, Data: SubtractData{}}
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(cut)
	g.AddRoot(cut.ID)

	if result := ValidateAll(g); len(result.Warnings) != 0 {
		t.Error("CSG operands should not be reported as overlapping")
		logResult(t, result)
	}
}

func TestValidateAll_WorldLimit(t *testing.T) {
	tests := []struct {
		name    string
		offset  Vec3
		message string
	}{
		{"near the limit", Vec3{1010, 0, 0}, `brush "b" is within 10.24 of the world limit`},
		{"outside the world", Vec3{2000, 0, 0}, `brush "b" cannot be placed`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := placedPair(1024, cuboidNode("a", 4, 4, 4), cuboidNode("b", 4, 4, 4), tt.offset)
			result := ValidateAll(g)
			if !resultHasWarning(result, tt.message) {
				t.Errorf("expected warning containing %q", tt.message)
				logResult(t, result)
			}
			if len(result.Errors) != 0 {
				t.Errorf("world limit findings must be warnings: %v", result.Errors)
			}
		})
	}
}
