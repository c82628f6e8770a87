package graph

import (
	"errors"
	"fmt"
)

// Builder provides a fluent API for building scene graphs from Go code.
// The scripting engine builds graphs node by node; Builder is for callers
// that assemble scenes directly.
type Builder struct {
	g     *SceneGraph
	anon  int
	order []NodeID
	err   error
}

// NewBuilder creates a builder for an empty graph.
func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// WithDefaults replaces the graph-wide defaults.
func (b *Builder) WithDefaults(d GlobalDefaults) *Builder {
	b.g.Defaults = d
	return b
}

// add creates a node with an id derived from kind and name. Anonymous
// nodes get a counter suffix.
func (b *Builder) add(kind NodeKind, name string, data NodeData, children ...NodeID) NodeID {
	path := kind.String() + "/" + name
	if name == "" {
		b.anon++
		path = fmt.Sprintf("%s/_anon_%d", kind, b.anon)
	}
	id := NewNodeID(path)
	if _, exists := b.g.Nodes[id]; exists && b.err == nil {
		b.err = fmt.Errorf("graph: node %q already exists", path)
	}
	b.g.AddNode(&Node{ID: id, Kind: kind, Name: name, Children: children, Data: data})
	b.order = append(b.order, id)
	return id
}

// Cuboid adds a box of the given size with its minimum corner at the
// origin.
func (b *Builder) Cuboid(name string, size Vec3, material string) NodeID {
	return b.add(NodeBrush, name, BrushData{Shape: ShapeCuboid, Dimensions: size, Material: material})
}

// Prism adds a regular prism centered at the origin with its axis along Z.
func (b *Builder) Prism(name string, sides int, radius, height float64, material string) NodeID {
	return b.add(NodeBrush, name, BrushData{
		Shape: ShapePrism, Sides: sides, Radius: radius, Height: height, Material: material,
	})
}

// Hull adds the convex hull of points.
func (b *Builder) Hull(name string, points []Vec3, material string) NodeID {
	return b.add(NodeBrush, name, BrushData{Shape: ShapeHull, Points: points, Material: material})
}

// Faces adds the brush bounded by the planes through each point triple.
func (b *Builder) Faces(name string, faces [][3]Vec3, material string) NodeID {
	return b.add(NodeBrush, name, BrushData{Shape: ShapeFaces, Faces: faces, Material: material})
}

// Place translates child by at.
func (b *Builder) Place(child NodeID, at Vec3) NodeID {
	return b.add(NodeTransform, "", TransformData{Translation: &at}, child)
}

// Transform rotates child by Euler angles in degrees, then translates it.
func (b *Builder) Transform(child NodeID, rotation, translation Vec3) NodeID {
	return b.add(NodeTransform, "", TransformData{Translation: &translation, Rotation: &rotation}, child)
}

// Group adds a named group of children.
func (b *Builder) Group(name string, children ...NodeID) NodeID {
	return b.add(NodeGroup, name, GroupData{}, children...)
}

// Subtract carves subtrahends out of minuend.
func (b *Builder) Subtract(name string, minuend NodeID, subtrahends ...NodeID) NodeID {
	return b.add(NodeSubtract, name, SubtractData{}, append([]NodeID{minuend}, subtrahends...)...)
}

// Intersect keeps the volume common to all operands.
func (b *Builder) Intersect(name string, operands ...NodeID) NodeID {
	return b.add(NodeIntersect, name, IntersectData{}, operands...)
}

// MoveVertices moves the vertices of child at positions by delta.
func (b *Builder) MoveVertices(name string, child NodeID, positions []Vec3, delta Vec3) NodeID {
	return b.add(NodeVertexEdit, name, VertexEditData{Positions: positions, Delta: delta}, child)
}

// Root registers ids as roots.
func (b *Builder) Root(ids ...NodeID) *Builder {
	for _, id := range ids {
		b.g.AddRoot(id)
	}
	return b
}

// RootTopLevel registers every node that no other node references as a
// root, in creation order.
func (b *Builder) RootTopLevel() *Builder {
	referenced := make(map[NodeID]bool)
	for _, n := range b.g.Nodes {
		for _, c := range n.Children {
			referenced[c] = true
		}
	}
	rooted := make(map[NodeID]bool)
	for _, id := range b.g.Roots {
		rooted[id] = true
	}
	for _, id := range b.order {
		if !referenced[id] && !rooted[id] {
			rooted[id] = true
			b.g.AddRoot(id)
		}
	}
	return b
}

// Graph returns the graph under construction without validating it.
func (b *Builder) Graph() *SceneGraph { return b.g }

// Err returns the first construction error, such as a duplicate name.
func (b *Builder) Err() error { return b.err }

// Build validates the graph and returns it. Validation warnings do not
// fail the build; errors are joined into the returned error.
func (b *Builder) Build() (*SceneGraph, ValidationResult, error) {
	if b.err != nil {
		return nil, ValidationResult{}, b.err
	}
	res := ValidateAll(b.g)
	if len(res.Errors) > 0 {
		errs := make([]error, len(res.Errors))
		for i, e := range res.Errors {
			errs[i] = e
		}
		return nil, res, fmt.Errorf("graph: invalid scene: %w", errors.Join(errs...))
	}
	return b.g, res, nil
}
