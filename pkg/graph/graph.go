package graph

import (
	"fmt"
	"sort"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/geom"
)

// GlobalDefaults contains graph-wide default settings.
type GlobalDefaults struct {
	Material  string  `json:"material"`   // material of brushes that name none
	WorldSize float64 `json:"world_size"` // half-extent of the world bounds
	Units     string  `json:"units"`
}

// SceneGraph is the top-level immutable data structure produced by
// evaluation. It is never mutated in place; each evaluation produces a new
// graph.
type SceneGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty SceneGraph with default settings.
func New() *SceneGraph {
	return &SceneGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			Material:  brush.NoMaterialName,
			WorldSize: geom.DefaultWorldSize,
			Units:     "units",
		},
	}
}

// AddNode adds a node to the graph and fills in its content hash. It does
// not check for duplicates.
func (g *SceneGraph) AddNode(n *Node) {
	if n.ContentHash == "" {
		n.ContentHash = ComputeHash(n)
	}
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *SceneGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *SceneGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *SceneGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *SceneGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Brushes returns all brush primitive nodes ordered by id.
func (g *SceneGraph) Brushes() []*Node {
	return g.OfKind(NodeBrush)
}

// OfKind returns the nodes of kind k ordered by id.
func (g *SceneGraph) OfKind(k NodeKind) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// Children returns the child nodes of the given node.
func (g *SceneGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *SceneGraph) NodeCount() int {
	return len(g.Nodes)
}

// WorldBounds returns the bounds every brush must stay inside.
func (g *SceneGraph) WorldBounds() sdf.Box3 {
	return geom.WorldBounds(g.Defaults.WorldSize)
}

// Builder returns a brush builder for the graph's world and default
// material.
func (g *SceneGraph) Builder() *brush.Builder {
	return brush.NewBuilder(g.WorldBounds()).WithMaterial(g.Defaults.Material)
}
