package graph

// NodeKind says what a node does to its children.
type NodeKind int

const (
	NodeBrush      NodeKind = iota // leaf: cuboid, prism, hull or face list
	NodeTransform                  // rotate then translate the children
	NodeGroup                      // children side by side
	NodeSubtract                   // first child minus the rest
	NodeIntersect                  // volume shared by every child
	NodeVertexEdit                 // vertex move on the union of the children
)

var kindNames = [...]string{
	NodeBrush:      "brush",
	NodeTransform:  "transform",
	NodeGroup:      "group",
	NodeSubtract:   "subtract",
	NodeIntersect:  "intersect",
	NodeVertexEdit: "vertex-edit",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is one operation in the scene graph. Nodes are shared between
// parents and never edited after they are added.
type Node struct {
	ID          NodeID      `json:"id"`
	Kind        NodeKind    `json:"kind"`
	Name        string      `json:"name,omitempty"`
	Source      SourceRef   `json:"source"`
	ContentHash ContentHash `json:"content_hash"`
	Children    []NodeID    `json:"children,omitempty"`
	Data        NodeData    `json:"data"`
}

// NodeData is the payload of a node; its concrete type follows Kind.
// Only this package implements it.
type NodeData interface {
	nodeData()
}
