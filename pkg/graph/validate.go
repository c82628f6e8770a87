package graph

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors reports whether any blocking error was found.
func (r ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// Validate runs the structural checks on the scene graph: edges resolve,
// the graph is acyclic, names are unique, roots exist, payloads match
// their kinds and every kind has the right number of children. Findings
// come out in node id order. The graph is never mutated.
func Validate(g *SceneGraph) []ValidationError {
	c := newChecker(g)
	c.references()
	c.cycles()
	c.names()
	c.roots()
	for _, n := range c.nodes {
		c.payload(n)
		c.arity(n)
	}
	return c.found
}

// ValidateAll runs all validation tiers (structural, geometric, scene)
// and returns a ValidationResult with separated errors and warnings.
// Geometric and scene checks only run on a structurally valid graph.
func ValidateAll(g *SceneGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
			continue
		}
		result.Errors = append(result.Errors, e)
	}
	if result.HasErrors() {
		return result
	}

	// Tier 2: geometric validation.
	result.Errors = append(result.Errors, validateGeometry(g)...)
	if result.HasErrors() {
		return result
	}

	// Tier 3: scene advisories.
	result.Warnings = append(result.Warnings, validateScene(g)...)
	return result
}

// checker accumulates structural findings.
type checker struct {
	g      *SceneGraph
	nodes  []*Node             // sorted by id
	parent map[NodeID][]NodeID // child to the nodes that reference it
	found  []ValidationError
}

func newChecker(g *SceneGraph) *checker {
	nodes := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID.String() < nodes[j].ID.String() })

	parent := make(map[NodeID][]NodeID)
	for _, n := range nodes {
		for _, cid := range n.Children {
			parent[cid] = append(parent[cid], n.ID)
		}
	}
	return &checker{g: g, nodes: nodes, parent: parent}
}

func (c *checker) fail(id NodeID, format string, args ...any) {
	c.found = append(c.found, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (c *checker) warn(id NodeID, format string, args ...any) {
	c.found = append(c.found, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// label names a node for messages.
func (c *checker) label(id NodeID) string {
	if n := c.g.Nodes[id]; n != nil && n.Name != "" {
		return n.Name
	}
	return id.Short()
}

// references reports child edges to nodes that do not exist.
func (c *checker) references() {
	for _, n := range c.nodes {
		for i, cid := range n.Children {
			if _, ok := c.g.Nodes[cid]; !ok {
				c.fail(n.ID, "child %d (%s) does not exist", i, cid.Short())
			}
		}
	}
}

// cycles reports the first cycle found by a depth-first walk, with the
// path that closes it.
func (c *checker) cycles() {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[NodeID]int, len(c.nodes))
	var path []NodeID

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		n, ok := c.g.Nodes[id]
		if !ok || state[id] == done {
			return false
		}
		if state[id] == onPath {
			start := 0
			for i, p := range path {
				if p == id {
					start = i
				}
			}
			names := make([]string, 0, len(path)-start+1)
			for _, p := range path[start:] {
				names = append(names, c.label(p))
			}
			names = append(names, c.label(id))
			c.fail(id, "cycle detected: %s", strings.Join(names, " -> "))
			return true
		}
		state[id] = onPath
		path = append(path, id)
		for _, cid := range n.Children {
			if visit(cid) {
				return true
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return false
	}

	for _, n := range c.nodes {
		if visit(n.ID) {
			return
		}
	}
}

// names checks the name index against the nodes in both directions.
func (c *checker) names() {
	indexed := make([]string, 0, len(c.g.NameIndex))
	for name := range c.g.NameIndex {
		indexed = append(indexed, name)
	}
	sort.Strings(indexed)
	for _, name := range indexed {
		id := c.g.NameIndex[name]
		n, ok := c.g.Nodes[id]
		switch {
		case !ok:
			c.fail(ZeroID, "name index entry %q references non-existent node %s", name, id.Short())
		case n.Name != name:
			c.fail(id, "name index entry %q points at a node named %q", name, n.Name)
		}
	}

	byName := make(map[string][]NodeID)
	for _, n := range c.nodes {
		if n.Name != "" {
			byName[n.Name] = append(byName[n.Name], n.ID)
		}
	}
	for _, n := range c.nodes {
		ids := byName[n.Name]
		if len(ids) > 1 && ids[0] == n.ID {
			c.fail(ZeroID, "duplicate name %q assigned to %d nodes", n.Name, len(ids))
		}
	}
}

// roots checks root entries and warns about nodes no root reaches, roots
// listed twice and roots that are also children.
func (c *checker) roots() {
	seen := make(map[NodeID]bool, len(c.g.Roots))
	reach := make(map[NodeID]bool, len(c.nodes))
	queue := make([]NodeID, 0, len(c.g.Roots))
	for _, rid := range c.g.Roots {
		if _, ok := c.g.Nodes[rid]; !ok {
			c.fail(ZeroID, "root reference %s does not exist", rid.Short())
			continue
		}
		if seen[rid] {
			c.warn(rid, "node %q is listed as a root more than once", c.label(rid))
			continue
		}
		seen[rid] = true
		if ps := c.parent[rid]; len(ps) > 0 {
			c.warn(rid, "root %q is also a child of %q", c.label(rid), c.label(ps[0]))
		}
		reach[rid] = true
		queue = append(queue, rid)
	}

	for len(queue) > 0 {
		n := c.g.Nodes[queue[0]]
		queue = queue[1:]
		if n == nil {
			continue
		}
		for _, cid := range n.Children {
			if !reach[cid] {
				reach[cid] = true
				queue = append(queue, cid)
			}
		}
	}

	for _, n := range c.nodes {
		if !reach[n.ID] {
			c.warn(n.ID, "node %q is not reachable from any root (orphan)", c.label(n.ID))
		}
	}
}

// payload checks that n carries the data of its kind.
func (c *checker) payload(n *Node) {
	var ok bool
	switch n.Kind {
	case NodeBrush:
		_, ok = n.Data.(BrushData)
	case NodeTransform:
		_, ok = n.Data.(TransformData)
	case NodeGroup:
		_, ok = n.Data.(GroupData)
	case NodeSubtract:
		_, ok = n.Data.(SubtractData)
	case NodeIntersect:
		_, ok = n.Data.(IntersectData)
	case NodeVertexEdit:
		_, ok = n.Data.(VertexEditData)
	}
	if !ok {
		c.fail(n.ID, "%s node carries %T payload", n.Kind, n.Data)
	}
}

// arity checks the number of children n accepts. Brushes are leaves, CSG
// nodes need two operands and a vertex edit applies to one child. Empty
// transforms and groups are only warned about.
func (c *checker) arity(n *Node) {
	k := len(n.Children)
	switch n.Kind {
	case NodeBrush:
		if k > 0 {
			c.fail(n.ID, "brush has %d children, want none", k)
		}
	case NodeSubtract, NodeIntersect:
		if k < 2 {
			c.fail(n.ID, "%s has %d operands, want at least 2", n.Kind, k)
		}
	case NodeVertexEdit:
		if k != 1 {
			c.fail(n.ID, "vertex-edit has %d children, want 1", k)
		}
	case NodeTransform, NodeGroup:
		if k == 0 {
			c.warn(n.ID, "%s is empty", n.Kind)
		}
	}
}
