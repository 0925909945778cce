package graphmodel

import (
	"fmt"
	"image"
	"slices"

	"github.com/google/uuid"
)

// Graph owns an ordered set of nodes. Node order only affects enumeration.
type Graph struct {
	Name string

	nodes map[string]*Node
	order []string // insertion order for deterministic iteration
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{
		Name:  name,
		nodes: make(map[string]*Node),
	}
}

// ── Node operations ──

// CreateNode builds a node with factory, assigns a fresh identifier and
// the given position, and appends it to the graph.
func (g *Graph) CreateNode(factory Factory, pos image.Point) (*Node, error) {
	if factory == nil {
		return nil, fmt.Errorf("create node: %w: nil factory", ErrInvalidFactory)
	}
	n := factory()
	if n == nil || n.Behavior == nil {
		return nil, fmt.Errorf("create node: %w: factory yielded no behavior", ErrInvalidFactory)
	}
	n.ID = uuid.NewString()
	n.Position = pos
	n.parents = nil
	n.children = nil
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return n, nil
}

// Adopt inserts a node that already carries an identifier and adjacency.
// The caller is expected to Validate once every node is adopted.
func (g *Graph) Adopt(n *Node) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("adopt: %w: missing identifier", ErrNodeNotFound)
	}
	if _, ok := g.nodes[n.ID]; ok {
		return fmt.Errorf("adopt %s: %w", n.ID, ErrDuplicateNode)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return nil
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	result := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		if n, ok := g.nodes[id]; ok {
			result = append(result, n)
		}
	}
	return result
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Contains reports whether n is owned by the graph.
func (g *Graph) Contains(n *Node) bool {
	return n != nil && g.nodes[n.ID] == n
}

// DeleteNode removes n from the graph. Incident edges must already be gone;
// they are reported, not repaired.
func (g *Graph) DeleteNode(n *Node) error {
	if !g.Contains(n) {
		return fmt.Errorf("delete node: %w", ErrNodeNotFound)
	}
	if len(n.parents) > 0 || len(n.children) > 0 {
		return fmt.Errorf("delete node %s: %w: %d parents, %d children still attached",
			n.ID, ErrDanglingReference, len(n.parents), len(n.children))
	}
	for _, other := range g.nodes {
		if other != n && (other.HasChild(n.ID) || other.HasParent(n.ID)) {
			return fmt.Errorf("delete node %s: %w: still referenced by %s",
				n.ID, ErrDanglingReference, other.ID)
		}
	}
	delete(g.nodes, n.ID)
	if i := slices.Index(g.order, n.ID); i >= 0 {
		g.order = slices.Delete(g.order, i, i+1)
	}
	return nil
}

// MoveNode sets the node's position. Adjacency order is not touched; it is
// re-sorted at the next edge change or rebuild.
func (g *Graph) MoveNode(n *Node, pos image.Point) error {
	if !g.Contains(n) {
		return fmt.Errorf("move node: %w", ErrNodeNotFound)
	}
	n.Position = pos
	return nil
}

// ── Edge operations ──

// CreateEdge appends child to parent's children and parent to child's
// parents. Existing entries are left alone, so repeated calls are no-ops.
// Cycles are not checked.
func (g *Graph) CreateEdge(parent, child *Node) error {
	if !g.Contains(parent) || !g.Contains(child) {
		return fmt.Errorf("create edge: %w", ErrNodeNotFound)
	}
	child.addParent(parent.ID)
	parent.addChild(child.ID)
	return nil
}

// RemoveEdge drops the parent/child relationship. Absent edges are a no-op.
func (g *Graph) RemoveEdge(parent, child *Node) error {
	if !g.Contains(parent) || !g.Contains(child) {
		return fmt.Errorf("remove edge: %w", ErrNodeNotFound)
	}
	child.removeParent(parent.ID)
	parent.removeChild(child.ID)
	return nil
}

// HasEdge reports whether child is in parent's children.
func (g *Graph) HasEdge(parent, child *Node) bool {
	return parent != nil && child != nil && parent.HasChild(child.ID)
}

// EdgeCount returns the number of parent→child relationships.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.children)
	}
	return count
}

// Clone deep-copies every node into an independent graph. Identifiers,
// positions and adjacency order are preserved.
func (g *Graph) Clone() *Graph {
	c := New(g.Name)
	for _, id := range g.order {
		n := g.nodes[id].clone()
		c.nodes[id] = n
		c.order = append(c.order, id)
	}
	return c
}

// Validate checks that every adjacency entry names an owned node and that
// B ∈ A.children ⇔ A ∈ B.parents.
func (g *Graph) Validate() error {
	for _, id := range g.order {
		n := g.nodes[id]
		for _, cid := range n.children {
			child, ok := g.nodes[cid]
			if !ok {
				return fmt.Errorf("node %s child %s: %w", id, cid, ErrDanglingReference)
			}
			if !child.HasParent(id) {
				return fmt.Errorf("node %s → %s: %w", id, cid, ErrAsymmetricEdge)
			}
		}
		for _, pid := range n.parents {
			parent, ok := g.nodes[pid]
			if !ok {
				return fmt.Errorf("node %s parent %s: %w", id, pid, ErrDanglingReference)
			}
			if !parent.HasChild(id) {
				return fmt.Errorf("node %s ← %s: %w", id, pid, ErrAsymmetricEdge)
			}
		}
	}
	return nil
}

// ── Snapshots ──

// Membership returns the owned nodes in order. Together with
// RestoreMembership it captures node add/remove for undo.
func (g *Graph) Membership() []*Node {
	return g.Nodes()
}

// RestoreMembership replaces the owned node set.
func (g *Graph) RestoreMembership(nodes []*Node) {
	g.nodes = make(map[string]*Node, len(nodes))
	g.order = make([]string, 0, len(nodes))
	for _, n := range nodes {
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
}
