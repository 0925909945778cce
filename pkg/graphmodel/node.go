package graphmodel

import (
	"context"
	"image"
	"maps"
	"slices"
)

// Behavior is what a node kind plugs into the graph. The graph never looks
// past this interface; hooks are opaque payloads run by outer runtimes.
type Behavior interface {
	DisplayName() string
	OnEnter(ctx context.Context, n *Node) error
	OnExit(ctx context.Context, n *Node) error
}

// Configurable behaviors expose string properties that are persisted with
// the node and editable from the inspector.
type Configurable interface {
	Properties() map[string]string
	SetProperties(props map[string]string) error
}

// Cloner behaviors carry mutable state and must be deep-copied when the
// graph is cloned. Stateless behaviors are shared.
type Cloner interface {
	CloneBehavior() Behavior
}

// Factory builds an unplaced node. Graph.CreateNode assigns its identifier
// and position.
type Factory func() *Node

// Node is a graph vertex. Its adjacency is only mutated through Graph.
type Node struct {
	ID       string
	Kind     string
	Position image.Point
	Behavior Behavior

	parents  []string
	children []string
}

// NewNode returns an unplaced node of the given kind.
func NewNode(kind string, b Behavior) *Node {
	return &Node{Kind: kind, Behavior: b}
}

// Restore rebuilds a node with a known identifier and adjacency. Used when
// loading a persisted graph.
func Restore(id, kind string, b Behavior, pos image.Point, parents, children []string) *Node {
	return &Node{
		ID:       id,
		Kind:     kind,
		Position: pos,
		Behavior: b,
		parents:  slices.Clone(parents),
		children: slices.Clone(children),
	}
}

// Title is the behavior's display name, falling back to the kind.
func (n *Node) Title() string {
	if n.Behavior != nil {
		if name := n.Behavior.DisplayName(); name != "" {
			return name
		}
	}
	return n.Kind
}

// OnEnter runs the behavior's enter hook. Nodes without a behavior do nothing.
func (n *Node) OnEnter(ctx context.Context) error {
	if n.Behavior == nil {
		return nil
	}
	return n.Behavior.OnEnter(ctx, n)
}

// OnExit runs the behavior's exit hook.
func (n *Node) OnExit(ctx context.Context) error {
	if n.Behavior == nil {
		return nil
	}
	return n.Behavior.OnExit(ctx, n)
}

// Parents returns a copy of the ordered parent identifiers.
func (n *Node) Parents() []string { return slices.Clone(n.parents) }

// Children returns a copy of the ordered child identifiers.
func (n *Node) Children() []string { return slices.Clone(n.children) }

func (n *Node) ParentCount() int { return len(n.parents) }
func (n *Node) ChildCount() int  { return len(n.children) }

func (n *Node) HasParent(id string) bool { return slices.Contains(n.parents, id) }
func (n *Node) HasChild(id string) bool  { return slices.Contains(n.children, id) }

// IndexOfParent returns the position of id in the parent list, or -1.
func (n *Node) IndexOfParent(id string) int { return slices.Index(n.parents, id) }

// IndexOfChild returns the position of id in the child list, or -1.
func (n *Node) IndexOfChild(id string) int { return slices.Index(n.children, id) }

func (n *Node) addParent(id string) {
	if !n.HasParent(id) {
		n.parents = append(n.parents, id)
	}
}

func (n *Node) addChild(id string) {
	if !n.HasChild(id) {
		n.children = append(n.children, id)
	}
}

func (n *Node) removeParent(id string) {
	if i := n.IndexOfParent(id); i >= 0 {
		n.parents = slices.Delete(n.parents, i, i+1)
	}
}

func (n *Node) removeChild(id string) {
	if i := n.IndexOfChild(id); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
}

// Properties returns the behavior's properties, or nil when the behavior is
// not Configurable.
func (n *Node) Properties() map[string]string {
	if c, ok := n.Behavior.(Configurable); ok {
		return maps.Clone(c.Properties())
	}
	return nil
}

// clone deep-copies the node, keeping its identifier.
func (n *Node) clone() *Node {
	c := &Node{
		ID:       n.ID,
		Kind:     n.Kind,
		Position: n.Position,
		Behavior: n.Behavior,
		parents:  slices.Clone(n.parents),
		children: slices.Clone(n.children),
	}
	if cl, ok := n.Behavior.(Cloner); ok {
		c.Behavior = cl.CloneBehavior()
	}
	return c
}

// NodeState is a point-in-time copy of everything mutable on a node.
type NodeState struct {
	Position   image.Point
	Parents    []string
	Children   []string
	Properties map[string]string
}

// State captures the node's mutable fields.
func (n *Node) State() NodeState {
	return NodeState{
		Position:   n.Position,
		Parents:    slices.Clone(n.parents),
		Children:   slices.Clone(n.children),
		Properties: n.Properties(),
	}
}

// RestoreState overwrites the node's mutable fields with s.
func (n *Node) RestoreState(s NodeState) error {
	n.Position = s.Position
	n.parents = slices.Clone(s.Parents)
	n.children = slices.Clone(s.Children)
	if c, ok := n.Behavior.(Configurable); ok && s.Properties != nil {
		return c.SetProperties(maps.Clone(s.Properties))
	}
	return nil
}
