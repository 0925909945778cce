package graphview

import (
	"errors"
	"fmt"
	"image"

	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/undo"
)

var (
	ErrNoGraph           = errors.New("graphview: no graph bound")
	ErrIncompatiblePorts = errors.New("graphview: ports are not compatible")
	ErrLastPort          = errors.New("graphview: port is in use or is the last on its side")
	ErrNotConfigurable   = errors.New("graphview: node has no properties")
)

// View mirrors the bound graph as node views, ports and edge views, and
// turns editing gestures into model mutations. Port bindings are always
// derived from adjacency order.
type View struct {
	s        *Session
	nodes    map[string]*NodeView
	edges    map[EdgeKey]*EdgeView
	rebuilds int
}

func newView(s *Session) *View {
	v := &View{s: s}
	v.reset()
	return v
}

func (v *View) reset() {
	v.nodes = make(map[string]*NodeView)
	v.edges = make(map[EdgeKey]*EdgeView)
}

// ── Queries ──

// Node returns the view for a node ID, or nil.
func (v *View) Node(id string) *NodeView { return v.nodes[id] }

// Nodes returns node views in graph order, which is also paint order.
func (v *View) Nodes() []*NodeView {
	if v.s.graph == nil {
		return nil
	}
	out := make([]*NodeView, 0, len(v.nodes))
	for _, n := range v.s.graph.Nodes() {
		if nv := v.nodes[n.ID]; nv != nil {
			out = append(out, nv)
		}
	}
	return out
}

// Edges returns edge views ordered by parent, then output index.
func (v *View) Edges() []*EdgeView {
	var out []*EdgeView
	for _, nv := range v.Nodes() {
		for _, p := range nv.outputs {
			if p.Edge != nil {
				out = append(out, p.Edge)
			}
		}
	}
	return out
}

// Edge returns the edge view for parent→child, or nil.
func (v *View) Edge(parent, child string) *EdgeView {
	return v.edges[EdgeKey{Parent: parent, Child: child}]
}

// Rebuilds counts full rebuilds since the session was created.
func (v *View) Rebuilds() int { return v.rebuilds }

// HitNode returns the topmost node view containing pt.
func (v *View) HitNode(pt image.Point) *NodeView {
	nodes := v.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if pt.In(graphmodel.BoundsOf(nodes[i])) {
			return nodes[i]
		}
	}
	return nil
}

// HitPort returns the port anchored at pt.
func (v *View) HitPort(pt image.Point) *Port {
	nodes := v.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if p := nodes[i].PortAt(pt); p != nil {
			return p
		}
	}
	return nil
}

// CompatiblePorts lists the ports p may connect to: opposite direction on
// another node.
func (v *View) CompatiblePorts(p *Port) []*Port {
	var out []*Port
	for _, nv := range v.Nodes() {
		if nv.NodeID == p.Owner {
			continue
		}
		if p.Direction == Output {
			out = append(out, nv.inputs...)
		} else {
			out = append(out, nv.outputs...)
		}
	}
	return out
}

// ── Synchronization ──

// Rebuild discards every view and derives them again from the graph:
// materialize nodes, sort all adjacency, then bind every edge.
func (v *View) Rebuild() error {
	v.rebuilds++
	v.reset()
	g := v.s.graph
	if g == nil {
		return nil
	}
	for _, n := range g.Nodes() {
		v.nodes[n.ID] = newNodeView(n)
	}
	if err := g.SortAll(); err != nil {
		return err
	}
	return v.syncEdges()
}

// Update reconciles the views with the graph without discarding them.
// Views for new nodes are created, views for vanished nodes dropped, and
// only edges whose binding changed are unbound and bound again.
func (v *View) Update() error {
	g := v.s.graph
	if g == nil {
		v.reset()
		return nil
	}
	for id := range v.nodes {
		if g.Node(id) == nil {
			delete(v.nodes, id)
		}
	}
	for _, n := range g.Nodes() {
		nv := v.nodes[n.ID]
		if nv == nil {
			v.nodes[n.ID] = newNodeView(n)
			continue
		}
		nv.Title, nv.pos = n.Title(), n.Position
		nv.ensurePorts(Input, n.ParentCount())
		nv.ensurePorts(Output, n.ChildCount())
	}
	if err := g.SortAll(); err != nil {
		return err
	}
	return v.recover(v.syncEdges())
}

// syncEdges computes the wanted binding of every model edge, unbinds each
// edge view whose binding differs, then binds what is missing. Running it
// twice changes nothing.
func (v *View) syncEdges() error {
	g := v.s.graph
	type binding struct{ out, in *Port }
	want := make(map[EdgeKey]binding)
	for _, p := range g.Nodes() {
		for _, cid := range p.Children() {
			c := g.Node(cid)
			if c == nil {
				return fmt.Errorf("node %s child %s: %w", p.ID, cid, graphmodel.ErrDanglingReference)
			}
			out, in, err := ResolvePorts(p, c, v.nodes[p.ID], v.nodes[cid])
			if err != nil {
				return err
			}
			want[EdgeKey{Parent: p.ID, Child: cid}] = binding{out: out, in: in}
		}
	}

	for k, e := range v.edges {
		if b, ok := want[k]; ok && b.out == e.Output && b.in == e.Input {
			continue
		}
		disconnect(e)
		delete(v.edges, k)
	}
	for k, b := range want {
		if _, ok := v.edges[k]; ok {
			continue
		}
		if b.out.Edge != nil || b.in.Edge != nil {
			return fmt.Errorf("edge %s: %w: port already bound", k, graphmodel.ErrIndexNotFound)
		}
		e := &EdgeView{Key: k, Output: b.out, Input: b.in}
		connect(e)
		v.edges[k] = e
	}
	return nil
}

// recover turns a port/adjacency divergence into a logged full rebuild.
func (v *View) recover(err error) error {
	if err == nil || !errors.Is(err, graphmodel.ErrIndexNotFound) {
		return err
	}
	v.s.logger.Error("view out of sync, rebuilding: %v", err)
	return v.Rebuild()
}

// afterEdgeChange re-sorts both endpoints, grows their ports to fit, and
// re-derives bindings. After a removal each side gives back one spare port.
func (v *View) afterEdgeChange(parent, child *graphmodel.Node, removed bool) error {
	g := v.s.graph
	for _, n := range []*graphmodel.Node{parent, child} {
		if err := g.SortAdjacency(n); err != nil {
			return err
		}
	}
	pv, cv := v.nodes[parent.ID], v.nodes[child.ID]
	if pv == nil || cv == nil {
		return v.recover(fmt.Errorf("edge %s→%s: %w: missing node view",
			parent.ID, child.ID, graphmodel.ErrIndexNotFound))
	}
	pv.ensurePorts(Output, parent.ChildCount())
	cv.ensurePorts(Input, child.ParentCount())
	if err := v.syncEdges(); err != nil {
		return v.recover(err)
	}
	if removed {
		pv.reclaim(Output, parent.ChildCount())
		cv.reclaim(Input, child.ParentCount())
	}
	return nil
}

// ── Gestures ──

func (v *View) node(id string) (*graphmodel.Node, error) {
	if v.s.graph == nil {
		return nil, ErrNoGraph
	}
	n := v.s.graph.Node(id)
	if n == nil {
		return nil, fmt.Errorf("node %s: %w", id, graphmodel.ErrNodeNotFound)
	}
	return n, nil
}

// CreateNode instantiates kind at pos as one undo step.
func (v *View) CreateNode(kind string, pos image.Point) (*NodeView, error) {
	g := v.s.graph
	if g == nil {
		return nil, ErrNoGraph
	}
	factory, err := v.s.registry.Factory(kind)
	if err != nil {
		return nil, err
	}
	var n *graphmodel.Node
	err = v.s.bridge.Do("Create Node", []undo.Subject{GraphSubject(g)}, func() (err error) {
		n, err = g.CreateNode(factory, pos)
		return err
	})
	if err != nil {
		return nil, err
	}
	nv := newNodeView(n)
	v.nodes[n.ID] = nv
	v.s.logger.Debug("created %s node %s at %v", kind, n.ID, pos)
	v.s.save()
	return nv, nil
}

// RemoveNode detaches every incident edge and deletes the node. The whole
// gesture is one undo step.
func (v *View) RemoveNode(id string) error {
	n, err := v.node(id)
	if err != nil {
		return err
	}
	g := v.s.graph
	neighbors := map[string]*graphmodel.Node{}
	for _, nid := range append(n.Parents(), n.Children()...) {
		if nb := g.Node(nid); nb != nil && nb != n {
			neighbors[nid] = nb
		}
	}

	err = v.s.bridge.Do("Delete Node", []undo.Subject{GraphSubject(g)}, func() error {
		for _, pid := range n.Parents() {
			if err := v.removeEdge(g.Node(pid), n); err != nil {
				return err
			}
		}
		for _, cid := range n.Children() {
			if err := v.removeEdge(n, g.Node(cid)); err != nil {
				return err
			}
		}
		return g.DeleteNode(n)
	})
	if err != nil {
		v.s.logger.Error("delete node %s: %v", id, err)
		return errors.Join(err, v.Rebuild())
	}

	delete(v.nodes, id)
	for _, nb := range neighbors {
		if err := g.SortAdjacency(nb); err != nil {
			return err
		}
	}
	if err := v.syncEdges(); err != nil {
		if err := v.recover(err); err != nil {
			return err
		}
	}
	for _, nb := range neighbors {
		if nv := v.nodes[nb.ID]; nv != nil {
			nv.reclaim(Input, nb.ParentCount())
			nv.reclaim(Output, nb.ChildCount())
		}
	}
	if v.s.selected == id {
		v.s.Select("")
	}
	v.s.save()
	return nil
}

// removeEdge records both endpoints and drops the model edge.
func (v *View) removeEdge(parent, child *graphmodel.Node) error {
	if parent == nil || child == nil {
		return graphmodel.ErrDanglingReference
	}
	subjects := []undo.Subject{NodeSubject(parent), NodeSubject(child)}
	return v.s.bridge.Do("Remove Edge", subjects, func() error {
		return v.s.graph.RemoveEdge(parent, child)
	})
}

// RemoveEdge deletes the model edge behind e.
func (v *View) RemoveEdge(e *EdgeView) error {
	parent, err := v.node(e.Key.Parent)
	if err != nil {
		return err
	}
	child, err := v.node(e.Key.Child)
	if err != nil {
		return err
	}
	if err := v.removeEdge(parent, child); err != nil {
		return err
	}
	if err := v.afterEdgeChange(parent, child, true); err != nil {
		return err
	}
	v.s.save()
	return nil
}

// ProposeEdge connects the nodes owning a and b, in either order. The
// resulting binding follows adjacency order, not the ports chosen.
// An existing edge is rejected before anything is recorded.
func (v *View) ProposeEdge(a, b *Port) (*EdgeView, error) {
	if a == nil || b == nil || a.Direction == b.Direction || a.Owner == b.Owner {
		return nil, ErrIncompatiblePorts
	}
	out, in := a, b
	if out.Direction != Output {
		out, in = b, a
	}
	parent, err := v.node(out.Owner)
	if err != nil {
		return nil, err
	}
	child, err := v.node(in.Owner)
	if err != nil {
		return nil, err
	}
	if parent.HasChild(child.ID) {
		return nil, fmt.Errorf("edge %s→%s: %w", parent.ID, child.ID, graphmodel.ErrDuplicateEdge)
	}

	subjects := []undo.Subject{NodeSubject(parent), NodeSubject(child)}
	err = v.s.bridge.Do("Create Edge", subjects, func() error {
		return v.s.graph.CreateEdge(parent, child)
	})
	if err != nil {
		return nil, err
	}
	if err := v.afterEdgeChange(parent, child, false); err != nil {
		return nil, err
	}
	v.s.save()
	return v.Edge(parent.ID, child.ID), nil
}

// DragTo moves the node's view only. MoveNode commits.
func (v *View) DragTo(id string, pos image.Point) {
	if nv := v.nodes[id]; nv != nil {
		nv.pos = pos
	}
}

// MoveNode commits a position as one undo step. Adjacency is not re-sorted
// until the next edge change or rebuild.
func (v *View) MoveNode(id string, pos image.Point) error {
	n, err := v.node(id)
	if err != nil {
		return err
	}
	err = v.s.bridge.Do("Move Node", []undo.Subject{NodeSubject(n)}, func() error {
		return v.s.graph.MoveNode(n, pos)
	})
	if err != nil {
		return err
	}
	if nv := v.nodes[id]; nv != nil {
		nv.pos = pos
	}
	v.s.save()
	return nil
}

// SetProperties edits a configurable node as one undo step.
func (v *View) SetProperties(id string, props map[string]string) error {
	n, err := v.node(id)
	if err != nil {
		return err
	}
	cfg, ok := n.Behavior.(graphmodel.Configurable)
	if !ok {
		return fmt.Errorf("node %s: %w", id, ErrNotConfigurable)
	}
	err = v.s.bridge.Do("Edit Node", []undo.Subject{NodeSubject(n)}, func() error {
		return cfg.SetProperties(props)
	})
	if err != nil {
		return err
	}
	if nv := v.nodes[id]; nv != nil {
		nv.Title = n.Title()
	}
	v.s.save()
	return nil
}

// AddPort grows a side by one spare port. Ports are view state and are
// not recorded for undo.
func (v *View) AddPort(id string, d Direction) (*Port, error) {
	nv := v.nodes[id]
	if nv == nil {
		return nil, fmt.Errorf("node %s: %w", id, graphmodel.ErrNodeNotFound)
	}
	return nv.addPort(d), nil
}

// RemovePort removes p. A connected port removes its edge instead, which
// gives the port back through reclaim.
func (v *View) RemovePort(p *Port) error {
	if p.Edge != nil {
		return v.RemoveEdge(p.Edge)
	}
	nv := v.nodes[p.Owner]
	if nv == nil {
		return fmt.Errorf("node %s: %w", p.Owner, graphmodel.ErrNodeNotFound)
	}
	n, err := v.node(p.Owner)
	if err != nil {
		return err
	}
	bound := n.ParentCount()
	if p.Direction == Output {
		bound = n.ChildCount()
	}
	if len(nv.side(p.Direction)) <= max(1, bound) || !nv.removePort(p) {
		return ErrLastPort
	}
	return nil
}

// Select marks a node as selected and notifies the listener. An empty id
// clears the selection.
func (v *View) Select(id string) error {
	if id == "" {
		v.s.Select("")
		return nil
	}
	if _, err := v.node(id); err != nil {
		return err
	}
	v.s.Select(id)
	return nil
}

