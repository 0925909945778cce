package graphview

import (
	"image"
	"slices"

	"github.com/google/uuid"
	"github.com/wesen/stategraph/pkg/graphmodel"
)

// Direction is the side of a node a port sits on.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Node box geometry in cells. Ports start below the title row.
const (
	NodeWidth  = 24
	portRowTop = 2
	boxChrome  = 3 // top border, title, bottom border
)

// Port is a connection point. A port holds at most one edge.
type Port struct {
	ID        string
	Owner     string // node ID
	Direction Direction
	Edge      *EdgeView
}

// Connected reports whether an edge is attached.
func (p *Port) Connected() bool { return p.Edge != nil }

// NodeView is the view-side counterpart of a node. It refers to the node
// by ID only; the graph owns the entity.
type NodeView struct {
	NodeID string
	Kind   string
	Title  string

	pos     image.Point
	inputs  []*Port
	outputs []*Port
}

// newNodeView materializes a view with max(1, len(parents)) inputs and
// max(1, len(children)) outputs.
func newNodeView(n *graphmodel.Node) *NodeView {
	v := &NodeView{NodeID: n.ID, Kind: n.Kind, Title: n.Title(), pos: n.Position}
	v.ensurePorts(Input, max(1, n.ParentCount()))
	v.ensurePorts(Output, max(1, n.ChildCount()))
	return v
}

// Pos implements graphmodel.Spatial. During a drag it leads the model.
func (v *NodeView) Pos() image.Point { return v.pos }

// Size implements graphmodel.Spatial.
func (v *NodeView) Size() image.Point {
	return image.Pt(NodeWidth, boxChrome+max(len(v.inputs), len(v.outputs)))
}

// Inputs returns the input ports in index order.
func (v *NodeView) Inputs() []*Port { return slices.Clone(v.inputs) }

// Outputs returns the output ports in index order.
func (v *NodeView) Outputs() []*Port { return slices.Clone(v.outputs) }

// Ports returns the ports on side d.
func (v *NodeView) Ports(d Direction) []*Port {
	if d == Output {
		return v.Outputs()
	}
	return v.Inputs()
}

// IndexOf returns p's index on its side, or -1.
func (v *NodeView) IndexOf(p *Port) int {
	return slices.Index(v.side(p.Direction), p)
}

// Anchor is the cell where edges attach to p.
func (v *NodeView) Anchor(p *Port) image.Point {
	i := v.IndexOf(p)
	if p.Direction == Output {
		return image.Pt(v.pos.X+NodeWidth-1, v.pos.Y+portRowTop+i)
	}
	return image.Pt(v.pos.X, v.pos.Y+portRowTop+i)
}

// PortAt returns the port anchored at pt, or nil.
func (v *NodeView) PortAt(pt image.Point) *Port {
	row := pt.Y - v.pos.Y - portRowTop
	var ports []*Port
	switch pt.X {
	case v.pos.X:
		ports = v.inputs
	case v.pos.X + NodeWidth - 1:
		ports = v.outputs
	}
	if row < 0 || row >= len(ports) {
		return nil
	}
	return ports[row]
}

func (v *NodeView) side(d Direction) []*Port {
	if d == Output {
		return v.outputs
	}
	return v.inputs
}

func (v *NodeView) setSide(d Direction, ports []*Port) {
	if d == Output {
		v.outputs = ports
	} else {
		v.inputs = ports
	}
}

// addPort allocates one port at the end of side d.
func (v *NodeView) addPort(d Direction) *Port {
	p := &Port{ID: uuid.NewString(), Owner: v.NodeID, Direction: d}
	v.setSide(d, append(v.side(d), p))
	return p
}

// ensurePorts grows side d to at least n ports.
func (v *NodeView) ensurePorts(d Direction, n int) {
	for len(v.side(d)) < n {
		v.addPort(d)
	}
}

// removePort drops an unconnected port, keeping at least one on the side.
func (v *NodeView) removePort(p *Port) bool {
	ports := v.side(p.Direction)
	i := slices.Index(ports, p)
	if i < 0 || p.Connected() || len(ports) <= 1 {
		return false
	}
	v.setSide(p.Direction, slices.Delete(ports, i, i+1))
	return true
}

// reclaim retracts the last unconnected port on side d while the side
// holds more than max(1, bound) ports. At most one port is removed.
func (v *NodeView) reclaim(d Direction, bound int) bool {
	ports := v.side(d)
	if len(ports) <= max(1, bound) {
		return false
	}
	for i := len(ports) - 1; i >= bound; i-- {
		if !ports[i].Connected() {
			return v.removePort(ports[i])
		}
	}
	return false
}
