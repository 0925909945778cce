package graphview

import (
	"fmt"

	"github.com/wesen/stategraph/pkg/graphmodel"
)

// EdgeKey names an edge by its endpoints.
type EdgeKey struct {
	Parent string
	Child  string
}

func (k EdgeKey) String() string { return k.Parent + "→" + k.Child }

// EdgeView binds one output port of the parent to one input port of the
// child. It is derived from adjacency and never persisted.
type EdgeView struct {
	Key    EdgeKey
	Output *Port
	Input  *Port
}

// ResolvePorts returns the ports an existing edge parent→child binds to:
// the output at the child's index in parent.children and the input at the
// parent's index in child.parents. A missing entry or an index beyond the
// allocated ports means adjacency and ports have diverged.
func ResolvePorts(parent, child *graphmodel.Node, parentView, childView *NodeView) (*Port, *Port, error) {
	out := parent.IndexOfChild(child.ID)
	in := child.IndexOfParent(parent.ID)
	if out < 0 || in < 0 {
		return nil, nil, fmt.Errorf("edge %s→%s: %w (output %d, input %d)",
			parent.ID, child.ID, graphmodel.ErrIndexNotFound, out, in)
	}
	if out >= len(parentView.outputs) || in >= len(childView.inputs) {
		return nil, nil, fmt.Errorf("edge %s→%s: %w: port index out of range (output %d/%d, input %d/%d)",
			parent.ID, child.ID, graphmodel.ErrIndexNotFound,
			out, len(parentView.outputs), in, len(childView.inputs))
	}
	return parentView.outputs[out], childView.inputs[in], nil
}

func connect(e *EdgeView) {
	e.Output.Edge = e
	e.Input.Edge = e
}

func disconnect(e *EdgeView) {
	if e.Output.Edge == e {
		e.Output.Edge = nil
	}
	if e.Input.Edge == e {
		e.Input.Edge = nil
	}
}
