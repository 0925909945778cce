package graphview

import (
	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/undo"
)

// Phase is the bridge's state for the mutation in flight.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseApplying
)

func (p Phase) String() string {
	switch p {
	case PhaseRecording:
		return "recording"
	case PhaseApplying:
		return "applying"
	default:
		return "idle"
	}
}

// Bridge wraps structural mutations in undo commands. Each mutation
// snapshots the subjects it touches, applies, and commits. The commit
// happens even when apply fails, so the pre-mutation state stays one undo
// away and no partial step is left open.
type Bridge struct {
	stack *undo.Stack
	phase Phase
	depth int
}

// NewBridge wraps stack.
func NewBridge(stack *undo.Stack) *Bridge {
	return &Bridge{stack: stack}
}

// Phase returns the current phase.
func (b *Bridge) Phase() Phase { return b.phase }

// Do runs apply inside an undo command labelled label. Calls made from
// within apply join the outer command.
func (b *Bridge) Do(label string, subjects []undo.Subject, apply func() error) error {
	b.depth++
	b.phase = PhaseRecording
	b.stack.Begin(label)
	defer func() {
		_ = b.stack.Commit()
		b.depth--
		if b.depth == 0 {
			b.phase = PhaseIdle
		} else {
			b.phase = PhaseApplying
		}
	}()

	if err := b.stack.Record(subjects...); err != nil {
		return err
	}
	b.phase = PhaseApplying
	return apply()
}

// ── Undo subjects ──

type graphSubject struct{ g *graphmodel.Graph }

// GraphSubject captures node membership of g.
func GraphSubject(g *graphmodel.Graph) undo.Subject { return graphSubject{g: g} }

func (s graphSubject) Key() string { return "graph" }

func (s graphSubject) Capture() undo.Snapshot {
	return membershipSnapshot{g: s.g, nodes: s.g.Membership()}
}

type membershipSnapshot struct {
	g     *graphmodel.Graph
	nodes []*graphmodel.Node
}

func (m membershipSnapshot) Restore() error {
	m.g.RestoreMembership(m.nodes)
	return nil
}

type nodeSubject struct{ n *graphmodel.Node }

// NodeSubject captures the mutable state of n.
func NodeSubject(n *graphmodel.Node) undo.Subject { return nodeSubject{n: n} }

func (s nodeSubject) Key() string { return "node:" + s.n.ID }

func (s nodeSubject) Capture() undo.Snapshot {
	return nodeSnapshot{n: s.n, state: s.n.State()}
}

type nodeSnapshot struct {
	n     *graphmodel.Node
	state graphmodel.NodeState
}

func (s nodeSnapshot) Restore() error { return s.n.RestoreState(s.state) }
