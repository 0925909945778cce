// Package statemachine runs a graph. A Machine works on its own clone of
// the graph, enters the start node and then moves along child edges,
// calling OnExit on the node it leaves and OnEnter on the node it enters.
//
// A hook picks the outgoing edge by setting Env.Next (scripts call
// next(i)); otherwise the first child in adjacency order is taken. A node
// without children ends the run.
package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/log"
	"github.com/wesen/stategraph/pkg/nodekind"
)

var (
	ErrNoStart   = errors.New("statemachine: graph has no start node")
	ErrStepLimit = errors.New("statemachine: step limit exceeded")
)

// DefaultMaxSteps bounds a run when Options.MaxSteps is zero.
const DefaultMaxSteps = 1000

type Options struct {
	MaxSteps int
	Logger   log.Logger
}

// Machine executes one clone of a graph step by step.
type Machine struct {
	graph   *graphmodel.Graph
	env     *nodekind.Env
	current *graphmodel.Node
	started bool
	done    bool
	err     error
	trace   []string

	StepCount int
	MaxSteps  int
	logger    log.Logger
}

// New clones g so the machine never shares nodes with an editor.
func New(g *graphmodel.Graph, opts Options) (*Machine, error) {
	clone := g.Clone()
	if err := clone.SortAll(); err != nil {
		return nil, err
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Machine{
		graph:    clone,
		env:      nodekind.NewEnv(),
		MaxSteps: opts.MaxSteps,
		logger:   log.Or(opts.Logger),
	}, nil
}

func (m *Machine) Graph() *graphmodel.Graph  { return m.graph }
func (m *Machine) Env() *nodekind.Env        { return m.env }
func (m *Machine) Current() *graphmodel.Node { return m.current }
func (m *Machine) Done() bool                { return m.done }
func (m *Machine) Err() error                { return m.err }

// Trace lists the IDs of entered nodes in order.
func (m *Machine) Trace() []string { return append([]string(nil), m.trace...) }

// Output is everything hooks printed so far.
func (m *Machine) Output() []string { return m.env.Output }

// Reset forgets all progress and variables.
func (m *Machine) Reset() {
	m.env = nodekind.NewEnv()
	m.current = nil
	m.started, m.done, m.err = false, false, nil
	m.trace = nil
	m.StepCount = 0
}

// Start enters the first Entry node, or the first node without parents.
func (m *Machine) Start(ctx context.Context) error {
	if m.started {
		return nil
	}
	m.started = true
	start := m.findStart()
	if start == nil {
		return m.fail(ErrNoStart)
	}
	m.logger.Debug("run %q starts at %s", m.graph.Name, start.Title())
	return m.enter(ctx, start)
}

func (m *Machine) findStart() *graphmodel.Node {
	var root *graphmodel.Node
	for _, n := range m.graph.Nodes() {
		if n.Kind == nodekind.KindEntry {
			return n
		}
		if root == nil && n.ParentCount() == 0 {
			root = n
		}
	}
	return root
}

// Step leaves the current node and enters the chosen child. The first call
// starts the run.
func (m *Machine) Step(ctx context.Context) error {
	if !m.started {
		return m.Start(ctx)
	}
	if m.done {
		return m.err
	}
	m.StepCount++
	if m.StepCount > m.MaxSteps {
		return m.fail(fmt.Errorf("%w (%d)", ErrStepLimit, m.MaxSteps))
	}

	cur := m.current
	if err := cur.OnExit(nodekind.WithEnv(ctx, m.env)); err != nil {
		return m.fail(fmt.Errorf("%s exit: %w", cur.Title(), err))
	}
	children := cur.Children()
	if len(children) == 0 {
		m.done = true
		m.logger.Debug("run %q finished at %s after %d steps", m.graph.Name, cur.Title(), m.StepCount)
		return nil
	}
	idx := 0
	if m.env.Next >= 0 {
		idx = m.env.Next
	}
	if idx >= len(children) {
		return m.fail(fmt.Errorf("%s: next(%d) but only %d children", cur.Title(), idx, len(children)))
	}
	return m.enter(ctx, m.graph.Node(children[idx]))
}

func (m *Machine) enter(ctx context.Context, n *graphmodel.Node) error {
	m.current = n
	m.trace = append(m.trace, n.ID)
	m.env.Next = -1
	if err := n.OnEnter(nodekind.WithEnv(ctx, m.env)); err != nil {
		return m.fail(fmt.Errorf("%s enter: %w", n.Title(), err))
	}
	return nil
}

func (m *Machine) fail(err error) error {
	m.done, m.err = true, err
	m.logger.Warn("run %q: %v", m.graph.Name, err)
	return err
}

// Run steps until the machine is done, fails or ctx is cancelled.
func (m *Machine) Run(ctx context.Context) error {
	for !m.done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Step(ctx); err != nil {
			return err
		}
	}
	return m.err
}
