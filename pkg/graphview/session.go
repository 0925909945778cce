// Package graphview keeps an editable view of a graphmodel.Graph in sync
// with the model. Node views carry ports, and edge views bind one output
// port to one input port. The binding is a pure function of adjacency
// order: the edge P→C uses P's output at C's index in P's children and C's
// input at P's index in C's parents.
//
// A Session ties a bound graph to a node-kind registry, an undo stack, a
// persister and a selection listener. Every structural gesture on the View
// is recorded through the Bridge so that it can be undone; undo and redo
// trigger a full rebuild followed by a save.
package graphview

import (
	"context"

	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/log"
	"github.com/wesen/stategraph/pkg/nodekind"
	"github.com/wesen/stategraph/pkg/undo"
)

// Persister stores the bound graph after each committed edit.
type Persister interface {
	Save(ctx context.Context, g *graphmodel.Graph) error
}

// SelectionListener is told about selection changes. n is nil when the
// selection was cleared.
type SelectionListener func(n *graphmodel.Node)

// Options configures a Session. Zero values are usable.
type Options struct {
	Registry     *nodekind.Registry
	Persister    Persister
	Logger       log.Logger
	OnSelect     SelectionListener
	HistoryLimit int
}

// Session is the editing context for one graph at a time.
type Session struct {
	ctx       context.Context
	registry  *nodekind.Registry
	persister Persister
	logger    log.Logger
	onSelect  SelectionListener

	stack    *undo.Stack
	bridge   *Bridge
	view     *View
	graph    *graphmodel.Graph
	selected string
}

// NewSession builds a session with nothing bound. ctx is used for saves.
func NewSession(ctx context.Context, opts Options) *Session {
	if opts.Registry == nil {
		opts.Registry = nodekind.Default()
	}
	s := &Session{
		ctx:       ctx,
		registry:  opts.Registry,
		persister: opts.Persister,
		logger:    log.Or(opts.Logger),
		onSelect:  opts.OnSelect,
		stack:     undo.New(),
	}
	s.stack.Limit = opts.HistoryLimit
	s.bridge = NewBridge(s.stack)
	s.view = newView(s)
	s.stack.OnUndoRedo(s.afterUndoRedo)
	return s
}

// Open binds g, drops any previous history, and builds the view.
func (s *Session) Open(g *graphmodel.Graph) error {
	s.Close()
	if err := g.Validate(); err != nil {
		return err
	}
	s.graph = g
	s.logger.Info("opened graph %q (%d nodes, %d edges)", g.Name, g.Len(), g.EdgeCount())
	return s.view.Rebuild()
}

// Close unbinds the graph and clears the view and history.
func (s *Session) Close() {
	if s.graph == nil {
		return
	}
	s.Select("")
	s.graph = nil
	s.stack.Clear()
	s.view.reset()
}

func (s *Session) Graph() *graphmodel.Graph        { return s.graph }
func (s *Session) View() *View                     { return s.view }
func (s *Session) Stack() *undo.Stack              { return s.stack }
func (s *Session) Bridge() *Bridge                 { return s.bridge }
func (s *Session) Registry() *nodekind.Registry    { return s.registry }
func (s *Session) Logger() log.Logger              { return s.logger }
func (s *Session) SetPersister(p Persister)        { s.persister = p }
func (s *Session) SetOnSelect(l SelectionListener) { s.onSelect = l }

// Selected returns the selected node, or nil.
func (s *Session) Selected() *graphmodel.Node {
	if s.graph == nil || s.selected == "" {
		return nil
	}
	return s.graph.Node(s.selected)
}

// Select sets the selection and notifies the listener.
func (s *Session) Select(id string) {
	s.selected = id
	if s.onSelect != nil {
		s.onSelect(s.Selected())
	}
}

// Undo reverts the latest command. The view is rebuilt by the listener.
func (s *Session) Undo() bool { return s.stack.Undo() }

// Redo reapplies the latest undone command.
func (s *Session) Redo() bool { return s.stack.Redo() }

// Save writes the bound graph through the persister.
func (s *Session) Save() error {
	if s.graph == nil {
		return ErrNoGraph
	}
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(s.ctx, s.graph)
}

// save is the post-edit hook. Failures are logged, not returned.
func (s *Session) save() {
	if s.graph == nil {
		return
	}
	if err := s.Save(); err != nil {
		s.logger.Warn("save %q: %v", s.graph.Name, err)
	}
}

func (s *Session) afterUndoRedo(e undo.Event) {
	if e.Err != nil {
		s.logger.Error("%s %q: %v", e.Op, e.Label, e.Err)
	}
	if s.graph == nil {
		return
	}
	if err := s.view.Rebuild(); err != nil {
		s.logger.Error("rebuild after %s: %v", e.Op, err)
	}
	if s.selected != "" && s.graph.Node(s.selected) == nil {
		s.Select("")
	}
	s.logger.Debug("%s %q", e.Op, e.Label)
	s.save()
}
