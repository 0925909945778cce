// Package undo is a command stack for reversible edits. A command records
// the before-state of every subject touched while it was open and, on
// commit, their after-state. Undo restores the former, redo the latter.
//
// Commands nest: Begin inside an open command joins it, so a composite
// gesture commits as one step.
package undo

import "errors"

// DefaultLimit bounds the undo history when Stack.Limit is zero.
const DefaultLimit = 100

// ErrNoCommand is returned by Record and Commit outside Begin.
var ErrNoCommand = errors.New("undo: no open command")

// Snapshot is a captured state that can be written back.
type Snapshot interface {
	Restore() error
}

// Subject is anything whose state can be captured. Key identifies the
// subject so that a command captures it only once.
type Subject interface {
	Key() string
	Capture() Snapshot
}

// Op says which direction a notification is for.
type Op int

const (
	OpUndo Op = iota
	OpRedo
)

func (o Op) String() string {
	if o == OpRedo {
		return "redo"
	}
	return "undo"
}

// Event is delivered to OnUndoRedo listeners after state was restored.
type Event struct {
	Op    Op
	Label string
	Err   error
}

// Command is one undoable step.
type Command struct {
	Label    string
	subjects []Subject
	before   []Snapshot
	after    []Snapshot
	seen     map[string]bool
}

// Stack holds done and undone commands.
type Stack struct {
	Limit int

	done      []*Command
	undone    []*Command
	open      *Command
	depth     int
	listeners []func(Event)
}

// New creates an empty stack.
func New() *Stack {
	return &Stack{}
}

// Begin opens a command, or joins the one already open.
func (s *Stack) Begin(label string) {
	if s.depth == 0 {
		s.open = &Command{Label: label, seen: make(map[string]bool)}
	}
	s.depth++
}

// Record captures the before-state of subjects not yet seen by the open
// command.
func (s *Stack) Record(subjects ...Subject) error {
	if s.open == nil {
		return ErrNoCommand
	}
	for _, sub := range subjects {
		if sub == nil || s.open.seen[sub.Key()] {
			continue
		}
		s.open.seen[sub.Key()] = true
		s.open.subjects = append(s.open.subjects, sub)
		s.open.before = append(s.open.before, sub.Capture())
	}
	return nil
}

// Commit closes one level of nesting. At the outermost level the after
// state is captured and the command is pushed; the redo history is dropped.
func (s *Stack) Commit() error {
	if s.open == nil {
		return ErrNoCommand
	}
	s.depth--
	if s.depth > 0 {
		return nil
	}
	cmd := s.open
	s.open = nil
	if len(cmd.subjects) == 0 {
		return nil
	}
	cmd.after = make([]Snapshot, len(cmd.subjects))
	for i, sub := range cmd.subjects {
		cmd.after[i] = sub.Capture()
	}
	s.done = append(s.done, cmd)
	if limit := s.limit(); len(s.done) > limit {
		s.done = s.done[len(s.done)-limit:]
	}
	s.undone = nil
	return nil
}

// Open reports whether a command is being recorded.
func (s *Stack) Open() bool { return s.open != nil }

func (s *Stack) CanUndo() bool { return len(s.done) > 0 }
func (s *Stack) CanRedo() bool { return len(s.undone) > 0 }

// Labels returns the labels of done commands, oldest first.
func (s *Stack) Labels() []string {
	labels := make([]string, len(s.done))
	for i, c := range s.done {
		labels[i] = c.Label
	}
	return labels
}

// UndoLabel names the command Undo would revert, or "".
func (s *Stack) UndoLabel() string {
	if len(s.done) == 0 {
		return ""
	}
	return s.done[len(s.done)-1].Label
}

// RedoLabel names the command Redo would reapply, or "".
func (s *Stack) RedoLabel() string {
	if len(s.undone) == 0 {
		return ""
	}
	return s.undone[len(s.undone)-1].Label
}

// Undo restores the before-state of the latest command. It returns false
// when there is nothing to undo or a command is open.
func (s *Stack) Undo() bool {
	if s.open != nil || len(s.done) == 0 {
		return false
	}
	cmd := s.done[len(s.done)-1]
	s.done = s.done[:len(s.done)-1]
	err := restoreAll(cmd.before, true)
	s.undone = append(s.undone, cmd)
	s.notify(Event{Op: OpUndo, Label: cmd.Label, Err: err})
	return true
}

// Redo restores the after-state of the latest undone command.
func (s *Stack) Redo() bool {
	if s.open != nil || len(s.undone) == 0 {
		return false
	}
	cmd := s.undone[len(s.undone)-1]
	s.undone = s.undone[:len(s.undone)-1]
	err := restoreAll(cmd.after, false)
	s.done = append(s.done, cmd)
	s.notify(Event{Op: OpRedo, Label: cmd.Label, Err: err})
	return true
}

// Clear drops all history. An open command is discarded.
func (s *Stack) Clear() {
	s.done, s.undone = nil, nil
	s.open, s.depth = nil, 0
}

// OnUndoRedo registers fn to run after every undo and redo.
func (s *Stack) OnUndoRedo(fn func(Event)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Stack) notify(e Event) {
	for _, fn := range s.listeners {
		fn(e)
	}
}

func (s *Stack) limit() int {
	if s.Limit > 0 {
		return s.Limit
	}
	return DefaultLimit
}

func restoreAll(snaps []Snapshot, reverse bool) error {
	var errs []error
	for i := range snaps {
		idx := i
		if reverse {
			idx = len(snaps) - 1 - i
		}
		if err := snaps[idx].Restore(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
