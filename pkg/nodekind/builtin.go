package nodekind

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/wesen/stategraph/pkg/graphmodel"
)

// Built-in kind names.
const (
	KindEntry  = "Entry"
	KindState  = "State"
	KindLog    = "Log"
	KindScript = "Script"
)

// Builtins returns the kinds every registry starts with.
func Builtins() []Kind {
	return []Kind{
		{Name: KindEntry, New: func() graphmodel.Behavior { return newProps(KindEntry, "label") }},
		{Name: KindState, New: func() graphmodel.Behavior { return &State{props: newProps(KindState, "label")} }},
		{Name: KindLog, Category: "Action", New: func() graphmodel.Behavior { return &Log{props: newProps(KindLog, "label", "message")} }},
		{Name: KindScript, Category: "Action", New: func() graphmodel.Behavior { return NewScript("", "") }},
	}
}

// props is a fixed set of string properties. It is also the whole
// behavior of the Entry kind, which only marks where a run starts.
type props struct {
	kind   string
	keys   []string
	values map[string]string
}

func newProps(kind string, keys ...string) *props {
	return &props{kind: kind, keys: keys, values: make(map[string]string)}
}

func (p *props) DisplayName() string {
	if l := p.values["label"]; l != "" {
		return l
	}
	return p.kind
}

func (p *props) OnEnter(context.Context, *graphmodel.Node) error { return nil }
func (p *props) OnExit(context.Context, *graphmodel.Node) error  { return nil }

// Properties returns every known key, empty values included.
func (p *props) Properties() map[string]string {
	out := make(map[string]string, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.values[k]
	}
	return out
}

func (p *props) SetProperties(in map[string]string) error {
	for k := range in {
		if !slices.Contains(p.keys, k) {
			return fmt.Errorf("%s: unknown property %q", p.kind, k)
		}
	}
	for k, v := range in {
		p.values[k] = v
	}
	return nil
}

func (p *props) CloneBehavior() graphmodel.Behavior {
	return &props{kind: p.kind, keys: p.keys, values: maps.Clone(p.values)}
}

// State announces entry and exit on the run output.
type State struct {
	*props
}

func (s *State) OnEnter(ctx context.Context, n *graphmodel.Node) error {
	EnvFrom(ctx).Print(fmt.Sprintf("%s on enter", s.DisplayName()))
	return nil
}

func (s *State) OnExit(ctx context.Context, n *graphmodel.Node) error {
	EnvFrom(ctx).Print(fmt.Sprintf("%s on exit", s.DisplayName()))
	return nil
}

func (s *State) CloneBehavior() graphmodel.Behavior {
	return &State{props: s.props.CloneBehavior().(*props)}
}

// Log prints its message property when entered.
type Log struct {
	*props
}

func (l *Log) OnEnter(ctx context.Context, n *graphmodel.Node) error {
	if msg := l.values["message"]; msg != "" {
		EnvFrom(ctx).Print(msg)
	}
	return nil
}

func (l *Log) CloneBehavior() graphmodel.Behavior {
	return &Log{props: l.props.CloneBehavior().(*props)}
}
