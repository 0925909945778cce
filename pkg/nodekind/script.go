package nodekind

import (
	"context"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/wesen/stategraph/pkg/graphmodel"
)

// reserved globals installed for every script run; they are not copied
// back into Env.Vars.
var reserved = map[string]bool{"print": true, "str": true, "next": true, "node": true}

// Script runs JavaScript from its "enter" and "exit" properties.
//
// Run variables live in script globals: every Env var is visible as a
// global before the hook runs, and every global the hook leaves behind is
// copied back. print(...) appends to the run output and next(i) picks the
// child the runtime moves to.
type Script struct {
	*props
}

// NewScript returns a Script with the given hook sources.
func NewScript(enter, exit string) *Script {
	s := &Script{props: newProps(KindScript, "label", "enter", "exit")}
	s.values["enter"] = enter
	s.values["exit"] = exit
	return s
}

func (s *Script) OnEnter(ctx context.Context, n *graphmodel.Node) error {
	return s.run(ctx, n, "enter")
}

func (s *Script) OnExit(ctx context.Context, n *graphmodel.Node) error {
	return s.run(ctx, n, "exit")
}

func (s *Script) CloneBehavior() graphmodel.Behavior {
	return &Script{props: s.props.CloneBehavior().(*props)}
}

func (s *Script) run(ctx context.Context, n *graphmodel.Node, hook string) error {
	code := strings.TrimSpace(s.values[hook])
	if code == "" {
		return nil
	}
	env := EnvFrom(ctx)
	rt := goja.New()

	for k, v := range env.Vars {
		if err := rt.Set(k, v); err != nil {
			return fmt.Errorf("%s %s: set %s: %w", s.DisplayName(), hook, k, err)
		}
	}
	_ = rt.Set("print", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		env.Print(strings.Join(parts, " "))
		return goja.Undefined()
	})
	_ = rt.Set("str", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return rt.ToValue("")
		}
		return rt.ToValue(call.Arguments[0].String())
	})
	_ = rt.Set("next", func(i int) { env.Next = i })
	_ = rt.Set("node", map[string]any{
		"id":    n.ID,
		"kind":  n.Kind,
		"title": s.DisplayName(),
	})

	// Interrupt the VM when the run is cancelled.
	stop := context.AfterFunc(ctx, func() { rt.Interrupt(ctx.Err()) })
	defer stop()

	if _, err := rt.RunString(code); err != nil {
		return fmt.Errorf("%s %s: %w", s.DisplayName(), hook, err)
	}

	global := rt.GlobalObject()
	for _, k := range global.Keys() {
		if reserved[k] {
			continue
		}
		env.Vars[k] = global.Get(k).Export()
	}
	return nil
}
