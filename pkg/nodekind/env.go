package nodekind

import "context"

// Env is the mutable run state hooks read and write. A runtime creates one
// per run and places it in the context passed to OnEnter and OnExit.
type Env struct {
	Vars   map[string]any
	Output []string

	// Next is the child index chosen by a hook, or -1 for the default.
	Next int
}

// NewEnv returns an empty Env with no child chosen.
func NewEnv() *Env {
	return &Env{Vars: make(map[string]any), Next: -1}
}

// Print appends a line to the run output.
func (e *Env) Print(line string) {
	e.Output = append(e.Output, line)
}

type envKey struct{}

// WithEnv returns a context carrying env.
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// EnvFrom returns the Env in ctx, or a throwaway one.
func EnvFrom(ctx context.Context) *Env {
	if env, ok := ctx.Value(envKey{}).(*Env); ok && env != nil {
		return env
	}
	return NewEnv()
}
