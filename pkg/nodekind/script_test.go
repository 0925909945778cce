package nodekind

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wesen/stategraph/pkg/graphmodel"
)

func scriptNode(s *Script) *graphmodel.Node {
	n := graphmodel.NewNode(KindScript, s)
	n.ID = "n1"
	return n
}

func TestScriptVarsRoundTrip(t *testing.T) {
	env := NewEnv()
	env.Vars["i"] = int64(1)
	ctx := WithEnv(context.Background(), env)

	s := NewScript("sum = 0; i = i + 1; print('i is ' + str(i))", "")
	require.NoError(t, s.OnEnter(ctx, scriptNode(s)))

	assert.Equal(t, int64(2), env.Vars["i"])
	assert.Equal(t, int64(0), env.Vars["sum"])
	assert.Equal(t, []string{"i is 2"}, env.Output)
	assert.NotContains(t, env.Vars, "print")
}

func TestScriptNext(t *testing.T) {
	env := NewEnv()
	ctx := WithEnv(context.Background(), env)

	s := NewScript("", "next(1)")
	require.NoError(t, s.OnEnter(ctx, scriptNode(s)))
	assert.Equal(t, -1, env.Next)
	require.NoError(t, s.OnExit(ctx, scriptNode(s)))
	assert.Equal(t, 1, env.Next)
}

func TestScriptSeesNode(t *testing.T) {
	env := NewEnv()
	ctx := WithEnv(context.Background(), env)

	s := NewScript("print(node.id, node.kind)", "")
	require.NoError(t, s.OnEnter(ctx, scriptNode(s)))
	assert.Equal(t, []string{"n1 Script"}, env.Output)
}

func TestScriptError(t *testing.T) {
	s := NewScript("throw new Error('boom')", "")
	err := s.OnEnter(WithEnv(context.Background(), NewEnv()), scriptNode(s))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestScriptCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(WithEnv(context.Background(), NewEnv()))
	cancel()
	s := NewScript("while (true) {}", "")
	assert.Error(t, s.OnEnter(ctx, scriptNode(s)))
}
