package nodekind

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wesen/stategraph/pkg/graphmodel"
)

func TestDefaultKindsSortedForMenu(t *testing.T) {
	r := Default()
	var paths []string
	for _, k := range r.Kinds() {
		paths = append(paths, k.MenuPath())
	}
	assert.Equal(t, []string{"Entry", "State", "Action/Log", "Action/Script"}, paths)
}

func TestFactoryUnknownKind(t *testing.T) {
	r := Default()
	_, err := r.Factory("Nope")
	assert.ErrorIs(t, err, graphmodel.ErrInvalidFactory)
	_, err = r.Instantiate("Nope")
	assert.ErrorIs(t, err, graphmodel.ErrInvalidFactory)
}

func TestFactoryBuildsNode(t *testing.T) {
	r := Default()
	f, err := r.Factory(KindState)
	require.NoError(t, err)

	g := graphmodel.New("g")
	n, err := g.CreateNode(f, image.Pt(2, 3))
	require.NoError(t, err)
	assert.Equal(t, KindState, n.Kind)
	assert.Equal(t, "State", n.Title())
}

func TestNilConstructorIsInvalidFactory(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Kind{Name: "Broken", New: func() graphmodel.Behavior { return nil }}))
	f, err := r.Factory("Broken")
	require.NoError(t, err)

	g := graphmodel.New("g")
	_, err = g.CreateNode(f, image.Pt(0, 0))
	assert.ErrorIs(t, err, graphmodel.ErrInvalidFactory)
	assert.Equal(t, 0, g.Len())
}

func TestRegisterRejectsIncompleteKind(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Kind{Name: "x"}))
	assert.Error(t, r.Register(Kind{New: func() graphmodel.Behavior { return nil }}))
}

func TestPropertiesAndClone(t *testing.T) {
	b, err := Default().Instantiate(KindLog)
	require.NoError(t, err)
	cfg := b.(graphmodel.Configurable)

	require.NoError(t, cfg.SetProperties(map[string]string{"label": "Hello", "message": "hi"}))
	assert.Equal(t, "Hello", b.DisplayName())
	assert.Error(t, cfg.SetProperties(map[string]string{"bogus": "x"}))

	clone := b.(graphmodel.Cloner).CloneBehavior()
	require.NoError(t, cfg.SetProperties(map[string]string{"message": "changed"}))
	assert.Equal(t, "hi", clone.(graphmodel.Configurable).Properties()["message"])
}

func TestStateAndLogHooks(t *testing.T) {
	env := NewEnv()
	ctx := WithEnv(context.Background(), env)
	r := Default()

	st, _ := r.Instantiate(KindState)
	require.NoError(t, st.OnEnter(ctx, nil))
	require.NoError(t, st.OnExit(ctx, nil))

	lg, _ := r.Instantiate(KindLog)
	require.NoError(t, lg.(graphmodel.Configurable).SetProperties(map[string]string{"message": "logged"}))
	require.NoError(t, lg.OnEnter(ctx, nil))

	assert.Equal(t, []string{"State on enter", "State on exit", "logged"}, env.Output)
}
