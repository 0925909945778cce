package undo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	key   string
	value int
}

type counterSnap struct {
	c     *counter
	value int
}

func (s counterSnap) Restore() error { s.c.value = s.value; return nil }

func (c *counter) Key() string       { return c.key }
func (c *counter) Capture() Snapshot { return counterSnap{c: c, value: c.value} }

func TestUndoRedo(t *testing.T) {
	s := New()
	c := &counter{key: "c"}

	s.Begin("inc")
	require.NoError(t, s.Record(c))
	c.value = 1
	require.NoError(t, s.Commit())

	var events []Event
	s.OnUndoRedo(func(e Event) { events = append(events, e) })

	assert.Equal(t, "inc", s.UndoLabel())
	assert.Empty(t, s.RedoLabel())
	assert.True(t, s.Undo())
	assert.Equal(t, "inc", s.RedoLabel())
	assert.Equal(t, 0, c.value)
	assert.True(t, s.Redo())
	assert.Equal(t, 1, c.value)

	require.Len(t, events, 2)
	assert.Equal(t, OpUndo, events[0].Op)
	assert.Equal(t, OpRedo, events[1].Op)
	assert.Equal(t, "inc", events[0].Label)
}

func TestFirstCaptureWins(t *testing.T) {
	s := New()
	c := &counter{key: "c"}

	s.Begin("two steps")
	require.NoError(t, s.Record(c))
	c.value = 5
	require.NoError(t, s.Record(c))
	c.value = 9
	require.NoError(t, s.Commit())

	s.Undo()
	assert.Equal(t, 0, c.value)
	s.Redo()
	assert.Equal(t, 9, c.value)
}

func TestNestedBeginIsOneStep(t *testing.T) {
	s := New()
	a := &counter{key: "a"}
	b := &counter{key: "b"}

	s.Begin("outer")
	require.NoError(t, s.Record(a))
	a.value = 1
	s.Begin("inner")
	require.NoError(t, s.Record(b))
	b.value = 2
	require.NoError(t, s.Commit())
	assert.True(t, s.Open(), "inner commit must not close the outer command")
	require.NoError(t, s.Commit())

	assert.Equal(t, []string{"outer"}, s.Labels())
	s.Undo()
	assert.Equal(t, 0, a.value)
	assert.Equal(t, 0, b.value)
}

func TestCommitWithoutBegin(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Commit(), ErrNoCommand)
	assert.ErrorIs(t, s.Record(&counter{}), ErrNoCommand)
}

func TestEmptyCommandNotPushed(t *testing.T) {
	s := New()
	s.Begin("nothing")
	require.NoError(t, s.Commit())
	assert.False(t, s.CanUndo())
}

func TestNewCommitDropsRedo(t *testing.T) {
	s := New()
	c := &counter{key: "c"}
	for i := 1; i <= 2; i++ {
		s.Begin("set")
		require.NoError(t, s.Record(c))
		c.value = i
		require.NoError(t, s.Commit())
	}
	s.Undo()
	assert.True(t, s.CanRedo())

	s.Begin("set")
	require.NoError(t, s.Record(c))
	c.value = 7
	require.NoError(t, s.Commit())
	assert.False(t, s.CanRedo())
}

func TestLimit(t *testing.T) {
	s := &Stack{Limit: 2}
	c := &counter{key: "c"}
	for i := 1; i <= 3; i++ {
		s.Begin("set")
		require.NoError(t, s.Record(c))
		c.value = i
		require.NoError(t, s.Commit())
	}
	assert.Len(t, s.Labels(), 2)
	s.Undo()
	s.Undo()
	assert.False(t, s.Undo())
	assert.Equal(t, 1, c.value)
}

func TestUndoRefusedWhileOpen(t *testing.T) {
	s := New()
	c := &counter{key: "c"}
	s.Begin("a")
	require.NoError(t, s.Record(c))
	require.NoError(t, s.Commit())
	s.Begin("b")
	assert.False(t, s.Undo())
}
