package editorui

import (
	"context"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/graphview"
	"github.com/wesen/stategraph/pkg/nodekind"
	"github.com/wesen/stategraph/pkg/store"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	s := graphview.NewSession(context.Background(), graphview.Options{})
	require.NoError(t, s.Open(graphmodel.New("test")))
	m := New(context.Background(), Options{Session: s})
	m.Width, m.Height = 120, 40
	return m
}

func addNode(t *testing.T, m Model, kind string, pos image.Point) *graphview.NodeView {
	t.Helper()
	nv, err := m.session.View().CreateNode(kind, pos)
	require.NoError(t, err)
	return nv
}

func lastLine(m Model) string {
	if len(m.console) == 0 {
		return ""
	}
	return m.console[len(m.console)-1]
}

func TestScreenLayout(t *testing.T) {
	l := screenLayout(120, 40)
	assert.Equal(t, image.Rect(0, 0, 120, 1), l.get(regionToolbar))
	assert.Equal(t, image.Rect(0, 39, 120, 40), l.get(regionFooter))
	assert.Equal(t, image.Rect(120-panelWidth, 1, 120, 39), l.get(regionPanel))
	assert.Equal(t, image.Rect(0, 1, 120-panelWidth, 39), l.get(regionCanvas))

	tiny := screenLayout(20, 2)
	assert.True(t, tiny.get(regionCanvas).Empty())
	assert.True(t, tiny.get(regionPanel).Empty())
}

func TestToWorldFollowsCamera(t *testing.T) {
	m := newTestModel(t)
	m.Cam = image.Pt(10, -5)
	assert.Equal(t, image.Pt(13, -2), m.toWorld(image.Pt(3, 4)))
}

func TestAddToolCreatesNode(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleKey("4")
	require.Equal(t, ToolAdd, m.Tool())
	assert.Equal(t, nodekind.KindScript, m.addKind)

	m = handleLeftClick(m, image.Pt(30, 10))
	g := m.session.Graph()
	require.Equal(t, 1, g.Len())
	n := g.Nodes()[0]
	assert.Equal(t, nodekind.KindScript, n.Kind)
	assert.Equal(t, image.Pt(30-graphview.NodeWidth/2, 9), n.Position)
	assert.Equal(t, n, m.session.Selected())
	assert.Equal(t, ToolSelect, m.Tool())
}

func TestKindMenu(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleKey("a")
	require.True(t, m.menu.open)
	kinds := m.session.Registry().Kinds()
	assert.Equal(t, nodekind.KindState, kinds[m.menu.cursor].Name)

	m = m.handleMenuKey("down")
	m = m.handleMenuKey("enter")
	assert.False(t, m.menu.open)
	assert.Equal(t, ToolAdd, m.Tool())
	assert.Equal(t, kinds[2].Name, m.addKind)
}

func TestDragCommitsOnRelease(t *testing.T) {
	m := newTestModel(t)
	nv := addNode(t, m, nodekind.KindState, image.Pt(10, 5))
	steps := len(m.session.Stack().Labels())

	m = handleLeftClick(m, image.Pt(12, 6))
	m.dragTo(image.Pt(20, 8))
	assert.Equal(t, image.Pt(18, 7), nv.Pos())
	assert.Equal(t, image.Pt(10, 5), m.session.Graph().Node(nv.NodeID).Position, "drag must not touch the model")
	assert.Len(t, m.session.Stack().Labels(), steps)

	m.endDrag()
	assert.Equal(t, image.Pt(18, 7), m.session.Graph().Node(nv.NodeID).Position)
	assert.Equal(t, "Move Node", m.session.Stack().UndoLabel())
	assert.False(t, m.drag.active)
}

func TestClickWithoutMoveRecordsNothing(t *testing.T) {
	m := newTestModel(t)
	addNode(t, m, nodekind.KindState, image.Pt(10, 5))
	steps := len(m.session.Stack().Labels())
	m = handleLeftClick(m, image.Pt(12, 6))
	m.endDrag()
	assert.Len(t, m.session.Stack().Labels(), steps)
}

func TestConnectClickClick(t *testing.T) {
	m := newTestModel(t)
	a := addNode(t, m, nodekind.KindState, image.Pt(0, 0))
	b := addNode(t, m, nodekind.KindState, image.Pt(40, 0))

	m, _ = m.handleKey("c")
	m = handleLeftClick(m, a.Anchor(a.Outputs()[0]))
	require.NotNil(t, m.pending)
	assert.Equal(t, graphview.Output, m.pending.Direction)

	m = handleLeftClick(m, image.Pt(45, 1))
	assert.Nil(t, m.pending)
	assert.Equal(t, ToolSelect, m.Tool())
	g := m.session.Graph()
	assert.True(t, g.Node(a.NodeID).HasChild(b.NodeID))
	assert.Contains(t, lastLine(m), "connected")

	m, _ = m.handleKey("c")
	m = handleLeftClick(m, image.Pt(5, 1))
	m = handleLeftClick(m, b.Anchor(b.Inputs()[0]))
	assert.True(t, strings.HasPrefix(lastLine(m), "✗ connect"), lastLine(m))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestConnectMissCancels(t *testing.T) {
	m := newTestModel(t)
	a := addNode(t, m, nodekind.KindState, image.Pt(0, 0))
	m, _ = m.handleKey("c")
	m = handleLeftClick(m, a.Anchor(a.Outputs()[0]))
	m = handleLeftClick(m, image.Pt(70, 30))
	assert.Nil(t, m.pending)
	assert.Equal(t, 0, m.session.Graph().EdgeCount())
}

func TestPortKeysAndPortTool(t *testing.T) {
	m := newTestModel(t)
	nv := addNode(t, m, nodekind.KindState, image.Pt(0, 0))

	m, _ = m.handleKey("]")
	assert.Contains(t, lastLine(m), "select a node first")

	require.NoError(t, m.session.View().Select(nv.NodeID))
	m, _ = m.handleKey("]")
	m, _ = m.handleKey("[")
	require.Len(t, nv.Outputs(), 2)
	require.Len(t, nv.Inputs(), 2)

	m, _ = m.handleKey("p")
	m = handleLeftClick(m, nv.Anchor(nv.Outputs()[1]))
	assert.Len(t, nv.Outputs(), 1)

	m = handleLeftClick(m, nv.Anchor(nv.Outputs()[0]))
	assert.Len(t, nv.Outputs(), 1)
	assert.True(t, strings.HasPrefix(lastLine(m), "✗ remove port"), lastLine(m))
}

func TestUndoRedoAndDeleteKeys(t *testing.T) {
	m := newTestModel(t)
	nv := addNode(t, m, nodekind.KindState, image.Pt(0, 0))
	g := m.session.Graph()

	m, _ = m.handleKey("u")
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, "undo Create Node", lastLine(m))
	m, _ = m.handleKey("u")
	assert.Equal(t, "nothing to undo", lastLine(m))

	m, _ = m.handleKey("r")
	require.Equal(t, 1, g.Len())

	require.NoError(t, m.session.View().Select(nv.NodeID))
	m, _ = m.handleKey("d")
	assert.Equal(t, 0, g.Len())
	assert.Nil(t, m.session.Selected())
}

func TestEditSubmit(t *testing.T) {
	m := newTestModel(t)
	nv := addNode(t, m, nodekind.KindLog, image.Pt(0, 0))

	m, _ = m.handleKey("e")
	assert.False(t, m.edit.open)

	require.NoError(t, m.session.View().Select(nv.NodeID))
	m, _ = m.handleKey("e")
	require.True(t, m.edit.open)
	require.Equal(t, []string{"label", "message"}, m.edit.keys)

	m.edit.inputs[0].SetValue("Greeter")
	m.edit.inputs[1].SetValue("  hello  ")
	m = m.submitEdit()

	assert.False(t, m.edit.open)
	n := m.session.Graph().Node(nv.NodeID)
	assert.Equal(t, "Greeter", n.Title())
	assert.Equal(t, "hello", n.Properties()["message"])
	assert.Equal(t, "Greeter", m.session.View().Node(nv.NodeID).Title)
	assert.Equal(t, "Edit Node", m.session.Stack().UndoLabel())
}

func TestPropertyKeysLabelFirst(t *testing.T) {
	keys := propertyKeys(map[string]string{"exit": "", "label": "", "enter": ""})
	assert.Equal(t, []string{"label", "enter", "exit"}, keys)
}

func TestStepRun(t *testing.T) {
	m := newTestModel(t)
	entry := addNode(t, m, nodekind.KindEntry, image.Pt(0, 0))
	logNode := addNode(t, m, nodekind.KindLog, image.Pt(40, 0))
	require.NoError(t, m.session.View().SetProperties(logNode.NodeID, map[string]string{"message": "hello"}))
	_, err := m.session.View().ProposeEdge(entry.Outputs()[0], logNode.Inputs()[0])
	require.NoError(t, err)

	m, _ = m.handleKey("n")
	assert.Equal(t, entry.NodeID, m.execID())
	m, _ = m.handleKey("n")
	assert.Equal(t, logNode.NodeID, m.execID())
	assert.Equal(t, "  hello", lastLine(m))
	m, _ = m.handleKey("n")
	assert.True(t, m.run.Done())
	assert.Contains(t, lastLine(m), "done after")

	m, _ = m.handleKey("n")
	assert.Equal(t, entry.NodeID, m.execID(), "a finished run restarts")

	m, _ = m.handleKey("x")
	assert.Nil(t, m.run)
	assert.Empty(t, m.execID())
}

func TestReloadFromStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	st := store.NewYAMLFile(path, nodekind.Default())
	ctx := context.Background()

	s := graphview.NewSession(ctx, graphview.Options{Persister: st})
	require.NoError(t, s.Open(graphmodel.New("flow")))
	m := New(ctx, Options{Session: s, Store: st})
	addNode(t, m, nodekind.KindState, image.Pt(0, 0))
	lines := len(m.console)

	m.reload()
	assert.Len(t, m.console, lines, "own save must not reload")

	other, err := st.Load(ctx, "flow")
	require.NoError(t, err)
	f, err := nodekind.Default().Factory(nodekind.KindLog)
	require.NoError(t, err)
	_, err = other.CreateNode(f, image.Pt(0, 10))
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, other))

	m.reload()
	assert.Equal(t, 2, m.session.Graph().Len())
	assert.Equal(t, 2, len(m.session.View().Nodes()))
	assert.Contains(t, lastLine(m), "reloaded")
	assert.False(t, m.session.Stack().CanUndo())
}

func TestDrawScene(t *testing.T) {
	m := newTestModel(t)
	a := addNode(t, m, nodekind.KindState, image.Pt(1, 1))
	b := addNode(t, m, nodekind.KindLog, image.Pt(40, 1))
	_, err := m.session.View().ProposeEdge(a.Outputs()[0], b.Inputs()[0])
	require.NoError(t, err)

	buf := drawScene(m, image.Pt(80, 10))
	out := buf.String()
	assert.Contains(t, out, "[State]")
	assert.Contains(t, out, "[Log]")

	outAnchor := a.Anchor(a.Outputs()[0])
	inAnchor := b.Anchor(b.Inputs()[0])
	assert.Equal(t, glyphPortBound, buf.At(outAnchor.X, outAnchor.Y).Ch)
	assert.Equal(t, glyphPortBound, buf.At(inAnchor.X, inAnchor.Y).Ch)
	free := a.Anchor(a.Inputs()[0])
	assert.Equal(t, glyphPortFree, buf.At(free.X, free.Y).Ch)
	assert.Equal(t, '►', buf.At(inAnchor.X-1, inAnchor.Y).Ch)

	m.Cam = image.Pt(100, 0)
	assert.NotContains(t, drawScene(m, image.Pt(80, 10)).String(), "[State]")
}
