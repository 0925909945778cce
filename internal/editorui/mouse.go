package editorui

import (
	"image"

	tea "charm.land/bubbletea/v2"
	"github.com/wesen/stategraph/pkg/graphview"
)

// handleMouse processes mouse events. Clicks only count inside the canvas;
// motion and release keep tracking a drag that left it.
func handleMouse(m Model, msg tea.MouseMsg, canvasRect image.Rectangle) (Model, tea.Cmd) {
	mouse := msg.Mouse()
	m.MouseX = mouse.X
	m.MouseY = mouse.Y
	world := m.toWorld(image.Pt(mouse.X, mouse.Y))

	switch msg.(type) {
	case tea.MouseMotionMsg:
		m.dragTo(world)

	case tea.MouseReleaseMsg:
		m.endDrag()

	case tea.MouseClickMsg:
		if mouse.Button == tea.MouseLeft && image.Pt(mouse.X, mouse.Y).In(canvasRect) {
			m = handleLeftClick(m, world)
		}
	}

	return m, nil
}

// dragTo moves the dragged node's view. Nothing is recorded yet.
func (m *Model) dragTo(world image.Point) {
	if m.drag.active {
		m.drag.pos = world.Sub(m.drag.off)
		m.session.View().DragTo(m.drag.id, m.drag.pos)
	}
}

// endDrag commits the final position as one undo step.
func (m *Model) endDrag() {
	if !m.drag.active {
		return
	}
	if m.drag.pos != m.drag.start {
		m.report("move", m.session.View().MoveNode(m.drag.id, m.drag.pos))
	}
	m.drag = dragState{}
}

// handleLeftClick dispatches on the current tool.
func handleLeftClick(m Model, world image.Point) Model {
	view := m.session.View()

	switch m.tool {
	case ToolSelect:
		nv := view.HitNode(world)
		if nv == nil {
			m.report("select", view.Select(""))
			break
		}
		m.report("select", view.Select(nv.NodeID))
		m.drag = dragState{
			active: true,
			id:     nv.NodeID,
			off:    world.Sub(nv.Pos()),
			start:  nv.Pos(),
			pos:    nv.Pos(),
		}

	case ToolAdd:
		pos := world.Sub(image.Pt(graphview.NodeWidth/2, 1))
		nv, err := view.CreateNode(m.addKind, pos)
		if !m.report("add "+m.addKind, err) {
			m.report("select", view.Select(nv.NodeID))
			m.print("added %s", nv.Title)
		}
		m.setTool(ToolSelect)

	case ToolConnect:
		p := pickPort(view, world, m.pending)
		if p == nil {
			m.pending = nil
			break
		}
		if m.pending == nil {
			m.pending = p
			break
		}
		from := m.pending
		m.pending = nil
		e, err := view.ProposeEdge(from, p)
		if !m.report("connect", err) {
			m.print("connected %s → %s", m.title(e.Key.Parent), m.title(e.Key.Child))
		}
		m.setTool(ToolSelect)

	case ToolPort:
		p := view.HitPort(world)
		if p == nil {
			m.print("click a port to remove it")
			break
		}
		m.report("remove port", view.RemovePort(p))
	}

	return m
}

// pickPort returns the port under world. On a node body it picks a port on
// the side the connection needs: an output to start, the opposite side of
// pending to finish.
func pickPort(view *graphview.View, world image.Point, pending *graphview.Port) *graphview.Port {
	if p := view.HitPort(world); p != nil {
		return p
	}
	nv := view.HitNode(world)
	if nv == nil {
		return nil
	}
	d := graphview.Output
	if pending != nil && pending.Direction == graphview.Output {
		d = graphview.Input
	}
	ports := nv.Ports(d)
	for _, p := range ports {
		if !p.Connected() {
			return p
		}
	}
	return ports[len(ports)-1]
}

func (m Model) title(id string) string {
	if g := m.session.Graph(); g != nil {
		if n := g.Node(id); n != nil {
			return n.Title()
		}
	}
	return id
}
