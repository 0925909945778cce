package editorui

import (
	"image"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"github.com/wesen/stategraph/pkg/graphview"
)

const panStep = 3

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		switch {
		case m.edit.open:
			return m.handleEditKeys(msg)
		case m.menu.open:
			return m.handleMenuKeys(msg)
		}
		return m.handleKeys(msg)

	case tea.MouseMsg:
		if m.edit.open || m.menu.open {
			return m, nil
		}
		return handleMouse(m, msg, m.canvasRect())

	case fileChangedMsg:
		m.reload()
		return m, waitForChange(m.watcher)

	case tickMsg:
		if !m.auto {
			return m, nil
		}
		m.stepRun()
		if m.run == nil || m.run.Done() {
			m.auto = false
			return m, nil
		}
		return m, tick(m.autoSpeed)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	return m.handleKey(msg.String())
}

func (m Model) handleKey(key string) (Model, tea.Cmd) {
	view := m.session.View()

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up":
		m.Cam.Y -= panStep
	case "down":
		m.Cam.Y += panStep
	case "left":
		m.Cam.X -= panStep
	case "right":
		m.Cam.X += panStep

	case "s":
		m.setTool(ToolSelect)
	case "a":
		m.openMenu()
	case "c":
		m.setTool(ToolConnect)
	case "p":
		m.setTool(ToolPort)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i, _ := strconv.Atoi(key)
		if kinds := m.session.Registry().Kinds(); i <= len(kinds) {
			m.addKind = kinds[i-1].Name
			m.setTool(ToolAdd)
		}

	case "[", "]":
		id := m.selectedID()
		if id == "" {
			m.print("select a node first")
			break
		}
		d := graphview.Input
		if key == "]" {
			d = graphview.Output
		}
		if _, err := view.AddPort(id, d); !m.report("add port", err) {
			m.print("added %s port", d)
		}

	case "d", "delete", "backspace":
		if id := m.selectedID(); id != "" {
			m.pending = nil
			m.report("delete", view.RemoveNode(id))
		}

	case "u", "ctrl+z":
		m.pending = nil
		if label := m.session.Stack().UndoLabel(); m.session.Undo() {
			m.print("undo %s", label)
		} else {
			m.print("nothing to undo")
		}
	case "r", "ctrl+y":
		m.pending = nil
		if label := m.session.Stack().RedoLabel(); m.session.Redo() {
			m.print("redo %s", label)
		} else {
			m.print("nothing to redo")
		}

	case "e", "enter":
		return m.openEdit()

	case "n":
		m.auto = false
		m.stepRun()
	case "g":
		m.auto = !m.auto
		if m.auto {
			return m, tick(m.autoSpeed)
		}
	case "x":
		m.resetRun()

	case "w":
		if !m.report("save", m.session.Save()) {
			m.print("saved %q", m.name)
		}

	case "esc", "escape":
		m.drag = dragState{}
		m.setTool(ToolSelect)
		m.report("select", view.Select(""))
	}

	return m, nil
}

// canvasRect is the canvas region in screen coordinates.
func (m Model) canvasRect() image.Rectangle {
	return screenLayout(m.Width, m.Height).get(regionCanvas)
}

// toWorld converts a screen cell inside the canvas to world coordinates.
func (m Model) toWorld(screen image.Point) image.Point {
	return screen.Sub(m.canvasRect().Min).Add(m.Cam)
}
