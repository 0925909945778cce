package editorui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// statusLine is the toolbar text for the current tool.
func (m Model) statusLine() string {
	tool := m.tool.String()
	switch {
	case m.tool == ToolAdd:
		tool = fmt.Sprintf("ADD [%s] → click canvas", m.addKind)
	case m.pending != nil:
		tool = fmt.Sprintf("CONNECT from %s %s → click target", m.title(m.pending.Owner), m.pending.Direction)
	case m.tool == ToolConnect:
		tool = "CONNECT → click a port"
	case m.tool == ToolPort:
		tool = "PORT → click a port to remove"
	}
	name := "(no graph)"
	if g := m.session.Graph(); g != nil {
		name = g.Name
	}
	return fmt.Sprintf(" stategraph │ %s │ %s │ [a]dd [c]onnect [p]ort [u]ndo [r]edo [q]uit", name, tool)
}

func (m Model) footerLine() string {
	sel := "none"
	if n := m.session.Selected(); n != nil {
		sel = n.Title()
	}
	nodes, edges := 0, 0
	if g := m.session.Graph(); g != nil {
		nodes, edges = g.Len(), g.EdgeCount()
	}
	run := "idle"
	if m.run != nil {
		run = fmt.Sprintf("step %d", m.run.StepCount)
		if m.run.Done() {
			run += " done"
		}
		if m.auto {
			run += " auto"
		}
	}
	return fmt.Sprintf(" Mouse (%d,%d)  Cam (%d,%d)  Sel: %s  Nodes: %d  Edges: %d  Undo: %d  Run: %s",
		m.MouseX, m.MouseY, m.Cam.X, m.Cam.Y, sel, nodes, edges, len(m.session.Stack().Labels()), run)
}

// View implements tea.Model.
func (m Model) View() tea.View {
	if m.Width == 0 || m.Height == 0 {
		return tea.NewView("")
	}
	l := screenLayout(m.Width, m.Height)
	canvasRect := l.get(regionCanvas)
	panelRect := l.get(regionPanel)

	layers := []*lipgloss.Layer{
		fillLayer(l.get(regionToolbar), toolbarStyle, "toolbar-bg", 0),
		fillLayer(canvasRect, canvasBG, "canvas-bg", 0),
		fillLayer(l.get(regionFooter), footerStyle, "footer-bg", 0),
		fillLayer(panelRect, panelLineStyle, "panel-bg", 0),
		barLayer(m.statusLine(), m.Width, l.get(regionToolbar).Min.Y, toolbarStyle, "toolbar"),
		barLayer(m.footerLine(), m.Width, l.get(regionFooter).Min.Y, footerStyle, "footer"),
		buildCanvasLayer(m, canvasRect),
	}
	layers = append(layers, buildPanelLayers(m, panelRect.Min.X, panelRect.Min.Y, panelRect.Dx(), panelRect.Dy())...)

	switch {
	case m.edit.open:
		layers = append(layers, buildEditLayer(m))
	case m.menu.open:
		layers = append(layers, buildMenuLayer(m))
	}

	comp := lipgloss.NewCompositor(layers...)
	screen := lipgloss.NewCanvas(m.Width, m.Height)
	screen.Compose(comp)

	v := tea.NewView(screen.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	return v
}
