package editorui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/wesen/stategraph/pkg/nodekind"
)

// menuState is the node kind picker opened by the add tool.
type menuState struct {
	open   bool
	cursor int
	kinds  []nodekind.Kind
}

func (m *Model) openMenu() {
	kinds := m.session.Registry().Kinds()
	m.menu = menuState{open: true, kinds: kinds}
	for i, k := range kinds {
		if k.Name == m.addKind {
			m.menu.cursor = i
		}
	}
}

func (m Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	return m.handleMenuKey(msg.String()), nil
}

func (m Model) handleMenuKey(key string) Model {
	switch key {
	case "esc", "escape", "q":
		m.menu.open = false
	case "up", "k":
		if m.menu.cursor > 0 {
			m.menu.cursor--
		}
	case "down", "j":
		if m.menu.cursor < len(m.menu.kinds)-1 {
			m.menu.cursor++
		}
	case "enter", " ", "space":
		m.menu.open = false
		if len(m.menu.kinds) > 0 {
			m.addKind = m.menu.kinds[m.menu.cursor].Name
			m.setTool(ToolAdd)
		}
	}
	return m
}

var (
	menuBox = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorText).
		Background(colorBarBG).
		Padding(0, 1)
	menuTitle  = lipgloss.NewStyle().Foreground(colorBright).Background(colorBarBG).Bold(true)
	menuItem   = lipgloss.NewStyle().Foreground(colorText).Background(colorBarBG)
	menuCursor = lipgloss.NewStyle().Foreground(colorBG).Background(colorBright).Bold(true)
	menuHint   = lipgloss.NewStyle().Foreground(colorDim).Background(colorBarBG).Italic(true)
)

func buildMenuLayer(m Model) *lipgloss.Layer {
	lines := []string{menuTitle.Render("ADD NODE"), ""}
	width := 20
	for _, k := range m.menu.kinds {
		width = max(width, len(k.MenuPath())+6)
	}
	for i, k := range m.menu.kinds {
		line := fmt.Sprintf(" %d %s", i+1, k.MenuPath())
		line += strings.Repeat(" ", max(0, width-len([]rune(line))))
		if i == m.menu.cursor {
			lines = append(lines, menuCursor.Render(line))
		} else {
			lines = append(lines, menuItem.Render(line))
		}
	}
	lines = append(lines, "", menuHint.Render("↑↓ pick  [enter] add  [esc] close"))
	return modalLayer(strings.Join(lines, "\n"), m.Width, m.Height, menuBox, "kind-menu")
}
