package editorui

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"
	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/graphview"
)

// editState is the property editor for one node: one text input per key.
type editState struct {
	open   bool
	nodeID string
	kind   string
	keys   []string
	inputs []textinput.Model
	focus  int
}

// propertyKeys orders keys with "label" first, the rest by name.
func propertyKeys(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == "label":
			return -1
		case b == "label":
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

func (m Model) openEdit() (Model, tea.Cmd) {
	n := m.session.Selected()
	if n == nil {
		m.print("select a node first")
		return m, nil
	}
	cfg, ok := n.Behavior.(graphmodel.Configurable)
	if !ok {
		m.report("edit", fmt.Errorf("%s: %w", n.Title(), graphview.ErrNotConfigurable))
		return m, nil
	}
	props := cfg.Properties()
	m.edit = editState{open: true, nodeID: n.ID, kind: n.Kind, keys: propertyKeys(props)}
	for _, k := range m.edit.keys {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 200
		in.SetValue(props[k])
		m.edit.inputs = append(m.edit.inputs, in)
	}
	if len(m.edit.inputs) == 0 {
		m.edit.open = false
		m.print("%s has no properties", n.Title())
		return m, nil
	}
	cmd := m.edit.inputs[0].Focus()
	return m, cmd
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape":
		m.edit = editState{}
		return m, nil

	case "enter":
		return m.submitEdit(), nil

	case "tab", "down":
		cmd := m.focusInput(m.edit.focus + 1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusInput(m.edit.focus - 1)
		return m, cmd
	}

	// Forward everything else to the focused input. The inputs slice is
	// shared with the previous model value, so copy before writing.
	inputs := slices.Clone(m.edit.inputs)
	var cmd tea.Cmd
	inputs[m.edit.focus], cmd = inputs[m.edit.focus].Update(msg)
	m.edit.inputs = inputs
	return m, cmd
}

// submitEdit applies every input as one undoable property edit.
func (m Model) submitEdit() Model {
	values := make(map[string]string, len(m.edit.keys))
	for i, k := range m.edit.keys {
		values[k] = strings.TrimSpace(m.edit.inputs[i].Value())
	}
	id := m.edit.nodeID
	m.edit = editState{}
	if !m.report("edit", m.session.View().SetProperties(id, values)) {
		m.print("edited %s", m.title(id))
	}
	return m
}

// focusInput moves focus to input i, wrapping around.
func (m *Model) focusInput(i int) tea.Cmd {
	n := len(m.edit.inputs)
	inputs := slices.Clone(m.edit.inputs)
	inputs[m.edit.focus].Blur()
	m.edit.focus = (i%n + n) % n
	cmd := inputs[m.edit.focus].Focus()
	m.edit.inputs = inputs
	return cmd
}

var (
	editBox = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorText).
		Background(colorBarBG).
		Width(56).
		Padding(1, 2)
	editTitle = lipgloss.NewStyle().Foreground(colorBright).Background(colorBarBG).Bold(true)
	editLabel = lipgloss.NewStyle().Foreground(colorAmber).Background(colorBarBG)
	editHint  = lipgloss.NewStyle().Foreground(colorDim).Background(colorBarBG).Italic(true)
)

func buildEditLayer(m Model) *lipgloss.Layer {
	lines := []string{editTitle.Render("EDIT " + strings.ToUpper(m.edit.kind)), ""}
	for i, k := range m.edit.keys {
		marker := "  "
		if i == m.edit.focus {
			marker = "▸ "
		}
		lines = append(lines,
			editLabel.Render(marker+k+":"),
			"  "+m.edit.inputs[i].View(),
			"",
		)
	}
	lines = append(lines, editHint.Render("[tab] next  [enter] save  [esc] cancel"))
	return modalLayer(strings.Join(lines, "\n"), m.Width, m.Height, editBox, "edit-modal")
}
