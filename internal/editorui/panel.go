package editorui

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/graphview"
)

const panelWidth = 36

var (
	panelTitleStyle = lipgloss.NewStyle().Foreground(colorBright).Background(colorPanelBG).Bold(true)
	panelDimStyle   = lipgloss.NewStyle().Foreground(colorDim).Background(colorPanelBG)
	panelTextStyle  = lipgloss.NewStyle().Foreground(colorText).Background(colorPanelBG)
	panelKeyStyle   = lipgloss.NewStyle().Foreground(colorAmber).Background(colorPanelBG)
	panelValStyle   = lipgloss.NewStyle().Foreground(colorBright).Background(colorPanelBG)
	panelErrStyle   = lipgloss.NewStyle().Foreground(colorError).Background(colorPanelBG)
	panelSepStyle   = lipgloss.NewStyle().Foreground(c("#1a4a3a")).Background(colorPanelBG)
	panelLineStyle  = lipgloss.NewStyle().Background(colorPanelBG)
)

// section is a titled block of panel lines, padded or cut to height.
func section(title string, body []string, width, height int) []string {
	lines := []string{
		panelTitleStyle.Render(title),
		panelDimStyle.Render(strings.Repeat("─", max(0, width-2))),
	}
	lines = append(lines, body...)
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]
	for i, l := range lines {
		if pad := width - lipgloss.Width(l); pad > 0 {
			lines[i] = l + panelLineStyle.Render(strings.Repeat(" ", pad))
		}
	}
	return lines
}

func keyValue(k, v string, width int) string {
	v = clip(v, max(1, width-len(k)-5))
	return panelKeyStyle.Render("  "+k) + panelDimStyle.Render(" = ") + panelValStyle.Render(v)
}

// inspectorLines describes the selected node and its ports.
func inspectorLines(n *graphmodel.Node, nv *graphview.NodeView, width int) []string {
	if n == nil {
		return []string{panelDimStyle.Render("  (nothing selected)")}
	}
	lines := []string{
		panelValStyle.Render("  " + clip(n.Title(), width-2)),
		keyValue("kind", n.Kind, width),
		keyValue("id", n.ID[:min(8, len(n.ID))], width),
		keyValue("pos", fmt.Sprintf("%d,%d", n.Position.X, n.Position.Y), width),
	}
	if nv != nil {
		ports := func(ps []*graphview.Port) string {
			var b strings.Builder
			for _, p := range ps {
				if p.Connected() {
					b.WriteRune(glyphPortBound)
				} else {
					b.WriteRune(glyphPortFree)
				}
			}
			return b.String()
		}
		lines = append(lines,
			keyValue("in", ports(nv.Inputs()), width),
			keyValue("out", ports(nv.Outputs()), width),
		)
	}
	props := n.Properties()
	for _, k := range propertyKeys(props) {
		if k == "label" || props[k] == "" {
			continue
		}
		lines = append(lines, keyValue(k, props[k], width))
	}
	return lines
}

func varsLines(vars map[string]any, width int) []string {
	if len(vars) == 0 {
		return []string{panelDimStyle.Render("  (none)")}
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, keyValue(k, fmt.Sprintf("%v", vars[k]), width))
	}
	return lines
}

// consoleLines shows the newest lines that fit in n rows.
func consoleLines(console []string, width, n int) []string {
	if len(console) == 0 {
		return []string{panelDimStyle.Render("  (empty)")}
	}
	start := max(0, len(console)-n)
	lines := make([]string, 0, len(console)-start)
	for _, l := range console[start:] {
		style := panelTextStyle
		if strings.HasPrefix(l, "✗") {
			style = panelErrStyle
		}
		lines = append(lines, style.Render(" "+clip(l, width-1)))
	}
	return lines
}

var helpText = []string{
	"click=select  drag=move",
	"[s]elect [a]dd [c]onnect [p]ort",
	"[ ] add input/output port",
	"[e]dit [d]elete [w]rite",
	"[u]ndo [r]edo",
	"[n]step [g]auto [x]reset run",
	"arrows: pan   [q]uit",
}

// buildPanelLayers stacks inspector, variables, console and help in the
// panel region, with a separator on its left edge.
func buildPanelLayers(m Model, x, y, width, height int) []*lipgloss.Layer {
	if width <= 0 || height <= 0 {
		return nil
	}
	inner := width - 2

	var vars map[string]any
	if m.run != nil {
		vars = m.run.Env().Vars
	}
	inspectH := 10
	varsH := min(2+max(1, len(vars)), 7)
	helpH := 2 + len(helpText)
	consoleH := max(3, height-inspectH-varsH-helpH)

	var node *graphmodel.Node
	var nv *graphview.NodeView
	if node = m.session.Selected(); node != nil {
		nv = m.session.View().Node(node.ID)
	}
	help := make([]string, len(helpText))
	for i, h := range helpText {
		help[i] = panelTextStyle.Render(" " + clip(h, inner-1))
	}

	var lines []string
	lines = append(lines, section("INSPECTOR", inspectorLines(node, nv, inner), inner, inspectH)...)
	lines = append(lines, section("VARIABLES", varsLines(vars, inner), inner, varsH)...)
	lines = append(lines, section("CONSOLE", consoleLines(m.console, inner, consoleH-2), inner, consoleH)...)
	lines = append(lines, section("HELP", help, inner, helpH)...)
	if len(lines) > height {
		lines = lines[:height]
	}

	sep := make([]string, height)
	for i := range sep {
		sep[i] = panelSepStyle.Render("│")
	}
	return []*lipgloss.Layer{
		lipgloss.NewLayer(strings.Join(sep, "\n")).X(x).Y(y).Z(1).ID("separator"),
		lipgloss.NewLayer(strings.Join(lines, "\n")).X(x + 1).Y(y).Z(1).ID("panel"),
	}
}
