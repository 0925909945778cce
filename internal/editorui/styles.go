package editorui

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/wesen/stategraph/pkg/canvas"
	"github.com/wesen/stategraph/pkg/nodekind"
)

func c(hex string) color.Color { return lipgloss.Color(hex) }

// CRT green palette.
var (
	colorBG      = c("#080e0b")
	colorBarBG   = c("#0a1510")
	colorPanelBG = c("#1a2a20")
	colorText    = c("#00d4a0")
	colorBright  = c("#00ffc8")
	colorDim     = c("#336655")
	colorAmber   = c("#ddaa44")
	colorExec    = c("#ffcc00")
	colorError   = c("#ff6655")
)

// Canvas style keys.
const (
	styleBG canvas.StyleKey = iota
	styleGrid
	styleEdge
	styleEdgeActive
	stylePreview
	styleNode
	styleNodeEntry
	styleNodeAction
	styleNodeSelected
	styleNodeExec
	styleNodeFill
	styleTitle
	stylePortFree
	stylePortBound
	stylePortPending
)

var canvasStyles = map[canvas.StyleKey]lipgloss.Style{
	styleBG:           lipgloss.NewStyle().Foreground(c("#1a3a2a")).Background(colorBG),
	styleGrid:         lipgloss.NewStyle().Foreground(c("#0e2e20")).Background(colorBG),
	styleEdge:         lipgloss.NewStyle().Foreground(colorText).Background(colorBG),
	styleEdgeActive:   lipgloss.NewStyle().Foreground(colorExec).Background(colorBG).Bold(true),
	stylePreview:      lipgloss.NewStyle().Foreground(colorAmber).Background(colorBG),
	styleNode:         lipgloss.NewStyle().Foreground(colorText).Background(colorBG),
	styleNodeEntry:    lipgloss.NewStyle().Foreground(c("#44ff88")).Background(colorBG),
	styleNodeAction:   lipgloss.NewStyle().Foreground(c("#00ccee")).Background(colorBG),
	styleNodeSelected: lipgloss.NewStyle().Foreground(c("#00ffee")).Background(c("#0a1a15")).Bold(true),
	styleNodeExec:     lipgloss.NewStyle().Foreground(colorExec).Background(c("#12120a")).Bold(true),
	styleNodeFill:     lipgloss.NewStyle().Foreground(colorBright).Background(colorBG),
	styleTitle:        lipgloss.NewStyle().Foreground(colorBright).Background(colorBG).Bold(true),
	stylePortFree:     lipgloss.NewStyle().Foreground(colorDim).Background(colorBG),
	stylePortBound:    lipgloss.NewStyle().Foreground(colorBright).Background(colorBG),
	stylePortPending:  lipgloss.NewStyle().Foreground(colorAmber).Background(colorBG).Bold(true),
}

// borderStyle picks the node border color by kind category.
func borderStyle(reg *nodekind.Registry, kind string) canvas.StyleKey {
	if kind == nodekind.KindEntry {
		return styleNodeEntry
	}
	if k, ok := reg.Lookup(kind); ok && k.Category != "" {
		return styleNodeAction
	}
	return styleNode
}

// Chrome styles.
var (
	toolbarStyle = lipgloss.NewStyle().Background(colorBarBG).Foreground(colorBright).Bold(true)
	footerStyle  = lipgloss.NewStyle().Background(colorBarBG).Foreground(c("#666666"))
	canvasBG     = lipgloss.NewStyle().Background(colorBG)
)
