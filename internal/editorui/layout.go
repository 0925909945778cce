package editorui

import (
	"image"
	"strings"

	"charm.land/lipgloss/v2"
)

// Screen region names.
const (
	regionToolbar = "toolbar"
	regionFooter  = "footer"
	regionPanel   = "panel"
	regionCanvas  = "canvas"
)

// layout maps region names to screen rectangles for one terminal size.
type layout struct {
	w, h    int
	regions map[string]image.Rectangle
}

func (l layout) get(name string) image.Rectangle { return l.regions[name] }

// layoutBuilder carves fixed strips off the screen edges and hands what is
// left to a single remaining region.
type layoutBuilder struct {
	w, h        int
	top, bottom int
	right       int
	order       []string
	rects       map[string]image.Rectangle
}

func newLayout(w, h int) *layoutBuilder {
	return &layoutBuilder{w: w, h: h, rects: map[string]image.Rectangle{}}
}

func (b *layoutBuilder) add(name string, r image.Rectangle) *layoutBuilder {
	b.order = append(b.order, name)
	b.rects[name] = r
	return b
}

func (b *layoutBuilder) topFixed(name string, height int) *layoutBuilder {
	y := b.top
	b.top += height
	return b.add(name, image.Rect(0, y, b.w, y+height))
}

func (b *layoutBuilder) bottomFixed(name string, height int) *layoutBuilder {
	y := b.h - b.bottom - height
	b.bottom += height
	return b.add(name, image.Rect(0, y, b.w, y+height))
}

// rightFixed spans the rows between the top and bottom strips.
func (b *layoutBuilder) rightFixed(name string, width int) *layoutBuilder {
	x := b.w - b.right - width
	b.right += width
	return b.add(name, image.Rect(x, b.top, x+width, b.h-b.bottom))
}

func (b *layoutBuilder) remaining(name string) *layoutBuilder {
	return b.add(name, image.Rect(0, b.top, b.w-b.right, b.h-b.bottom))
}

// build clamps inverted rectangles to empty ones.
func (b *layoutBuilder) build() layout {
	l := layout{w: b.w, h: b.h, regions: make(map[string]image.Rectangle, len(b.order))}
	for _, name := range b.order {
		r := b.rects[name]
		if r.Min.X < 0 || r.Min.Y < 0 || r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
			r = image.Rectangle{}
		}
		l.regions[name] = r
	}
	return l
}

// screenLayout is the editor's fixed arrangement.
func screenLayout(w, h int) layout {
	return newLayout(w, h).
		topFixed(regionToolbar, 1).
		bottomFixed(regionFooter, 1).
		rightFixed(regionPanel, panelWidth).
		remaining(regionCanvas).
		build()
}

// ── Chrome layers ──

func fillLayer(r image.Rectangle, style lipgloss.Style, id string, z int) *lipgloss.Layer {
	if r.Empty() {
		return lipgloss.NewLayer("").X(r.Min.X).Y(r.Min.Y).Z(z).ID(id)
	}
	line := strings.Repeat(" ", r.Dx())
	lines := make([]string, r.Dy())
	for i := range lines {
		lines[i] = line
	}
	return lipgloss.NewLayer(style.Render(strings.Join(lines, "\n"))).
		X(r.Min.X).Y(r.Min.Y).Z(z).ID(id)
}

// barLayer renders one full-width line of plain text at row y.
func barLayer(content string, width, y int, style lipgloss.Style, id string) *lipgloss.Layer {
	return lipgloss.NewLayer(style.Width(width).Render(clip(content, width))).
		X(0).Y(y).Z(1).ID(id)
}

// clip cuts plain text to n runes, ending in '…' when cut.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	return string(r[:n-1]) + "…"
}

// modalLayer centers boxStyle.Render(content) above everything else.
func modalLayer(content string, w, h int, boxStyle lipgloss.Style, id string) *lipgloss.Layer {
	rendered := boxStyle.Render(content)
	x := max(0, (w-lipgloss.Width(rendered))/2)
	y := max(0, (h-lipgloss.Height(rendered))/2)
	return lipgloss.NewLayer(rendered).X(x).Y(y).Z(100).ID(id)
}
