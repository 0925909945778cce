// Package canvas is a 2D cell buffer with per-cell style keys and the
// drawing primitives the graph editor needs: boxes, orthogonal edge
// routes with corner glyphs, straight preview lines and a dot grid.
//
// Cells hold a rune and a StyleKey. The mapping from StyleKey to a
// lipgloss.Style is supplied at render time, so the buffer carries no
// colors of its own. All runes are assumed to be single-width.
package canvas

import "image"

// StyleKey identifies a visual style.
type StyleKey int

// Cell is one character with its style.
type Cell struct {
	Ch    rune
	Style StyleKey
}

// Buffer is a grid of cells, [row][col].
type Buffer struct {
	W, H  int
	Cells [][]Cell
}

// New creates a w×h buffer of spaces in style bg.
func New(w, h int, bg StyleKey) *Buffer {
	w, h = max(w, 0), max(h, 0)
	b := &Buffer{W: w, H: h, Cells: make([][]Cell, h)}
	for y := range b.Cells {
		b.Cells[y] = make([]Cell, w)
	}
	b.Fill(bg)
	return b
}

func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// Set writes one cell. Out-of-bounds writes are dropped.
func (b *Buffer) Set(x, y int, ch rune, style StyleKey) {
	if b.InBounds(x, y) {
		b.Cells[y][x] = Cell{Ch: ch, Style: style}
	}
}

// At returns the cell at (x, y), or a zero Cell outside the buffer.
func (b *Buffer) At(x, y int) Cell {
	if !b.InBounds(x, y) {
		return Cell{}
	}
	return b.Cells[y][x]
}

// SetString writes s from (x, y) rightwards.
func (b *Buffer) SetString(x, y int, s string, style StyleKey) {
	i := 0
	for _, ch := range s {
		b.Set(x+i, y, ch, style)
		i++
	}
}

// SetStringClipped writes at most n runes of s, ending in '…' when cut.
func (b *Buffer) SetStringClipped(x, y int, s string, n int, style StyleKey) {
	r := []rune(s)
	if len(r) > n && n > 0 {
		r = append(r[:n-1], '…')
	}
	b.SetString(x, y, string(r), style)
}

// Fill resets every cell to a space in style.
func (b *Buffer) Fill(style StyleKey) {
	for y := range b.Cells {
		for x := range b.Cells[y] {
			b.Cells[y][x] = Cell{Ch: ' ', Style: style}
		}
	}
}

// FillRect blanks r in style.
func (b *Buffer) FillRect(r image.Rectangle, style StyleKey) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Set(x, y, ' ', style)
		}
	}
}

// DrawBox draws a single-line border around r and blanks the inside.
func (b *Buffer) DrawBox(r image.Rectangle, border, fill StyleKey) {
	if r.Dx() < 2 || r.Dy() < 2 {
		return
	}
	b.FillRect(r.Inset(1), fill)
	x0, y0, x1, y1 := r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1
	for x := x0 + 1; x < x1; x++ {
		b.Set(x, y0, '─', border)
		b.Set(x, y1, '─', border)
	}
	for y := y0 + 1; y < y1; y++ {
		b.Set(x0, y, '│', border)
		b.Set(x1, y, '│', border)
	}
	b.Set(x0, y0, '┌', border)
	b.Set(x1, y0, '┐', border)
	b.Set(x0, y1, '└', border)
	b.Set(x1, y1, '┘', border)
}
