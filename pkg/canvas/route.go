package canvas

import "image"

// Elbow routes an edge from an output anchor on the right of one box to an
// input anchor on the left of another, using only horizontal and vertical
// segments. The result is the list of corner points, endpoints included.
//
// Forward edges bend once at the midpoint column. Backward edges leave to
// the right, cross over at a middle row and enter from the left.
func Elbow(from, to image.Point) []image.Point {
	if to.X > from.X+1 {
		if from.Y == to.Y {
			return []image.Point{from, to}
		}
		mid := from.X + (to.X-from.X)/2
		return []image.Point{from, image.Pt(mid, from.Y), image.Pt(mid, to.Y), to}
	}
	out, in := from.X+2, to.X-2
	midY := from.Y + (to.Y-from.Y)/2
	if from.Y == to.Y {
		midY = from.Y - 2
	}
	return []image.Point{
		from,
		image.Pt(out, from.Y),
		image.Pt(out, midY),
		image.Pt(in, midY),
		image.Pt(in, to.Y),
		to,
	}
}

// Trace expands corner points into consecutive cells. Axis-aligned
// segments step one cell at a time; others fall back to Bresenham.
func Trace(corners []image.Point) []image.Point {
	if len(corners) == 0 {
		return nil
	}
	cells := []image.Point{corners[0]}
	for i := 1; i < len(corners); i++ {
		a, b := corners[i-1], corners[i]
		if a.X != b.X && a.Y != b.Y {
			cells = append(cells, Bresenham(a.X, a.Y, b.X, b.Y)[1:]...)
			continue
		}
		step := image.Pt(sign(b.X-a.X), sign(b.Y-a.Y))
		for p := a; p != b; {
			p = p.Add(step)
			cells = append(cells, p)
		}
	}
	return cells
}

// DrawRoute draws the traced route with box-drawing glyphs, joining
// corners, and ends it with an arrowhead in arrowStyle.
func DrawRoute(buf *Buffer, corners []image.Point, style, arrowStyle StyleKey) {
	cells := Trace(corners)
	n := len(cells)
	if n == 0 {
		return
	}
	for i := 0; i < n-1; i++ {
		var prev, next image.Point
		if i > 0 {
			prev = cells[i-1].Sub(cells[i])
		}
		next = cells[i+1].Sub(cells[i])
		buf.Set(cells[i].X, cells[i].Y, joint(prev, next), style)
	}
	var d image.Point
	if n > 1 {
		d = cells[n-1].Sub(cells[n-2])
	}
	buf.Set(cells[n-1].X, cells[n-1].Y, ArrowChar(d.X, d.Y), arrowStyle)
}

var (
	left  = image.Pt(-1, 0)
	right = image.Pt(1, 0)
	up    = image.Pt(0, -1)
	down  = image.Pt(0, 1)
)

// joint picks the glyph connecting the two neighbor directions a and b.
// A zero direction means the cell is an endpoint.
func joint(a, b image.Point) rune {
	if a == (image.Point{}) {
		a = image.Pt(-b.X, -b.Y)
	}
	has := func(d image.Point) bool { return a == d || b == d }
	switch {
	case has(left) && has(right):
		return '─'
	case has(up) && has(down):
		return '│'
	case has(down) && has(right):
		return '┌'
	case has(down) && has(left):
		return '┐'
	case has(up) && has(right):
		return '└'
	case has(up) && has(left):
		return '┘'
	}
	return LineChar(b.X, b.Y)
}
