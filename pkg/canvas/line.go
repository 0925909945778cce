package canvas

import "image"

// Bresenham returns the points from (x0,y0) to (x1,y1), both endpoints
// included. The loop is capped at dx+dy+2 iterations.
func Bresenham(x0, y0, x1, y1 int) []image.Point {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	x, y := x0, y0

	pts := make([]image.Point, 0, dx+dy+1)
	for range dx + dy + 2 {
		pts = append(pts, image.Pt(x, y))
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
	return pts
}

// LineChar returns the glyph for a step of direction (dx, dy).
func LineChar(dx, dy int) rune {
	if dx == 0 {
		return '│'
	}
	if dy == 0 {
		return '─'
	}
	if (dx > 0) == (dy > 0) {
		return '\\'
	}
	return '/'
}

// ArrowChar returns an arrowhead pointing along the dominant axis.
func ArrowChar(dx, dy int) rune {
	if abs(dy) > abs(dx) {
		if dy > 0 {
			return '▼'
		}
		return '▲'
	}
	if dx > 0 {
		return '►'
	}
	return '◄'
}

// DrawDashedLine draws a straight line skipping every third point. The
// editor uses it for the connect preview.
func DrawDashedLine(buf *Buffer, from, to image.Point, style StyleKey) {
	pts := Bresenham(from.X, from.Y, to.X, to.Y)
	for i, p := range pts {
		if i%3 == 2 {
			continue
		}
		var dx, dy int
		if i < len(pts)-1 {
			dx, dy = pts[i+1].X-p.X, pts[i+1].Y-p.Y
		} else if i > 0 {
			dx, dy = p.X-pts[i-1].X, p.Y-pts[i-1].Y
		}
		buf.Set(p.X, p.Y, LineChar(dx, dy), style)
	}
}

// DrawGrid puts a dot wherever the world coordinate (cell + camera) is a
// multiple of the spacing on both axes.
func DrawGrid(buf *Buffer, cam image.Point, spacingX, spacingY int, style StyleKey) {
	for r := 0; r < buf.H; r++ {
		if mod(r+cam.Y, spacingY) != 0 {
			continue
		}
		for c := 0; c < buf.W; c++ {
			if mod(c+cam.X, spacingX) == 0 {
				buf.Set(c, r, '·', style)
			}
		}
	}
}

func mod(a, m int) int {
	if m == 0 {
		return 0
	}
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
