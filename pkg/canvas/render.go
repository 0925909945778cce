package canvas

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Render converts the buffer into a styled string, one line per row.
// Runs of equal StyleKey are rendered with a single Style.Render call.
// Keys missing from styles are written unstyled.
func (b *Buffer) Render(styles map[StyleKey]lipgloss.Style) string {
	if b.W == 0 || b.H == 0 {
		return ""
	}
	lines := make([]string, b.H)
	for y, row := range b.Cells {
		var sb strings.Builder
		start := 0
		for x := 1; x <= b.W; x++ {
			if x < b.W && row[x].Style == row[start].Style {
				continue
			}
			chunk := make([]rune, x-start)
			for i := start; i < x; i++ {
				chunk[i-start] = row[i].Ch
			}
			if s, ok := styles[row[start].Style]; ok {
				sb.WriteString(s.Render(string(chunk)))
			} else {
				sb.WriteString(string(chunk))
			}
			start = x
		}
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// String renders without styles. Useful in tests.
func (b *Buffer) String() string {
	return b.Render(nil)
}
