package editorui

import (
	"image"

	"charm.land/lipgloss/v2"
	"github.com/wesen/stategraph/pkg/canvas"
	"github.com/wesen/stategraph/pkg/graphview"
	"github.com/wesen/stategraph/pkg/nodekind"
)

const (
	gridX = 6
	gridY = 3
)

// Port glyphs.
const (
	glyphPortFree  = '○'
	glyphPortBound = '●'
)

// drawScene paints grid, edges, the connect preview and nodes into a buffer
// the size of the viewport. Coordinates in the buffer are world minus cam.
func drawScene(m Model, size image.Point) *canvas.Buffer {
	buf := canvas.New(size.X, size.Y, styleBG)
	canvas.DrawGrid(buf, m.Cam, gridX, gridY, styleGrid)

	view := m.session.View()
	exec := m.execID()

	for _, e := range view.Edges() {
		pv, cv := view.Node(e.Key.Parent), view.Node(e.Key.Child)
		if pv == nil || cv == nil {
			continue
		}
		from := pv.Anchor(e.Output).Add(image.Pt(1, 0)).Sub(m.Cam)
		to := cv.Anchor(e.Input).Sub(image.Pt(1, 0)).Sub(m.Cam)
		style := styleEdge
		if exec != "" && e.Key.Child == exec {
			style = styleEdgeActive
		}
		canvas.DrawRoute(buf, canvas.Elbow(from, to), style, style)
	}

	if p := m.pending; p != nil {
		if nv := view.Node(p.Owner); nv != nil && nv.IndexOf(p) >= 0 {
			from := nv.Anchor(p).Sub(m.Cam)
			to := m.toWorld(image.Pt(m.MouseX, m.MouseY)).Sub(m.Cam)
			canvas.DrawDashedLine(buf, from, to, stylePreview)
		}
	}

	reg := m.session.Registry()
	sel := m.selectedID()
	for _, nv := range view.Nodes() {
		drawNode(buf, nv, m.Cam, nodeStyle(reg, nv, sel, exec), m.pending)
	}
	return buf
}

func nodeStyle(reg *nodekind.Registry, nv *graphview.NodeView, sel, exec string) canvas.StyleKey {
	switch nv.NodeID {
	case exec:
		return styleNodeExec
	case sel:
		return styleNodeSelected
	}
	return borderStyle(reg, nv.Kind)
}

// drawNode draws the box, the kind tag on the top border, the title and
// one glyph per port on the side borders.
func drawNode(buf *canvas.Buffer, nv *graphview.NodeView, cam image.Point, border canvas.StyleKey, pending *graphview.Port) {
	r := image.Rectangle{Min: nv.Pos(), Max: nv.Pos().Add(nv.Size())}.Sub(cam)
	if !r.Overlaps(image.Rect(0, 0, buf.W, buf.H)) {
		return
	}
	buf.DrawBox(r, border, styleNodeFill)
	buf.SetStringClipped(r.Min.X+2, r.Min.Y, "["+nv.Kind+"]", graphview.NodeWidth-4, border)
	buf.SetStringClipped(r.Min.X+2, r.Min.Y+1, nv.Title, graphview.NodeWidth-4, styleTitle)

	for _, ports := range [][]*graphview.Port{nv.Inputs(), nv.Outputs()} {
		for _, p := range ports {
			a := nv.Anchor(p).Sub(cam)
			glyph, style := glyphPortFree, stylePortFree
			if p.Connected() {
				glyph, style = glyphPortBound, stylePortBound
			}
			if p == pending {
				style = stylePortPending
			}
			buf.Set(a.X, a.Y, glyph, style)
		}
	}
}

// buildCanvasLayer renders the scene as the canvas background layer.
func buildCanvasLayer(m Model, viewport image.Rectangle) *lipgloss.Layer {
	if viewport.Empty() {
		return lipgloss.NewLayer("").X(viewport.Min.X).Y(viewport.Min.Y).Z(0)
	}
	buf := drawScene(m, viewport.Size())
	return lipgloss.NewLayer(buf.Render(canvasStyles)).
		X(viewport.Min.X).Y(viewport.Min.Y).Z(0).ID("canvas")
}
