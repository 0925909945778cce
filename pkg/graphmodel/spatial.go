// Package graphmodel holds the persisted side of the editor: node entities
// with ordered parent/child adjacency, and the graph aggregate that owns
// them and is the only mutator of adjacency.
//
// Every edge P→C is stored twice: C in P's children and P in C's parents.
// The two lists are ordered independently. A list position is what binds an
// edge to a port on the view side, so reordering a list rewires the edge.
package graphmodel

import "image"

// Spatial is the minimal interface for a positioned, sized element.
type Spatial interface {
	Pos() image.Point
	Size() image.Point
}

// CenterOf returns the center point of a Spatial element.
func CenterOf(s Spatial) image.Point {
	p := s.Pos()
	sz := s.Size()
	return image.Pt(p.X+sz.X/2, p.Y+sz.Y/2)
}

// BoundsOf returns the bounding rectangle of a Spatial element.
func BoundsOf(s Spatial) image.Rectangle {
	p := s.Pos()
	sz := s.Size()
	return image.Rect(p.X, p.Y, p.X+sz.X, p.Y+sz.Y)
}
