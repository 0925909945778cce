package graphmodel

import (
	"cmp"
	"fmt"
	"slices"
)

// SortAdjacency orders n's parents and children by ascending vertical
// position of the referenced node and stores the result on n. Equal
// positions keep their current order.
func (g *Graph) SortAdjacency(n *Node) error {
	if !g.Contains(n) {
		return fmt.Errorf("sort adjacency: %w", ErrNodeNotFound)
	}
	parents, err := g.sortedByY(n.parents)
	if err != nil {
		return fmt.Errorf("sort parents of %s: %w", n.ID, err)
	}
	children, err := g.sortedByY(n.children)
	if err != nil {
		return fmt.Errorf("sort children of %s: %w", n.ID, err)
	}
	n.parents = parents
	n.children = children
	return nil
}

// SortAll applies SortAdjacency to every node in order.
func (g *Graph) SortAll() error {
	for _, n := range g.Nodes() {
		if err := g.SortAdjacency(n); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) sortedByY(ids []string) ([]string, error) {
	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			return nil, fmt.Errorf("%s: %w", id, ErrDanglingReference)
		}
	}
	sorted := slices.Clone(ids)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return cmp.Compare(g.nodes[a].Position.Y, g.nodes[b].Position.Y)
	})
	return sorted, nil
}
