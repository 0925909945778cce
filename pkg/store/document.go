// Package store persists graphs. Every backend writes the same Document:
// the graph name and, per node, its identifier, kind, position, ordered
// adjacency and properties. Edges are not stored separately; they are the
// adjacency lists.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/nodekind"
)

// ErrNotFound is returned by Load when no graph is stored under the name.
var ErrNotFound = errors.New("store: graph not found")

// Store saves and loads whole graphs by name.
type Store interface {
	Save(ctx context.Context, g *graphmodel.Graph) error
	Load(ctx context.Context, name string) (*graphmodel.Graph, error)
	Close() error
}

// Document is the persisted form of a graph.
type Document struct {
	Name  string    `json:"name" yaml:"name"`
	Nodes []NodeDoc `json:"nodes" yaml:"nodes"`
}

// NodeDoc is one node. List order is significant.
type NodeDoc struct {
	ID         string            `json:"id" yaml:"id"`
	Kind       string            `json:"kind" yaml:"kind"`
	X          int               `json:"x" yaml:"x"`
	Y          int               `json:"y" yaml:"y"`
	Parents    []string          `json:"parents,omitempty" yaml:"parents,omitempty"`
	Children   []string          `json:"children,omitempty" yaml:"children,omitempty"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Encode converts g to a Document. Empty property values are dropped.
func Encode(g *graphmodel.Graph) *Document {
	doc := &Document{Name: g.Name, Nodes: make([]NodeDoc, 0, g.Len())}
	for _, n := range g.Nodes() {
		nd := NodeDoc{
			ID:       n.ID,
			Kind:     n.Kind,
			X:        n.Position.X,
			Y:        n.Position.Y,
			Parents:  n.Parents(),
			Children: n.Children(),
		}
		for k, v := range n.Properties() {
			if v == "" {
				continue
			}
			if nd.Properties == nil {
				nd.Properties = make(map[string]string)
			}
			nd.Properties[k] = v
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc
}

// Decode rebuilds a graph, instantiating behaviors from reg. The result is
// validated; unknown kinds fail with graphmodel.ErrInvalidFactory.
func Decode(doc *Document, reg *nodekind.Registry) (*graphmodel.Graph, error) {
	if reg == nil {
		reg = nodekind.Default()
	}
	g := graphmodel.New(doc.Name)
	for _, nd := range doc.Nodes {
		b, err := reg.Instantiate(nd.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.ID, err)
		}
		if len(nd.Properties) > 0 {
			cfg, ok := b.(graphmodel.Configurable)
			if !ok {
				return nil, fmt.Errorf("node %s: kind %s has no properties", nd.ID, nd.Kind)
			}
			if err := cfg.SetProperties(nd.Properties); err != nil {
				return nil, fmt.Errorf("node %s: %w", nd.ID, err)
			}
		}
		n := graphmodel.Restore(nd.ID, nd.Kind, b, image.Pt(nd.X, nd.Y), nd.Parents, nd.Children)
		if err := g.Adopt(n); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Fingerprint digests the encoded graph. Two graphs with the same
// fingerprint persist to the same document.
func Fingerprint(g *graphmodel.Graph) string {
	data, err := json.Marshal(Encode(g))
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
