// Package nodekind is the catalogue of node kinds the editor can create.
// Each kind pairs a name with a constructor for its graphmodel.Behavior.
package nodekind

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/wesen/stategraph/pkg/graphmodel"
)

// Kind describes one creatable node kind.
type Kind struct {
	Name     string
	Category string // menu grouping, empty for top level
	New      func() graphmodel.Behavior
}

// MenuPath is "Category/Name", or just Name without a category.
func (k Kind) MenuPath() string {
	if k.Category == "" {
		return k.Name
	}
	return k.Category + "/" + k.Name
}

// Registry maps kind names to constructors.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// Register adds k, replacing any kind with the same name.
func (r *Registry) Register(k Kind) error {
	if k.Name == "" || k.New == nil {
		return fmt.Errorf("register kind %q: %w", k.Name, graphmodel.ErrInvalidFactory)
	}
	r.kinds[k.Name] = k
	return nil
}

// Kinds returns all kinds ordered by category, then name.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b Kind) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Factory returns a graphmodel.Factory for the named kind.
func (r *Registry) Factory(name string) (graphmodel.Factory, error) {
	k, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("kind %q: %w", name, graphmodel.ErrInvalidFactory)
	}
	return func() *graphmodel.Node {
		b := k.New()
		if b == nil {
			return nil
		}
		return graphmodel.NewNode(k.Name, b)
	}, nil
}

// Instantiate builds the behavior for the named kind.
func (r *Registry) Instantiate(name string) (graphmodel.Behavior, error) {
	k, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("kind %q: %w", name, graphmodel.ErrInvalidFactory)
	}
	b := k.New()
	if b == nil {
		return nil, fmt.Errorf("kind %q: %w: constructor returned nil", name, graphmodel.ErrInvalidFactory)
	}
	return b, nil
}

// Default returns a registry with the built-in kinds.
func Default() *Registry {
	r := NewRegistry()
	for _, k := range Builtins() {
		_ = r.Register(k)
	}
	return r
}
