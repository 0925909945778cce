package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/nodekind"
	"gopkg.in/yaml.v3"
)

// YAMLFile keeps one graph in one YAML file.
type YAMLFile struct {
	path string
	reg  *nodekind.Registry
}

// NewYAMLFile stores to path. The parent directory is created on save.
func NewYAMLFile(path string, reg *nodekind.Registry) *YAMLFile {
	return &YAMLFile{path: path, reg: reg}
}

// Path returns the file location.
func (s *YAMLFile) Path() string { return s.path }

// Save writes g atomically: a temp file in the same directory is renamed
// over the target.
func (s *YAMLFile) Save(ctx context.Context, g *graphmodel.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Encode(g)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Load reads the file. The file is the graph, so name only fills in a
// missing name in the document.
func (s *YAMLFile) Load(ctx context.Context, name string) (*graphmodel.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Name == "" {
		doc.Name = name
	}
	return Decode(&doc, s.reg)
}

func (s *YAMLFile) Close() error { return nil }
