package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/nodekind"
)

// SQLite keeps one row per graph holding the JSON document.
type SQLite struct {
	db        *sql.DB
	tableName string
	reg       *nodekind.Registry
}

// SQLiteOptions configures NewSQLite.
type SQLiteOptions struct {
	Path      string
	TableName string // default "graphs"
	Registry  *nodekind.Registry
}

// NewSQLite opens the database and creates the table if needed.
func NewSQLite(opts SQLiteOptions) (*SQLite, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	tableName := opts.TableName
	if tableName == "" {
		tableName = "graphs"
	}
	s := &SQLite{db: db, tableName: tableName, reg: opts.Registry}
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the graphs table.
func (s *SQLite) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save upserts the graph's row.
func (s *SQLite) Save(ctx context.Context, g *graphmodel.Graph) error {
	data, err := json.Marshal(Encode(g))
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (name, document, fingerprint, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at
	`, s.tableName)
	_, err = s.db.ExecContext(ctx, query, g.Name, string(data), Fingerprint(g), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save graph %q: %w", g.Name, err)
	}
	return nil
}

// Load reads and decodes the named graph.
func (s *SQLite) Load(ctx context.Context, name string) (*graphmodel.Graph, error) {
	query := fmt.Sprintf(`SELECT document FROM %s WHERE name = ?`, s.tableName)
	var data string
	err := s.db.QueryRowContext(ctx, query, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load graph %q: %w", name, err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph %q: %w", name, err)
	}
	return Decode(&doc, s.reg)
}

// List returns stored graph names in order.
func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, s.tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the named graph. Missing graphs are not an error.
func (s *SQLite) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE name = ?`, s.tableName), name)
	return err
}
