package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/entryd/entryd/internal/model"
)

// SQLite is a Collection stored in one SQLite table. Rows keep an
// autoincrement sequence so iteration follows insertion order.
type SQLite struct {
	db    *sql.DB
	name  string
	table string
}

// NewSQLite opens (or creates) the database at path and ensures the
// collection table exists.
func NewSQLite(ctx context.Context, path, name string) (*SQLite, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s := &SQLite{
		db:    db,
		name:  name,
		table: `"` + name + `"`,
	}

	if err := s.EnsureCollection(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// EnsureCollection creates the backing table if it does not exist.
func (s *SQLite) EnsureCollection(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			rev TEXT NOT NULL,
			doc TEXT NOT NULL
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.name, err)
	}
	return nil
}

// Name returns the collection name.
func (s *SQLite) Name() string {
	return s.name
}

// Save inserts doc under a new key.
func (s *SQLite) Save(ctx context.Context, doc model.Document) (model.Meta, error) {
	meta := NewMeta()

	data, err := json.Marshal(doc.WithMeta(meta))
	if err != nil {
		return model.Meta{}, fmt.Errorf("failed to encode document: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (key, rev, doc) VALUES (?, ?, ?)`, s.table)

	if _, err := s.db.ExecContext(ctx, query, meta.Key, meta.Rev, string(data)); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return model.Meta{}, fmt.Errorf("%w: %s", ErrConflict, meta.Key)
		}
		return model.Meta{}, fmt.Errorf("failed to save document: %w", err)
	}

	return meta, nil
}

// Lookup fetches a document by key.
func (s *SQLite) Lookup(ctx context.Context, key string) Lookup {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE key = ?`, s.table)

	var raw string
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotFound(key)
		}
		return Failed(fmt.Errorf("failed to get document by key: %w", err))
	}

	doc, err := model.DecodeDocument([]byte(raw))
	if err != nil {
		return Failed(fmt.Errorf("failed to decode document %s: %w", key, err))
	}
	return Found(doc)
}

// All returns every document in insertion order.
func (s *SQLite) All(ctx context.Context) ([]model.Document, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY seq`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := model.DecodeDocument([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// Ping checks database connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
