package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/entryd/entryd/internal/model"
)

// Postgres is a Collection stored in one PostgreSQL table with a JSONB
// document column.
type Postgres struct {
	pool  *pgxpool.Pool
	name  string
	table string
}

// NewPostgres creates a Postgres collection with a connection pool.
func NewPostgres(ctx context.Context, databaseURL, name string) (*Postgres, error) {
	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{
		pool:  pool,
		name:  name,
		table: pgx.Identifier{name}.Sanitize(),
	}, nil
}

// EnsureCollection creates the backing table if it does not exist.
func (p *Postgres) EnsureCollection(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			rev        TEXT NOT NULL,
			doc        JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, p.table)

	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", p.name, err)
	}
	return nil
}

// Name returns the collection name.
func (p *Postgres) Name() string {
	return p.name
}

// Save inserts doc under a new key.
func (p *Postgres) Save(ctx context.Context, doc model.Document) (model.Meta, error) {
	meta := NewMeta()

	data, err := json.Marshal(doc.WithMeta(meta))
	if err != nil {
		return model.Meta{}, fmt.Errorf("failed to encode document: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (key, rev, doc) VALUES ($1, $2, $3::jsonb)`, p.table)

	if _, err := p.pool.Exec(ctx, query, meta.Key, meta.Rev, string(data)); err != nil {
		if isUniqueViolation(err) {
			return model.Meta{}, fmt.Errorf("%w: %s", ErrConflict, meta.Key)
		}
		return model.Meta{}, fmt.Errorf("failed to save document: %w", err)
	}

	return meta, nil
}

// Lookup fetches a document by key.
func (p *Postgres) Lookup(ctx context.Context, key string) Lookup {
	query := fmt.Sprintf(`SELECT doc::text FROM %s WHERE key = $1`, p.table)

	var raw string
	if err := p.pool.QueryRow(ctx, query, key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

// All returns every document ordered by creation time.
func (p *Postgres) All(ctx context.Context) ([]model.Document, error) {
	query := fmt.Sprintf(`SELECT doc::text FROM %s ORDER BY created_at, key`, p.table)

	rows, err := p.pool.Query(ctx, query)
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
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Postgres.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// PostgreSQL error code 23505 is unique_violation
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
