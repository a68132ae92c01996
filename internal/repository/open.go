package repository

import (
	"context"
	"fmt"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Options selects and configures a storage backend.
type Options struct {
	Driver      string
	Collection  string
	DatabaseURL string
	RedisURL    string
	SQLitePath  string
}

// Open connects to the configured backend and makes sure the collection
// exists. The caller owns the returned Collection and must Close it.
func Open(ctx context.Context, opts Options) (Collection, error) {
	switch opts.Driver {
	case DriverPostgres:
		pg, err := NewPostgres(ctx, opts.DatabaseURL, opts.Collection)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureCollection(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil

	case DriverRedis:
		return NewRedis(ctx, opts.RedisURL, opts.Collection)

	case DriverSQLite:
		return NewSQLite(ctx, opts.SQLitePath, opts.Collection)

	case DriverMemory:
		if err := ValidateCollectionName(opts.Collection); err != nil {
			return nil, err
		}
		return NewMemory(opts.Collection), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
