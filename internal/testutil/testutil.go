// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/entryd/entryd/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// DropTable removes a collection table created by a test.
func DropTable(ctx context.Context, pool *pgxpool.Pool, name string) error {
	query := "DROP TABLE IF EXISTS " + pgx.Identifier{name}.Sanitize()
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	return nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestEntry creates a test entry with an extra field.
func NewTestEntry(t testing.TB, name string, age int) model.Entry {
	t.Helper()
	return model.Entry{
		Name:  name,
		Age:   json.Number(strconv.Itoa(age)),
		Extra: map[string]any{"source": "test"},
	}
}

// UniqueCollection generates a collection name that is safe to use as a
// table or key name and unlikely to collide between test runs.
func UniqueCollection(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
