package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/entryd/entryd/internal/model"
)

// testCollection runs the behavior every backend must share.
func testCollection(t *testing.T, newCollection func(t *testing.T) Collection) {
	t.Helper()

	t.Run("EmptyList", func(t *testing.T) {
		c := newCollection(t)

		docs, err := c.All(context.Background())
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if docs == nil || len(docs) != 0 {
			t.Errorf("All() = %v, want empty slice", docs)
		}
	})

	t.Run("SaveThenLookup", func(t *testing.T) {
		ctx := context.Background()
		c := newCollection(t)

		doc := model.Document{"name": "Ann", "age": 30, "city": "Oslo"}
		meta, err := c.Save(ctx, doc)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if meta.Key == "" || meta.Rev == "" {
			t.Fatalf("Save() returned empty meta: %+v", meta)
		}

		lookup := c.Lookup(ctx, meta.Key)
		if lookup.Status != LookupFound {
			t.Fatalf("Lookup() status = %s, err = %v", lookup.Status, lookup.Err)
		}
		got := lookup.Document
		if got["name"] != "Ann" {
			t.Errorf("name = %v, want Ann", got["name"])
		}
		if got.Key() != meta.Key || got.Rev() != meta.Rev {
			t.Errorf("stored meta = %s/%s, want %s/%s", got.Key(), got.Rev(), meta.Key, meta.Rev)
		}
		if got["city"] != "Oslo" {
			t.Errorf("city = %v, want Oslo", got["city"])
		}

		again := c.Lookup(ctx, meta.Key)
		if again.Document.Rev() != got.Rev() || again.Document["name"] != got["name"] {
			t.Error("repeated lookup returned a different document")
		}
	})

	t.Run("LookupMissing", func(t *testing.T) {
		c := newCollection(t)

		lookup := c.Lookup(context.Background(), "doesnotexist")
		if lookup.Status != LookupNotFound {
			t.Fatalf("Lookup() status = %s, want not_found", lookup.Status)
		}
		if !errors.Is(lookup.Err, ErrNotFound) {
			t.Errorf("Lookup() err = %v, want ErrNotFound", lookup.Err)
		}
	})

	t.Run("DistinctKeysAndList", func(t *testing.T) {
		ctx := context.Background()
		c := newCollection(t)

		keys := make(map[string]bool)
		for _, name := range []string{"A", "B", "C"} {
			meta, err := c.Save(ctx, model.Document{"name": name, "age": 1})
			if err != nil {
				t.Fatalf("Save(%s) error = %v", name, err)
			}
			if keys[meta.Key] {
				t.Fatalf("duplicate key %s", meta.Key)
			}
			keys[meta.Key] = true
		}

		docs, err := c.All(ctx)
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if len(docs) != 3 {
			t.Fatalf("len(All()) = %d, want 3", len(docs))
		}
		for _, doc := range docs {
			if !keys[doc.Key()] {
				t.Errorf("unexpected document %v", doc)
			}
		}
	})

	t.Run("SaveDoesNotKeepCallerMap", func(t *testing.T) {
		ctx := context.Background()
		c := newCollection(t)

		doc := model.Document{"name": "Ann", "age": 30}
		meta, err := c.Save(ctx, doc)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		doc["name"] = "changed"

		lookup := c.Lookup(ctx, meta.Key)
		if lookup.Document["name"] != "Ann" {
			t.Errorf("stored document changed with caller map: %v", lookup.Document)
		}
		if _, ok := doc[model.FieldKey]; ok {
			t.Error("Save must not add meta fields to the caller's document")
		}
	})
}

func TestMemory(t *testing.T) {
	testCollection(t, func(t *testing.T) Collection {
		return NewMemory("entries")
	})
}

func TestMemory_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory("entries")
	if _, err := m.Save(ctx, model.Document{"name": "A"}); err == nil {
		t.Error("expected Save to fail on canceled context")
	}
	if lookup := m.Lookup(ctx, "k"); lookup.Status != LookupFailed {
		t.Errorf("Lookup() status = %s, want failed", lookup.Status)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestSQLite(t *testing.T) {
	testCollection(t, func(t *testing.T) Collection {
		path := filepath.Join(t.TempDir(), "entries.db")
		s, err := NewSQLite(context.Background(), path, "entries")
		if err != nil {
			t.Fatalf("NewSQLite() error = %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLite_ReopenKeepsDocuments(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.db")

	s, err := NewSQLite(ctx, path, "entries")
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	meta, err := s.Save(ctx, model.Document{"name": "Ann", "age": 30})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLite(ctx, path, "entries")
	if err != nil {
		t.Fatalf("NewSQLite() reopen error = %v", err)
	}
	defer reopened.Close()

	if lookup := reopened.Lookup(ctx, meta.Key); lookup.Status != LookupFound {
		t.Errorf("Lookup() after reopen status = %s, err = %v", lookup.Status, lookup.Err)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	c, err := Open(ctx, Options{Driver: DriverMemory, Collection: "entries"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if c.Name() != "entries" {
		t.Errorf("Name() = %s, want entries", c.Name())
	}

	if _, err := Open(ctx, Options{Driver: "mongo", Collection: "entries"}); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open(mongo) error = %v, want ErrUnknownDriver", err)
	}

	if _, err := Open(ctx, Options{Driver: DriverMemory, Collection: "bad name;"}); !errors.Is(err, ErrInvalidCollectionName) {
		t.Errorf("Open(bad name) error = %v, want ErrInvalidCollectionName", err)
	}
}

func TestValidateCollectionName(t *testing.T) {
	t.Parallel()

	valid := []string{"entries", "myFoxxCollection", "_private", "a1"}
	for _, name := range valid {
		if err := ValidateCollectionName(name); err != nil {
			t.Errorf("ValidateCollectionName(%q) error = %v", name, err)
		}
	}

	invalid := []string{"", "1abc", "has space", `x"; DROP TABLE y`, "dash-name"}
	for _, name := range invalid {
		if err := ValidateCollectionName(name); err == nil {
			t.Errorf("ValidateCollectionName(%q) expected error", name)
		}
	}
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	a, b := NewMeta(), NewMeta()
	if a.Key == b.Key || a.Rev == b.Rev {
		t.Errorf("NewMeta() returned duplicates: %+v %+v", a, b)
	}
	if len(a.Key) != 26 {
		t.Errorf("len(Key) = %d, want 26 (ULID)", len(a.Key))
	}
}

func TestLookupStatus_String(t *testing.T) {
	t.Parallel()

	tests := map[LookupStatus]string{
		LookupFound:     "found",
		LookupNotFound:  "not_found",
		LookupFailed:    "failed",
		LookupStatus(9): "LookupStatus(9)",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("String() = %s, want %s", got, want)
		}
	}
}
