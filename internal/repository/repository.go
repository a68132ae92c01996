// Package repository provides the storage layer for entry documents.
//
// A Collection is a handle to one named document collection. Each backend
// (Postgres, Redis, SQLite, in-process memory) assigns keys and revision
// markers on save and owns every persisted document.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/entryd/entryd/internal/model"
)

// Common errors for collection operations.
var (
	ErrNotFound              = errors.New("document not found")
	ErrConflict              = errors.New("document key already exists")
	ErrUnknownDriver         = errors.New("unknown storage driver")
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// Collection is the storage primitive the entry service is built on.
// Every method is a single, independently atomic storage call.
type Collection interface {
	// Name returns the collection name.
	Name() string
	// Save persists doc under a newly generated key and returns the
	// assigned meta. The stored document includes the meta fields.
	Save(ctx context.Context, doc model.Document) (model.Meta, error)
	// Lookup fetches one document by key.
	Lookup(ctx context.Context, key string) Lookup
	// All returns every document in the store's iteration order.
	All(ctx context.Context) ([]model.Document, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// Close releases the underlying connections.
	Close() error
}

// LookupStatus is the outcome of a Lookup.
type LookupStatus int

const (
	// LookupFound means Document holds the stored document.
	LookupFound LookupStatus = iota
	// LookupNotFound means no document exists under the key.
	LookupNotFound
	// LookupFailed means the store could not answer; Err holds the cause.
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupFailed:
		return "failed"
	default:
		return fmt.Sprintf("LookupStatus(%d)", int(s))
	}
}

// Lookup is the typed result of Collection.Lookup.
type Lookup struct {
	Status   LookupStatus
	Document model.Document
	Err      error
}

// Found builds a successful lookup.
func Found(doc model.Document) Lookup {
	return Lookup{Status: LookupFound, Document: doc}
}

// NotFound builds a lookup for a missing key.
func NotFound(key string) Lookup {
	return Lookup{Status: LookupNotFound, Err: fmt.Errorf("%w: %s", ErrNotFound, key)}
}

// Failed builds a lookup for a storage failure.
func Failed(err error) Lookup {
	return Lookup{Status: LookupFailed, Err: err}
}

// NewMeta generates the key and revision marker for a new document.
// Keys are ULIDs, so they sort by creation time.
func NewMeta() model.Meta {
	return model.Meta{
		Key: ulid.Make().String(),
		Rev: uuid.NewString(),
	}
}

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateCollectionName checks that name is usable as a table or key name
// by every backend.
func ValidateCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollectionName, name)
	}
	return nil
}
