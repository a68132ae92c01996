// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entryd/entryd/internal/metrics"
	"github.com/entryd/entryd/internal/model"
	"github.com/entryd/entryd/internal/repository"
)

// Service errors.
var (
	ErrEmptyKey = errors.New("entry key is required")
)

// EntryService handles entry business logic over one collection.
type EntryService struct {
	coll    repository.Collection
	metrics metrics.Recorder
}

// NewEntryService creates a new EntryService.
func NewEntryService(coll repository.Collection, recorder metrics.Recorder) *EntryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &EntryService{
		coll:    coll,
		metrics: recorder,
	}
}

// CollectionName returns the name of the backing collection.
func (s *EntryService) CollectionName() string {
	return s.coll.Name()
}

// List returns every stored document in the collection's iteration order.
func (s *EntryService) List(ctx context.Context) ([]model.Document, error) {
	start := time.Now()
	docs, err := s.coll.All(ctx)
	s.metrics.ObserveStorageDuration(metrics.OpAll, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

// Create saves every entry of req in input order and returns the stored
// documents, each merged with its assigned meta.
//
// A failed save aborts the remaining entries. Entries saved before the
// failure stay persisted.
func (s *EntryService) Create(ctx context.Context, req model.CreateRequest) ([]model.Document, error) {
	entries := req.Entries()
	out := make([]model.Document, 0, len(entries))

	for i, entry := range entries {
		doc := entry.Document()

		start := time.Now()
		meta, err := s.coll.Save(ctx, doc)
		s.metrics.ObserveStorageDuration(metrics.OpSave, time.Since(start))
		if err != nil {
			s.metrics.IncEntriesCreated(len(out))
			return out, fmt.Errorf("save entry %d: %w", i, err)
		}

		out = append(out, doc.WithMeta(meta))
	}

	s.metrics.IncEntriesCreated(len(out))
	return out, nil
}

// Get looks up one document by key. The Status of the returned Lookup tells
// the caller which case applies.
func (s *EntryService) Get(ctx context.Context, key string) repository.Lookup {
	if key == "" {
		return repository.Failed(ErrEmptyKey)
	}

	start := time.Now()
	res := s.coll.Lookup(ctx, key)
	s.metrics.ObserveStorageDuration(metrics.OpLookup, time.Since(start))
	s.metrics.IncEntryLookup(res.Status.String())

	return res
}

// Ping checks the backing collection.
func (s *EntryService) Ping(ctx context.Context) error {
	return s.coll.Ping(ctx)
}
