package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/entryd/entryd/internal/model"
)

// Memory is an in-process Collection. Documents are stored encoded so that
// callers never share maps with the store. Iteration order is insertion order.
type Memory struct {
	name string

	mu    sync.RWMutex
	order []string
	docs  map[string][]byte
}

// NewMemory creates an empty in-process collection.
func NewMemory(name string) *Memory {
	return &Memory{
		name: name,
		docs: make(map[string][]byte),
	}
}

// Name returns the collection name.
func (m *Memory) Name() string {
	return m.name
}

// Save stores doc under a new key.
func (m *Memory) Save(ctx context.Context, doc model.Document) (model.Meta, error) {
	if err := ctx.Err(); err != nil {
		return model.Meta{}, err
	}

	meta := NewMeta()
	data, err := json.Marshal(doc.WithMeta(meta))
	if err != nil {
		return model.Meta{}, fmt.Errorf("failed to encode document: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[meta.Key] = data
	m.order = append(m.order, meta.Key)

	return meta, nil
}

// Lookup fetches a document by key.
func (m *Memory) Lookup(ctx context.Context, key string) Lookup {
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}

	m.mu.RLock()
	data, ok := m.docs[key]
	m.mu.RUnlock()

	if !ok {
		return NotFound(key)
	}

	doc, err := model.DecodeDocument(data)
	if err != nil {
		return Failed(fmt.Errorf("failed to decode document %s: %w", key, err))
	}
	return Found(doc)
}

// All returns every document in insertion order.
func (m *Memory) All(ctx context.Context) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]model.Document, 0, len(m.order))
	for _, key := range m.order {
		doc, err := model.DecodeDocument(m.docs[key])
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", key, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
