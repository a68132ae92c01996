package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	EntriesCreated     uint64
	Lookups            map[string]uint64
	ValidationFailures uint64
	StorageOps         map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                 sync.Mutex
	entriesCreated     uint64
	lookups            map[string]uint64
	validationFailures uint64
	storageOps         map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		lookups:    make(map[string]uint64),
		storageOps: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		EntriesCreated:     m.entriesCreated,
		ValidationFailures: m.validationFailures,
		Lookups:            make(map[string]uint64, len(m.lookups)),
		StorageOps:         make(map[string]uint64, len(m.storageOps)),
	}
	for k, v := range m.lookups {
		snap.Lookups[k] = v
	}
	for k, v := range m.storageOps {
		snap.StorageOps[k] = v
	}
	return snap
}

// IncEntriesCreated adds n created entries.
func (m *InMemoryRecorder) IncEntriesCreated(n int) {
	m.mu.Lock()
	m.entriesCreated += uint64(n)
	m.mu.Unlock()
}

// IncEntryLookup counts a lookup by result.
func (m *InMemoryRecorder) IncEntryLookup(result string) {
	m.mu.Lock()
	m.lookups[result]++
	m.mu.Unlock()
}

// IncValidationFailure counts a rejected request body.
func (m *InMemoryRecorder) IncValidationFailure() {
	m.mu.Lock()
	m.validationFailures++
	m.mu.Unlock()
}

// ObserveStorageDuration counts a storage call by operation.
func (m *InMemoryRecorder) ObserveStorageDuration(op string, duration time.Duration) {
	m.mu.Lock()
	m.storageOps[op]++
	m.mu.Unlock()
}
