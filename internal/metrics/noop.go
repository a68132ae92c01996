package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncEntriesCreated is a no-op.
func (n *NoopRecorder) IncEntriesCreated(count int) {}

// IncEntryLookup is a no-op.
func (n *NoopRecorder) IncEntryLookup(result string) {}

// IncValidationFailure is a no-op.
func (n *NoopRecorder) IncValidationFailure() {}

// ObserveStorageDuration is a no-op.
func (n *NoopRecorder) ObserveStorageDuration(op string, duration time.Duration) {}
