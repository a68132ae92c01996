// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Storage operation labels.
const (
	OpSave   = "save"
	OpLookup = "lookup"
	OpAll    = "all"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Entry metrics
	IncEntriesCreated(n int)
	IncEntryLookup(result string) // result: "found", "not_found" or "failed"
	IncValidationFailure()

	// Storage metrics
	ObserveStorageDuration(op string, duration time.Duration)
}
