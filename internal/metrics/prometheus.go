package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "entryd"

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	entriesCreated     prometheus.Counter
	lookups            *prometheus.CounterVec
	validationFailures prometheus.Counter
	storageDuration    *prometheus.HistogramVec
}

// NewPrometheus registers the entry metrics on reg.
// Use a dedicated registry per process; registering twice panics.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	auto := promauto.With(reg)

	return &PrometheusRecorder{
		entriesCreated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_created_total",
			Help:      "Total number of entries persisted by the create route",
		}),
		lookups: auto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entry_lookups_total",
				Help:      "Total number of get-by-key lookups by result",
			},
			[]string{"result"},
		),
		validationFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Total number of request bodies rejected by schema validation",
		}),
		storageDuration: auto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_operation_duration_seconds",
				Help:      "Duration of collection calls by operation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// IncEntriesCreated adds n created entries.
func (p *PrometheusRecorder) IncEntriesCreated(n int) {
	p.entriesCreated.Add(float64(n))
}

// IncEntryLookup counts a lookup by result.
func (p *PrometheusRecorder) IncEntryLookup(result string) {
	p.lookups.WithLabelValues(result).Inc()
}

// IncValidationFailure counts a rejected request body.
func (p *PrometheusRecorder) IncValidationFailure() {
	p.validationFailures.Inc()
}

// ObserveStorageDuration records the duration of a collection call.
func (p *PrometheusRecorder) ObserveStorageDuration(op string, duration time.Duration) {
	p.storageDuration.WithLabelValues(op).Observe(duration.Seconds())
}
