// Package metrics exposes Prometheus instrumentation for the contacts service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contacts module.
type Metrics struct {
	// Operation latency by operation name and outcome
	OperationLatency *prometheus.HistogramVec

	// Gateway failures by operation
	GatewayErrors *prometheus.CounterVec

	// Directory and backing store disagreed
	CacheMismatches *prometheus.CounterVec

	// Entries rejected by validation, by field
	ValidationFailures *prometheus.CounterVec

	DirectorySize prometheus.Gauge

	PublishFailures prometheus.Counter
}

// New registers the contacts metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "addressbook_operation_duration_seconds",
			Help:    "Duration of contact operations including the gateway round trip",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation", "outcome"}),

		GatewayErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_gateway_errors_total",
			Help: "Persistence gateway failures by operation",
		}, []string{"operation"}),

		CacheMismatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_cache_mismatches_total",
			Help: "Times the in-memory directory disagreed with the backing store",
		}, []string{"operation"}),

		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "addressbook_validation_failures_total",
			Help: "Entries rejected by validation by offending field",
		}, []string{"field"}),

		DirectorySize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "addressbook_directory_entries",
			Help: "Number of entries held in the in-memory directory",
		}),

		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "addressbook_event_publish_failures_total",
			Help: "Change events that could not be published",
		}),
	}
}

// ObserveOperation records how long an operation took and whether it failed.
func (m *Metrics) ObserveOperation(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.OperationLatency.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

func (m *Metrics) IncrementGatewayError(operation string) {
	if m != nil {
		m.GatewayErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) IncrementCacheMismatch(operation string) {
	if m != nil {
		m.CacheMismatches.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) IncrementValidationFailure(field string) {
	if m != nil {
		m.ValidationFailures.WithLabelValues(field).Inc()
	}
}

func (m *Metrics) SetDirectorySize(n int) {
	if m != nil {
		m.DirectorySize.Set(float64(n))
	}
}

func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
