package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Upstream API metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	UpstreamFailures *prometheus.CounterVec

	// Session metrics
	SessionsCreated     prometheus.Counter
	SessionsInvalidated *prometheus.CounterVec

	// Report editor metrics
	AutosaveFlushes  *prometheus.CounterVec
	AutosaveLatency  prometheus.Histogram
	GUTScoreMismatch prometheus.Counter

	// Dialog queue metrics
	DialogsPending prometheus.Gauge

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisLatency    *prometheus.HistogramVec

	// Audit metrics
	AuditRecords *prometheus.CounterVec
}

var (
	defaultMu      sync.Mutex
	defaultMetrics = map[string]*Metrics{}
)

// Default returns the process-wide metrics for namespace, registering them on first use.
func Default(namespace string) *Metrics {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if m, ok := defaultMetrics[namespace]; ok {
		return m
	}
	m := NewMetrics(namespace, "console")
	defaultMetrics[namespace] = m
	return m
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer), namespace, subsystem)
}

// New creates metrics bound to a private registry. Used by tests and tools that
// must not touch the default registerer.
func New(namespace string) *Metrics {
	return newMetrics(promauto.With(prometheus.NewRegistry()), namespace, "console")
}

func newMetrics(f promauto.Factory, namespace, subsystem string) *Metrics {
	return &Metrics{
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests sent to the UBS API",
		}, []string{"method", "status"}),
		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of requests sent to the UBS API",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		UpstreamFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_failures_total",
			Help:      "Requests to the UBS API that failed before a response",
		}, []string{"reason"}),

		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_created_total",
			Help:      "Total number of console sessions created",
		}),
		SessionsInvalidated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_invalidated_total",
			Help:      "Total number of console sessions invalidated",
		}, []string{"reason"}),

		AutosaveFlushes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "autosave_flushes_total",
			Help:      "Debounced report autosaves by outcome",
		}, []string{"outcome"}),
		AutosaveLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "autosave_duration_seconds",
			Help:      "Duration of autosave PATCH requests",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		GUTScoreMismatch: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gut_score_mismatch_total",
			Help:      "Problems whose stored GUT score differs from the recomputed product",
		}),

		DialogsPending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dialogs_pending",
			Help:      "Confirm and prompt dialogs waiting for an answer",
		}),

		RedisOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "redis_operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),
		RedisLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "redis_operation_duration_seconds",
			Help:      "Duration of Redis operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"operation"}),

		AuditRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "audit_records_total",
			Help:      "Audit records written by outcome",
		}, []string{"status"}),
	}
}
