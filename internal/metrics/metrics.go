// Package metrics holds the Prometheus instruments of the bot. All Record
// methods accept a nil receiver so metrics stay optional for callers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Telegram update metrics
	UpdatesTotal *prometheus.CounterVec

	// Lookup metrics
	LookupsTotal *prometheus.CounterVec

	// Upstream metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamDurationSeconds *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Housekeeping metrics
	CachePrunedTotal prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		UpdatesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "brickbot_updates_total",
				Help: "Total number of Telegram updates by type",
			},
			[]string{"type"}, // type: text, command, callback, document
		),

		LookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "brickbot_lookups_total",
				Help: "Total number of catalog lookups by operation and result",
			},
			[]string{"operation", "result"}, // result: found, empty, malformed
		),

		UpstreamRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "brickbot_upstream_requests_total",
				Help: "Total number of upstream API requests by service and status",
			},
			[]string{"service", "status"},
		),

		UpstreamDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brickbot_upstream_duration_seconds",
				Help:    "Upstream API request duration in seconds by service",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"service"}, // service: bricklink, rebrickable, s3
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "brickbot_cache_hits_total",
				Help: "Total number of cache hits by namespace",
			},
			[]string{"namespace"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "brickbot_cache_misses_total",
				Help: "Total number of cache misses by namespace",
			},
			[]string{"namespace"},
		),

		CachePrunedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "brickbot_cache_pruned_total",
				Help: "Total number of expired cache entries removed",
			},
		),
	}
}

func (m *Metrics) RecordUpdate(updateType string) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(updateType).Inc()
}

func (m *Metrics) RecordLookup(operation, result string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) RecordUpstream(service, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(service, status).Inc()
	m.UpstreamDurationSeconds.WithLabelValues(service).Observe(d.Seconds())
}

func (m *Metrics) RecordCacheHit(namespace string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(namespace).Inc()
}

func (m *Metrics) RecordCacheMiss(namespace string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(namespace).Inc()
}

func (m *Metrics) RecordPruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.CachePrunedTotal.Add(float64(n))
}
