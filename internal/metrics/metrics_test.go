package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordUpdate("callback")
	m.RecordLookup("info", "found")
	m.RecordLookup("info", "found")
	m.RecordUpstream("bricklink", "success", 120*time.Millisecond)
	m.RecordCacheHit("bricklink")
	m.RecordCacheMiss("bricklink")
	m.RecordPruned(3)
	m.RecordPruned(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("callback")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LookupsTotal.WithLabelValues("info", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("bricklink", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("bricklink")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("bricklink")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CachePrunedTotal))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordUpdate("text")
		m.RecordLookup("price", "empty")
		m.RecordUpstream("s3", "error", time.Second)
		m.RecordCacheHit("bricklink")
		m.RecordCacheMiss("bricklink")
		m.RecordPruned(1)
	})
}
