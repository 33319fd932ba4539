package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Relay outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeErrored   = "errored"
	OutcomeSetup     = "setup_failed"
)

// InsightMetrics records snapshot reads and completion relays.
// A nil *InsightMetrics is valid and records nothing.
type InsightMetrics struct {
	relayTotal    *prometheus.CounterVec
	relayChunks   prometheus.Counter
	relayDuration *prometheus.HistogramVec
	snapshotReads *prometheus.HistogramVec
}

// NewInsightMetrics registers the pipeline metrics on the provided registerer.
func NewInsightMetrics(reg prometheus.Registerer) *InsightMetrics {
	if reg == nil {
		return &InsightMetrics{}
	}
	relayTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insight_relay_total",
		Help: "Completion relays by final outcome.",
	}, []string{"outcome"})
	relayChunks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "insight_relay_chunks_total",
		Help: "Completion chunks forwarded to callers.",
	})
	relayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insight_relay_duration_seconds",
		Help:    "Wall time of completion relays from request to end of stream.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
	}, []string{"outcome"})
	snapshotReads := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insight_snapshot_duration_seconds",
		Help:    "Duration of tenant inventory snapshot reads.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	reg.MustRegister(relayTotal, relayChunks, relayDuration, snapshotReads)
	return &InsightMetrics{
		relayTotal:    relayTotal,
		relayChunks:   relayChunks,
		relayDuration: relayDuration,
		snapshotReads: snapshotReads,
	}
}

// ObserveRelay records one finished relay.
func (m *InsightMetrics) ObserveRelay(outcome string, duration time.Duration) {
	if m == nil || m.relayTotal == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.relayTotal.WithLabelValues(outcome).Inc()
	m.relayDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncChunks counts one forwarded chunk.
func (m *InsightMetrics) IncChunks() {
	if m == nil || m.relayChunks == nil {
		return
	}
	m.relayChunks.Inc()
}

// ObserveSnapshot records the duration of a snapshot read.
func (m *InsightMetrics) ObserveSnapshot(duration time.Duration, err error) {
	if m == nil || m.snapshotReads == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.snapshotReads.WithLabelValues(result).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
