package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks pipeline throughput and stage latency. A nil *Metrics is
// valid and records nothing, so tests and one-shot CLI runs can skip
// registration.
type Metrics struct {
	claimsProcessed *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers pipeline metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		claimsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claims_processed_total",
				Help: "Total number of claims processed, by terminal outcome.",
			},
			[]string{"outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "claim_stage_duration_seconds",
				Help:    "Duration of each adjudication stage.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"stage"},
		),
	}

	if err := reg.Register(m.claimsProcessed); err != nil {
		return nil, err
	}
	if err := reg.Register(m.stageDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordOutcome increments the processed-claims counter for an outcome.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.claimsProcessed.WithLabelValues(outcome).Inc()
}

// ObserveStage records one stage execution's duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
