// Package metrics exposes Prometheus collectors for the research service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sourceFetchesTotal         *prometheus.CounterVec
	sourceFetchDurationSeconds *prometheus.HistogramVec
	researchRunsTotal          *prometheus.CounterVec
	scheduledTicksTotal        prometheus.Counter
	digestsTotal               *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourceFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_source_fetches_total",
				Help: "Total number of source fetches, labeled by source and outcome.",
			},
			[]string{"source", "outcome"},
		)

		sourceFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "research_source_fetch_duration_seconds",
				Help:    "Histogram of source fetch latencies, labeled by source.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		)

		researchRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_runs_total",
				Help: "Total number of research runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scheduledTicksTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "research_scheduled_ticks_total",
				Help: "Total number of scheduler tick firings.",
			},
		)

		digestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "research_digests_total",
				Help: "Total number of digest delivery attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// ObserveSourceFetch records one source fetch outcome and its duration.
// A no-op before Init so library callers and tests need no setup.
func ObserveSourceFetch(source, outcome string, d time.Duration) {
	if sourceFetchesTotal == nil {
		return
	}
	sourceFetchesTotal.WithLabelValues(source, outcome).Inc()
	sourceFetchDurationSeconds.WithLabelValues(source).Observe(d.Seconds())
}

// IncRun records one completed research run by outcome ("ok" or "failed").
func IncRun(outcome string) {
	if researchRunsTotal == nil {
		return
	}
	researchRunsTotal.WithLabelValues(outcome).Inc()
}

// IncTick records one scheduler tick firing.
func IncTick() {
	if scheduledTicksTotal == nil {
		return
	}
	scheduledTicksTotal.Inc()
}

// IncDigest records one digest delivery attempt by outcome.
func IncDigest(outcome string) {
	if digestsTotal == nil {
		return
	}
	digestsTotal.WithLabelValues(outcome).Inc()
}
