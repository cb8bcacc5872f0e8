// Package monitoring defines the Prometheus metrics of a run.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a run. Each instance owns its
// registry so several engines can coexist in one process.
type Metrics struct {
	Registry      *prometheus.Registry
	FetchesTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	CacheLookups  *prometheus.CounterVec
	Comparisons   *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
	PairsQueued   prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitesimilarity_fetches_total",
			Help: "The total number of page fetches issued",
		}, []string{"outcome"}), // 'ok', 'failed'
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitesimilarity_fetch_duration_seconds",
			Help:    "Duration of page fetches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitesimilarity_cache_lookups_total",
			Help: "Fetch cache lookups by result",
		}, []string{"result"}), // 'hit', 'miss'
		Comparisons: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitesimilarity_comparisons_total",
			Help: "Processed comparison pairs by outcome",
		}, []string{"outcome"}), // 'match', 'no_match', 'skipped'
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitesimilarity_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'sink_failed', 'worker_panic'
		PairsQueued: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitesimilarity_pairs_queued",
			Help: "Pairs produced but not yet picked up by a worker",
		}),
	}
}

func (m *Metrics) ObserveFetch(ok bool, took time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(took.Seconds())
}

func (m *Metrics) IncCacheLookup(hit bool) {
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) IncComparison(outcome string) {
	m.Comparisons.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
