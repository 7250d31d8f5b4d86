package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	GraphsResolved    prometheus.Counter
	IdentifierMerges  prometheus.Counter
	DiscoveryRuns     prometheus.Counter
	DiscoveryTopScore prometheus.Histogram
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		GraphsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dsarhub_identity_graphs_resolved_total",
			Help: "Total number of identity graphs built from case intake",
		}),
		IdentifierMerges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dsarhub_identifier_merges_total",
			Help: "Total number of connector result batches merged into graphs",
		}),
		DiscoveryRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dsarhub_discovery_runs_total",
			Help: "Total number of discovery ranking runs",
		}),
		DiscoveryTopScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dsarhub_discovery_top_score",
			Help:    "Top suggestion score per discovery run",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dsarhub_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// IncrementGraphsResolved increments the resolved graph counter by 1.
func (m *Metrics) IncrementGraphsResolved() {
	m.GraphsResolved.Inc()
}

// IncrementIdentifierMerges increments the merge counter by 1.
func (m *Metrics) IncrementIdentifierMerges() {
	m.IdentifierMerges.Inc()
}

// ObserveDiscoveryRun records one ranking run and its top score.
func (m *Metrics) ObserveDiscoveryRun(topScore int) {
	m.DiscoveryRuns.Inc()
	m.DiscoveryTopScore.Observe(float64(topScore))
}
