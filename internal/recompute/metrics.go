package recompute

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the recompute loop.
type Metrics struct {
	CyclesTotal       prometheus.Counter
	ProjectsScored    prometheus.Counter
	Conflicts         prometheus.Counter
	CollectorFailures *prometheus.CounterVec
	DegradedCycles    *prometheus.CounterVec
	CycleDuration     prometheus.Histogram
}

// NewMetrics registers and returns the recompute metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CyclesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pulsecheck_recompute_cycles_total",
			Help: "Completed recompute cycles.",
		}),
		ProjectsScored: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pulsecheck_projects_scored_total",
			Help: "Projects successfully rescored.",
		}),
		Conflicts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pulsecheck_score_conflicts_total",
			Help: "Score writes aborted by an optimistic-concurrency conflict.",
		}),
		CollectorFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pulsecheck_collector_failures_total",
			Help: "Collector failures after retry, by dimension and kind.",
		}, []string{"dimension", "kind"}),
		DegradedCycles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pulsecheck_degraded_dimensions_total",
			Help: "Dimensions that fell back to cached subscores.",
		}, []string{"dimension"}),
		CycleDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "pulsecheck_recompute_cycle_seconds",
			Help:    "Wall time of a full recompute cycle.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}
