package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed by the server.
type Metrics struct {
	JobsSubmitted     prometheus.Counter
	JobsCompleted     prometheus.Counter
	JobsFailed        prometheus.Counter
	TransactionsTotal *prometheus.CounterVec
	JobDuration       prometheus.Histogram
	ActiveJobs        prometheus.Gauge
}

// NewMetrics registers the server metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "offshore_radar",
			Name:      "jobs_submitted_total",
			Help:      "Number of analysis jobs submitted.",
		}),
		JobsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "offshore_radar",
			Name:      "jobs_completed_total",
			Help:      "Number of analysis jobs completed successfully.",
		}),
		JobsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "offshore_radar",
			Name:      "jobs_failed_total",
			Help:      "Number of analysis jobs that failed.",
		}),
		TransactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offshore_radar",
			Name:      "transactions_classified_total",
			Help:      "Number of transactions classified, by verdict label.",
		}, []string{"label"}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "offshore_radar",
			Name:      "job_duration_seconds",
			Help:      "Wall-clock duration of analysis jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		ActiveJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "offshore_radar",
			Name:      "active_jobs",
			Help:      "Number of jobs currently running.",
		}),
	}
}
