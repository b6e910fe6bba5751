package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	JobsSubmitted     prometheus.Counter
	JobsCompleted     prometheus.Counter
	JobsFailed        prometheus.Counter
	FallbackSuccesses prometheus.Counter
	JobDuration       prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "styleforge",
			Name:      "jobs_submitted_total",
			Help:      "Total transformation jobs submitted.",
		}),
		JobsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "styleforge",
			Name:      "jobs_completed_total",
			Help:      "Total jobs that reached the completed state.",
		}),
		JobsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "styleforge",
			Name:      "jobs_failed_total",
			Help:      "Total jobs that reached the failed state.",
		}),
		FallbackSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "styleforge",
			Name:      "fallback_successes_total",
			Help:      "Total degraded-fidelity completions via the fallback engine.",
		}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "styleforge",
			Name:      "job_duration_seconds",
			Help:      "Wall-clock transformation duration.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
