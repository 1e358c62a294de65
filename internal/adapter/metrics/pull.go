package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pull results used as the "result" label.
const (
	PullAccepted    = "accepted"
	PullRateLimited = "rate_limited"
	PullInvalid     = "invalid"
)

// PullMetrics holds Prometheus metrics for the pull pipeline.
type PullMetrics struct {
	PullsProcessed     *prometheus.CounterVec
	PullsByDirection   *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
}

// NewPullMetrics creates and registers pull pipeline metrics on the given registry.
func NewPullMetrics(reg prometheus.Registerer) *PullMetrics {
	m := &PullMetrics{
		PullsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pulls_processed_total",
			Help:      "Total number of inbound pull messages, by result.",
		}, []string{"result"}),
		PullsByDirection: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pulls_by_direction_total",
			Help:      "Total number of applied pulls, by direction.",
		}, []string{"direction"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pulls_processing_duration_seconds",
			Help:      "Duration from accepting a pull to publishing the new state, in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
	}

	reg.MustRegister(m.PullsProcessed, m.PullsByDirection, m.ProcessingDuration)
	return m
}
