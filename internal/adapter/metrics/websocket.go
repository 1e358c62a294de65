package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebSocketMetrics holds Prometheus metrics for game connections.
type WebSocketMetrics struct {
	ActiveConnections   prometheus.Gauge
	ConnectionsRejected *prometheus.CounterVec
	MessagesRelayed     prometheus.Counter
	SessionDuration     prometheus.Histogram
}

// NewWebSocketMetrics creates and registers WebSocket metrics on the given registry.
func NewWebSocketMetrics(reg prometheus.Registerer) *WebSocketMetrics {
	m := &WebSocketMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_connections",
			Help:      "Number of active WebSocket sessions.",
		}),
		ConnectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "connections_rejected_total",
			Help:      "Total number of WebSocket connections rejected before upgrade, by reason.",
		}, []string{"reason"}),
		MessagesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "messages_relayed_total",
			Help:      "Total number of game state messages written to clients.",
		}),
		SessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "session_duration_seconds",
			Help:      "Lifetime of WebSocket sessions in seconds.",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		}),
	}

	reg.MustRegister(m.ActiveConnections, m.ConnectionsRejected, m.MessagesRelayed, m.SessionDuration)
	return m
}
