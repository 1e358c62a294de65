package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/tugofwar/internal/adapter/metrics"
	"github.com/pscheid92/tugofwar/internal/platform/config"
)

type serverOption func(*serverOptions)

type serverOptions struct {
	websocketHandler http.Handler
	metricsHandler   http.Handler
	httpMetrics      *metrics.HTTPMetrics
	healthChecks     []HealthCheck
	gameStatus       GameStatus
	clock            clockwork.Clock
}

func withHealthChecks(checks ...HealthCheck) serverOption {
	return func(o *serverOptions) { o.healthChecks = checks }
}

func withGameStatus(status GameStatus) serverOption {
	return func(o *serverOptions) { o.gameStatus = status }
}

func withWebSocketHandler(h http.Handler) serverOption {
	return func(o *serverOptions) { o.websocketHandler = h }
}

func withMetrics(h http.Handler, m *metrics.HTTPMetrics) serverOption {
	return func(o *serverOptions) {
		o.metricsHandler = h
		o.httpMetrics = m
	}
}

func withClock(clock clockwork.Clock) serverOption {
	return func(o *serverOptions) { o.clock = clock }
}

func newTestServer(t *testing.T, opts ...serverOption) *Server {
	t.Helper()
	o := &serverOptions{
		websocketHandler: http.NotFoundHandler(),
		clock:            clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0)),
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg := &config.Config{Port: "0", AppEnv: "test"}
	return NewServer(context.Background(), cfg, o.clock, o.websocketHandler, o.metricsHandler, o.httpMetrics, o.healthChecks, o.gameStatus)
}
