package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/tugofwar/internal/adapter/metrics"
	"github.com/pscheid92/tugofwar/internal/platform/config"
)

type Server struct {
	echo   *echo.Echo
	config *config.Config
	clock  clockwork.Clock

	websocketHandler http.Handler
	metricsHandler   http.Handler
	httpMetrics      *metrics.HTTPMetrics

	healthChecks []HealthCheck
	gameStatus   GameStatus
	startTime    time.Time
}

// NewServer wires the routes. Request contexts derive from baseCtx, so cancelling
// it ends long-lived WebSocket sessions, which Shutdown does not track.
// httpMetrics and gameStatus may be nil.
func NewServer(baseCtx context.Context, cfg *config.Config, clock clockwork.Clock, websocketHandler, metricsHandler http.Handler, httpMetrics *metrics.HTTPMetrics, healthChecks []HealthCheck, gameStatus GameStatus) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.BaseContext = func(net.Listener) context.Context { return baseCtx }

	srv := &Server{
		echo:             e,
		config:           cfg,
		clock:            clock,
		websocketHandler: websocketHandler,
		metricsHandler:   metricsHandler,
		httpMetrics:      httpMetrics,
		healthChecks:     healthChecks,
		gameStatus:       gameStatus,
		startTime:        clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP lets the server be exercised without binding a port.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
