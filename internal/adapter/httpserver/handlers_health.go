package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/tugofwar/internal/domain"
	"github.com/pscheid92/tugofwar/internal/platform/version"
)

const readinessProbeTimeout = 5 * time.Second

// HealthCheck is a named dependency check run by /health/ready.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// GameStatus reads the current game state, including active users.
type GameStatus func(ctx context.Context) (domain.GameState, error)

type readinessResponse struct {
	Status      string            `json:"status"`
	FailedCheck string            `json:"failed_check,omitempty"`
	Error       string            `json:"error,omitempty"`
	Game        *domain.GameState `json:"game,omitempty"`
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleLiveness(c echo.Context) error {
	response := map[string]any{
		"status": "ok",
		"uptime": s.clock.Since(s.startTime).Seconds(),
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

// handleReadiness runs the dependency checks in order, then reads the game
// state. The first failure makes the instance unready.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	code, response := http.StatusOK, s.readiness(ctx)
	if response.Status != "ready" {
		code = http.StatusServiceUnavailable
	}
	if err := c.JSON(code, response); err != nil {
		return fmt.Errorf("failed to write readiness response: %w", err)
	}
	return nil
}

func (s *Server) readiness(ctx context.Context) readinessResponse {
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			return readinessResponse{Status: "unhealthy", FailedCheck: hc.Name, Error: err.Error()}
		}
	}

	if s.gameStatus == nil {
		return readinessResponse{Status: "ready"}
	}
	state, err := s.gameStatus(ctx)
	if err != nil {
		return readinessResponse{Status: "unhealthy", FailedCheck: "game_state", Error: err.Error()}
	}
	return readinessResponse{Status: "ready", Game: &state}
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get(version.Server)); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
