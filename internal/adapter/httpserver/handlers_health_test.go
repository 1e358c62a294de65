package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/tugofwar/internal/domain"
	"github.com/pscheid92/tugofwar/internal/platform/version"
)

func healthOK(_ context.Context) error { return nil }

func healthErr(msg string) func(context.Context) error {
	return func(_ context.Context) error { return errors.New(msg) }
}

func TestHandleLiveness(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	srv := newTestServer(t, withClock(clock))
	clock.Advance(90 * time.Second)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, srv.handleLiveness(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","uptime":90}`, rec.Body.String())
}

func TestHandleReadiness_AllHealthy(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, withHealthChecks(HealthCheck{Name: "redis", Check: healthOK}))

	require.NoError(t, srv.handleReadiness(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHandleReadiness_NoChecks(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t)

	require.NoError(t, srv.handleReadiness(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadiness_RedisDown(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, withHealthChecks(
		HealthCheck{Name: "redis", Check: healthErr("connection refused")},
		HealthCheck{Name: "never_reached", Check: healthOK},
	))

	require.NoError(t, srv.handleReadiness(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","failed_check":"redis","error":"connection refused"}`, rec.Body.String())
}

func TestHandleReadiness_ReportsGame(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t,
		withHealthChecks(HealthCheck{Name: "redis", Check: healthOK}),
		withGameStatus(func(context.Context) (domain.GameState, error) {
			return domain.GameState{Position: -2, LeftPulls: 7, RightPulls: 5, ActiveUsers: 3}, nil
		}))

	require.NoError(t, srv.handleReadiness(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","game":{"position":-2,"left_pulls":7,"right_pulls":5,"active_users":3}}`, rec.Body.String())
}

func TestHandleReadiness_GameUnreadable(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t, withGameStatus(func(context.Context) (domain.GameState, error) {
		return domain.GameState{}, errors.New("circuit breaker open")
	}))

	require.NoError(t, srv.handleReadiness(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","failed_check":"game_state","error":"circuit breaker open"}`, rec.Body.String())
}

func TestHandleReadiness_CheckGetsDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var hasDeadline bool
	srv := newTestServer(t, withHealthChecks(HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}}))

	require.NoError(t, srv.handleReadiness(c))
	assert.True(t, hasDeadline)
}

func TestHandleVersion(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t)
	require.NoError(t, srv.handleVersion(c))

	var info version.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, version.Get(version.Server), info)
	assert.Equal(t, "tugofwar-server", info.Binary)
}
