package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pscheid92/tugofwar/internal/adapter/httpserver"
	"github.com/pscheid92/tugofwar/internal/adapter/memory"
	"github.com/pscheid92/tugofwar/internal/adapter/metrics"
	"github.com/pscheid92/tugofwar/internal/adapter/redis"
	"github.com/pscheid92/tugofwar/internal/adapter/websocket"
	"github.com/pscheid92/tugofwar/internal/app"
	"github.com/pscheid92/tugofwar/internal/domain"
	"github.com/pscheid92/tugofwar/internal/platform/config"
	"github.com/pscheid92/tugofwar/internal/platform/logging"
	"github.com/pscheid92/tugofwar/internal/platform/retry"
	"github.com/pscheid92/tugofwar/internal/platform/version"
)

const (
	shutdownTimeout     = 10 * time.Second
	redisConnectTimeout = 5 * time.Second
)

var redisStartupPolicy = retry.Policy{
	MaxAttempts:    8,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// backend is the shared state the sessions run against.
type backend struct {
	store        domain.GameStore
	limiter      domain.PullLimiter
	broadcaster  domain.Broadcaster
	healthChecks []httpserver.HealthCheck
	close        func()
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupBackend(ctx context.Context, cfg *config.Config, clock clockwork.Clock, m *metrics.RedisMetrics) (*backend, error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		slog.Warn("Using in-memory store; game state is lost on restart and not shared between instances")
		return &backend{
			store:       memory.NewGameStore(),
			limiter:     memory.NewPullLimiter(clock, cfg.PullRateLimit, cfg.PullRateWindow, cfg.PullRateKeyTTL),
			broadcaster: memory.NewBroadcaster(),
			close:       func() {},
		}, nil
	}

	rdb, err := connectRedis(ctx, cfg, m)
	if err != nil {
		return nil, err
	}

	return &backend{
		store:       redis.NewGameStore(rdb),
		limiter:     redis.NewPullLimiter(rdb, clock, cfg.PullRateLimit, cfg.PullRateWindow, cfg.PullRateKeyTTL),
		broadcaster: redis.NewPubSub(rdb, redis.GameUpdatesChannel),
		healthChecks: []httpserver.HealthCheck{
			{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
		close: func() { _ = rdb.Close() },
	}, nil
}

// connectRedis waits for Redis at startup. Each attempt gets a fresh circuit breaker
// so that failed startup pings do not leave it open.
func connectRedis(ctx context.Context, cfg *config.Config, m *metrics.RedisMetrics) (*goredis.Client, error) {
	policy := redisStartupPolicy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Redis not reachable yet, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	}

	classify := func(err error) retry.Action {
		if errors.Is(err, redis.ErrInvalidURL) {
			return retry.Stop
		}
		return retry.Retry
	}

	rdb, err := retry.Do(ctx, policy, classify, func(ctx context.Context) (*goredis.Client, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		return redis.NewClient(attemptCtx, cfg.RedisURL,
			redis.NewMetricsHook(m),
			redis.NewCircuitBreakerHook(cfg.RedisBreakerDelay, m))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	clock := clockwork.NewRealClock()

	reg := metrics.NewRegistry()
	m := metrics.NewSet(reg)

	be, err := setupBackend(ctx, cfg, clock, m.Redis)
	if err != nil {
		return err
	}
	defer be.close()

	users := app.NewActiveUsers()
	supervisor := app.NewSupervisor(
		app.NewReader(be.store, be.limiter, be.broadcaster, users, clock, m.Pulls),
		app.NewWriter(be.store, be.broadcaster, users, m.WebSocket),
		users, clock, m.WebSocket,
	)

	limits := websocket.NewConnectionLimits(clock,
		int64(cfg.MaxWebSocketConnections),
		cfg.MaxConnectionsPerIP,
		cfg.ConnectionRatePerSecond,
		cfg.ConnectionRateBurst)
	checkOrigin := websocket.NewCheckOrigin(cfg.AppURL, cfg.IsDevelopment())
	wsHandler := websocket.NewHandler(supervisor, limits, checkOrigin, clock, m.WebSocket)

	sessionsCtx, endSessions := context.WithCancel(context.Background())
	defer endSessions()

	gameStatus := func(ctx context.Context) (domain.GameState, error) {
		state, err := be.store.Snapshot(ctx)
		state.ActiveUsers = users.Load()
		return state, err
	}
	srv := httpserver.NewServer(sessionsCtx, cfg, clock, wsHandler, metrics.Handler(reg), m.HTTP, be.healthChecks, gameStatus)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received, cleaning up...", "active_users", users.Load())

		endSessions()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func main() {
	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	info := version.Get(version.Server)
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
		"version", info.Version,
		"commit", info.Commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server error", "error", err)
		stop()
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
