package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

type Config struct {
	AppEnv       string `env:"APP_ENV" default:"development"`
	AppURL       string `env:"APP_URL"`
	Port         string `env:"PORT" default:"3000"`
	StoreBackend string `env:"STORE_BACKEND" default:"redis"`
	RedisURL     string `env:"REDIS_URL" default:"redis://localhost:6379"`
	LogLevel     string `env:"LOG_LEVEL" default:"info"`
	LogFormat    string `env:"LOG_FORMAT" default:"text"`

	PullRateLimit  int           `env:"PULL_RATE_LIMIT" default:"10"`
	PullRateWindow time.Duration `env:"PULL_RATE_WINDOW" default:"1s"`
	PullRateKeyTTL time.Duration `env:"PULL_RATE_KEY_TTL" default:"10s"`

	MaxWebSocketConnections int     `env:"MAX_WEBSOCKET_CONNECTIONS" default:"10000"`
	MaxConnectionsPerIP     int     `env:"MAX_CONNECTIONS_PER_IP" default:"50"`
	ConnectionRatePerSecond float64 `env:"CONNECTION_RATE_PER_SECOND" default:"10"`
	ConnectionRateBurst     int     `env:"CONNECTION_RATE_BURST" default:"20"`

	RedisBreakerDelay time.Duration `env:"REDIS_BREAKER_DELAY" default:"30s"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.StoreBackend {
	case StoreBackendRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required when STORE_BACKEND=redis")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendRedis, StoreBackendMemory, cfg.StoreBackend)
	}

	if cfg.AppURL != "" {
		if u, err := url.Parse(cfg.AppURL); err != nil || u.Host == "" {
			return fmt.Errorf("APP_URL must be an absolute URL, got %q", cfg.AppURL)
		}
	}

	if cfg.PullRateLimit < 1 {
		return errors.New("PULL_RATE_LIMIT must be at least 1")
	}
	// Pull timestamps are recorded in whole seconds
	if cfg.PullRateWindow < time.Second || cfg.PullRateWindow%time.Second != 0 {
		return fmt.Errorf("PULL_RATE_WINDOW must be a whole number of seconds, got %s", cfg.PullRateWindow)
	}
	if cfg.PullRateKeyTTL < cfg.PullRateWindow || cfg.PullRateKeyTTL%time.Second != 0 {
		return fmt.Errorf("PULL_RATE_KEY_TTL must be whole seconds and not shorter than PULL_RATE_WINDOW, got %s", cfg.PullRateKeyTTL)
	}

	if cfg.MaxWebSocketConnections < 1 || cfg.MaxConnectionsPerIP < 1 {
		return errors.New("MAX_WEBSOCKET_CONNECTIONS and MAX_CONNECTIONS_PER_IP must be at least 1")
	}
	if cfg.ConnectionRatePerSecond <= 0 || cfg.ConnectionRateBurst < 1 {
		return errors.New("CONNECTION_RATE_PER_SECOND must be positive and CONNECTION_RATE_BURST at least 1")
	}

	return nil
}
