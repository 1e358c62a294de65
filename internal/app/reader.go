package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/tugofwar/internal/adapter/metrics"
	"github.com/pscheid92/tugofwar/internal/domain"
)

// pullTimeout bounds the store work for one accepted pull. That work runs
// detached from the session context so a pull is never left half applied or
// unpublished when the session ends underneath it.
const pullTimeout = 5 * time.Second

// Reader consumes a client's messages and turns accepted pulls into state updates.
type Reader struct {
	store       domain.GameStore
	limiter     domain.PullLimiter
	broadcaster domain.Broadcaster
	users       *ActiveUsers
	clock       clockwork.Clock
	metrics     *metrics.PullMetrics
}

// NewReader creates a Reader. m may be nil.
func NewReader(store domain.GameStore, limiter domain.PullLimiter, broadcaster domain.Broadcaster, users *ActiveUsers, clock clockwork.Clock, m *metrics.PullMetrics) *Reader {
	return &Reader{
		store:       store,
		limiter:     limiter,
		broadcaster: broadcaster,
		users:       users,
		clock:       clock,
		metrics:     m,
	}
}

// Run initializes the counters and then handles messages until in fails or a
// store operation fails. It always returns a non-nil error.
func (r *Reader) Run(ctx context.Context, in Inbound, identity string) error {
	if err := r.store.InitCounters(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to initialize game counters", "error", err)
		return fmt.Errorf("initialize counters: %w", err)
	}

	for {
		msg, err := in.Receive()
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}

		if err := r.handle(ctx, msg, identity); err != nil {
			slog.ErrorContext(ctx, "Failed to apply pull", "error", err)
			return err
		}
	}
}

// handle processes one message. Only store failures are returned; anything the
// client got wrong is logged and dropped.
func (r *Reader) handle(ctx context.Context, msg []byte, identity string) error {
	req, err := domain.ParsePull(msg)
	if err != nil {
		slog.WarnContext(ctx, "Dropping client message", "error", err)
		r.observe(metrics.PullInvalid)
		return nil
	}

	allowed, err := r.limiter.Allow(ctx, identity)
	if err != nil {
		return fmt.Errorf("check rate limit: %w", err)
	}
	if !allowed {
		slog.WarnContext(ctx, "Rate limit exceeded", "identity", identity)
		r.observe(metrics.PullRateLimited)
		return nil
	}

	direction, err := req.Target()
	if err != nil {
		slog.WarnContext(ctx, "Dropping pull", "error", err)
		r.observe(metrics.PullInvalid)
		return nil
	}

	start := r.clock.Now()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pullTimeout)
	defer cancel()

	position, err := r.store.ApplyPull(ctx, direction)
	if err != nil {
		return fmt.Errorf("apply %s pull: %w", direction, err)
	}

	left, right, err := r.store.Counters(ctx)
	if err != nil {
		return fmt.Errorf("read counters: %w", err)
	}

	payload, err := json.Marshal(domain.GameState{
		Position:    position,
		LeftPulls:   left,
		RightPulls:  right,
		ActiveUsers: r.users.Load(),
	})
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}

	if err := r.broadcaster.Publish(ctx, payload); err != nil {
		return fmt.Errorf("publish game state: %w", err)
	}

	r.observe(metrics.PullAccepted)
	if r.metrics != nil {
		r.metrics.PullsByDirection.WithLabelValues(string(direction)).Inc()
		r.metrics.ProcessingDuration.Observe(r.clock.Since(start).Seconds())
	}
	return nil
}

func (r *Reader) observe(result string) {
	if r.metrics != nil {
		r.metrics.PullsProcessed.WithLabelValues(result).Inc()
	}
}
