package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/tugofwar/internal/domain"
)

// PullLimiter is a rolling-window pull counter on a Redis sorted set per identity.
// Scores are unix seconds, so the window is coarse: a burst straddling a second
// boundary can reach twice the limit over two seconds.
type PullLimiter struct {
	rdb    *goredis.Client
	clock  clockwork.Clock
	limit  int
	window time.Duration
	ttl    time.Duration
}

var _ domain.PullLimiter = (*PullLimiter)(nil)

// NewPullLimiter allows up to limit pulls per identity within window.
// Keys of identities that stop pulling expire after ttl.
func NewPullLimiter(rdb *goredis.Client, clock clockwork.Clock, limit int, window, ttl time.Duration) *PullLimiter {
	return &PullLimiter{
		rdb:    rdb,
		clock:  clock,
		limit:  limit,
		window: window,
		ttl:    ttl,
	}
}

func (l *PullLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	now := l.clock.Now().Unix()
	member := fmt.Sprintf("%d:%s", now, uuid.NewString())

	allowed, err := checkAndRecordScript.Run(ctx, l.rdb, []string{rateLimitKey(identity)},
		now,
		int64(l.window/time.Second),
		l.limit,
		member,
		int64(l.ttl/time.Second),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return allowed == 1, nil
}

func rateLimitKey(identity string) string {
	return "rate_limit:" + identity
}
