package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/tugofwar/internal/domain"
)

type pullLog struct {
	timestamps []int64 // unix seconds, ascending
	expiresAt  time.Time
}

// PullLimiter mirrors the Redis sorted-set limiter: second-granularity
// timestamps, counted over [now-window, now], idle expiry per identity.
type PullLimiter struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	limit  int
	window int64
	ttl    time.Duration
	logs   map[string]*pullLog

	sweepAt time.Time
}

var _ domain.PullLimiter = (*PullLimiter)(nil)

func NewPullLimiter(clock clockwork.Clock, limit int, window, ttl time.Duration) *PullLimiter {
	return &PullLimiter{
		clock:  clock,
		limit:  limit,
		window: int64(window / time.Second),
		ttl:    ttl,
		logs:   make(map[string]*pullLog),
	}
}

func (l *PullLimiter) Allow(_ context.Context, identity string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nowTime := l.clock.Now()
	now := nowTime.Unix()

	log, ok := l.logs[identity]
	if ok && !nowTime.Before(log.expiresAt) {
		delete(l.logs, identity)
		ok = false
	}
	if !ok {
		log = &pullLog{}
		l.logs[identity] = log
	}

	count := 0
	for _, ts := range log.timestamps {
		if ts >= now-l.window && ts <= now {
			count++
		}
	}
	if count >= l.limit {
		return false, nil
	}

	log.timestamps = append(log.timestamps, now)
	log.timestamps = pruneBefore(log.timestamps, now-l.window)
	log.expiresAt = nowTime.Add(l.ttl)

	l.sweep(nowTime)
	return true, nil
}

// Len returns the number of identities currently tracked.
func (l *PullLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.logs)
}

// pruneBefore drops timestamps older than cutoff.
func pruneBefore(timestamps []int64, cutoff int64) []int64 {
	i := 0
	for i < len(timestamps) && timestamps[i] < cutoff {
		i++
	}
	return timestamps[i:]
}

// sweep forgets expired identities at most once per ttl. Must be called with mu held.
func (l *PullLimiter) sweep(now time.Time) {
	if now.Before(l.sweepAt) {
		return
	}
	l.sweepAt = now.Add(l.ttl)
	for identity, log := range l.logs {
		if !now.Before(log.expiresAt) {
			delete(l.logs, identity)
		}
	}
}
