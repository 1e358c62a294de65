package domain

import "context"

// PullLimiter guards against pull flooding with a rolling window keyed by client identity.
type PullLimiter interface {
	// Allow reports whether the identity may pull now. An allowed pull is recorded.
	Allow(ctx context.Context, identity string) (bool, error)
}
