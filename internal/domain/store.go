package domain

import "context"

// GameStore holds the three shared game counters.
// All mutations are atomic increments; counters are never reset or deleted.
type GameStore interface {
	// InitCounters creates position, left_pulls and right_pulls with value 0 if absent.
	// Existing values are never overwritten.
	InitCounters(ctx context.Context) error

	// ApplyPull increments the pull counter for the direction and then moves the position
	// by the direction's delta. Returns the new position. A failure after the counter
	// increment succeeded wraps ErrPartialUpdate.
	ApplyPull(ctx context.Context, direction Direction) (int64, error)

	// Counters re-reads both pull counters.
	Counters(ctx context.Context) (left, right int64, err error)

	// Snapshot reads position and both counters. ActiveUsers is left zero.
	Snapshot(ctx context.Context) (GameState, error)
}
