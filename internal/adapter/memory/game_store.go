package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pscheid92/tugofwar/internal/domain"
)

// GameStore keeps the counters behind a mutex. A nil counter is an absent key.
type GameStore struct {
	mu         sync.Mutex
	position   *int64
	leftPulls  *int64
	rightPulls *int64
}

var _ domain.GameStore = (*GameStore)(nil)

func NewGameStore() *GameStore {
	return &GameStore{}
}

func (s *GameStore) InitCounters(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, counter := range []**int64{&s.position, &s.leftPulls, &s.rightPulls} {
		if *counter == nil {
			*counter = new(int64)
		}
	}
	return nil
}

func (s *GameStore) ApplyPull(_ context.Context, direction domain.Direction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counter **int64
	switch direction {
	case domain.DirectionLeft:
		counter = &s.leftPulls
	case domain.DirectionRight:
		counter = &s.rightPulls
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownDirection, direction)
	}

	incr(counter, 1)
	return incr(&s.position, direction.Delta()), nil
}

func (s *GameStore) Counters(_ context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return value(s.leftPulls), value(s.rightPulls), nil
}

func (s *GameStore) Snapshot(_ context.Context) (domain.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.GameState{
		Position:   value(s.position),
		LeftPulls:  value(s.leftPulls),
		RightPulls: value(s.rightPulls),
	}, nil
}

// incr behaves like INCRBY: an absent counter starts from 0.
func incr(counter **int64, delta int64) int64 {
	if *counter == nil {
		*counter = new(int64)
	}
	**counter += delta
	return **counter
}

func value(counter *int64) int64 {
	if counter == nil {
		return 0
	}
	return *counter
}
