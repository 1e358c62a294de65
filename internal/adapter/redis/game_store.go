package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/tugofwar/internal/domain"
)

const (
	positionKey   = "position"
	leftPullsKey  = "left_pulls"
	rightPullsKey = "right_pulls"
)

// GameStore keeps the game counters as plain Redis integers so every
// mutation is a single INCR/INCRBY.
type GameStore struct {
	rdb *goredis.Client
}

var _ domain.GameStore = (*GameStore)(nil)

func NewGameStore(rdb *goredis.Client) *GameStore {
	return &GameStore{rdb: rdb}
}

func (s *GameStore) InitCounters(ctx context.Context) error {
	pipe := s.rdb.Pipeline()
	pipe.SetNX(ctx, positionKey, 0, 0)
	pipe.SetNX(ctx, leftPullsKey, 0, 0)
	pipe.SetNX(ctx, rightPullsKey, 0, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("initialize game counters: %w", err)
	}
	return nil
}

func (s *GameStore) ApplyPull(ctx context.Context, direction domain.Direction) (int64, error) {
	key, err := pullsKey(direction)
	if err != nil {
		return 0, err
	}

	if err := s.rdb.Incr(ctx, key).Err(); err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}

	position, err := s.rdb.IncrBy(ctx, positionKey, direction.Delta()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: increment position after %s: %w", domain.ErrPartialUpdate, key, err)
	}
	return position, nil
}

func (s *GameStore) Counters(ctx context.Context) (int64, int64, error) {
	values, err := s.readInts(ctx, leftPullsKey, rightPullsKey)
	if err != nil {
		return 0, 0, err
	}
	return values[0], values[1], nil
}

func (s *GameStore) Snapshot(ctx context.Context) (domain.GameState, error) {
	values, err := s.readInts(ctx, positionKey, leftPullsKey, rightPullsKey)
	if err != nil {
		return domain.GameState{}, err
	}
	return domain.GameState{
		Position:   values[0],
		LeftPulls:  values[1],
		RightPulls: values[2],
	}, nil
}

// readInts fetches keys with one MGET. Missing keys read as 0, the value
// InitCounters would give them.
func (s *GameStore) readInts(ctx context.Context, keys ...string) ([]int64, error) {
	raw, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("read game counters: %w", err)
	}

	values := make([]int64, len(keys))
	for i, v := range raw {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("read %s: unexpected type %T", keys[i], v)
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", keys[i], err)
		}
		values[i] = n
	}
	return values, nil
}

func pullsKey(direction domain.Direction) (string, error) {
	switch direction {
	case domain.DirectionLeft:
		return leftPullsKey, nil
	case domain.DirectionRight:
		return rightPullsKey, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownDirection, direction)
	}
}
