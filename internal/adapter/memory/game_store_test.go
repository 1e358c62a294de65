package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/tugofwar/internal/domain"
)

func TestGameStore_InitCountersIsIdempotent(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	require.NoError(t, store.InitCounters(ctx))
	_, err := store.ApplyPull(ctx, domain.DirectionLeft)
	require.NoError(t, err)
	require.NoError(t, store.InitCounters(ctx))

	state, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GameState{Position: -1, LeftPulls: 1}, state)
}

func TestGameStore_Scenario(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()
	require.NoError(t, store.InitCounters(ctx))

	position, err := store.ApplyPull(ctx, domain.DirectionRight)
	require.NoError(t, err)
	assert.Equal(t, int64(1), position)

	position, err = store.ApplyPull(ctx, domain.DirectionLeft)
	require.NoError(t, err)
	assert.Equal(t, int64(0), position)

	left, right, err := store.Counters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), left)
	assert.Equal(t, int64(1), right)
}

func TestGameStore_UnknownDirectionLeavesStateUntouched(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()
	require.NoError(t, store.InitCounters(ctx))

	_, err := store.ApplyPull(ctx, domain.Direction("spin"))
	require.ErrorIs(t, err, domain.ErrUnknownDirection)

	state, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GameState{}, state)
}

func TestGameStore_ConcurrentPulls(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()
	require.NoError(t, store.InitCounters(ctx))

	var wg sync.WaitGroup
	for i := range 200 {
		dir := domain.DirectionRight
		if i%2 == 0 {
			dir = domain.DirectionLeft
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.ApplyPull(ctx, dir)
		}()
	}
	wg.Wait()

	state, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GameState{Position: 0, LeftPulls: 100, RightPulls: 100}, state)
}
