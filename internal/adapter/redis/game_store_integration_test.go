package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/tugofwar/internal/domain"
)

func TestGameStore_InitCounters(t *testing.T) {
	client := setupTestClient(t)
	store := NewGameStore(client)
	ctx := context.Background()

	require.NoError(t, store.InitCounters(ctx))

	state, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GameState{}, state)

	for _, key := range []string{positionKey, leftPullsKey, rightPullsKey} {
		val, err := client.Get(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, "0", val, key)
	}
}

func TestGameStore_InitCountersNeverOverwrites(t *testing.T) {
	client := setupTestClient(t)
	store := NewGameStore(client)
	ctx := context.Background()

	require.NoError(t, store.InitCounters(ctx))
	_, err := store.ApplyPull(ctx, domain.DirectionRight)
	require.NoError(t, err)

	// Second connection racing on startup
	require.NoError(t, store.InitCounters(ctx))
	require.NoError(t, store.InitCounters(ctx))

	state, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GameState{Position: 1, RightPulls: 1}, state)
}

func TestGameStore_ApplyPull(t *testing.T) {
	client := setupTestClient(t)
	store := NewGameStore(client)
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

func TestGameStore_ApplyPullUnknownDirection(t *testing.T) {
	client := setupTestClient(t)
	store := NewGameStore(client)
	ctx := context.Background()
	require.NoError(t, store.InitCounters(ctx))

	_, err := store.ApplyPull(ctx, domain.Direction("up"))
	require.ErrorIs(t, err, domain.ErrUnknownDirection)

	state, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GameState{}, state)
}

func TestGameStore_SnapshotBeforeInit(t *testing.T) {
	client := setupTestClient(t)
	store := NewGameStore(client)

	state, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.GameState{}, state)
}

func TestGameStore_ConcurrentPullsAreOrderIndependent(t *testing.T) {
	client := setupTestClient(t)
	store := NewGameStore(client)
	ctx := context.Background()
	require.NoError(t, store.InitCounters(ctx))

	const perDirection = 50
	var wg sync.WaitGroup
	for i := range perDirection * 3 {
		dir := domain.DirectionRight
		if i%3 == 0 {
			dir = domain.DirectionLeft
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ApplyPull(ctx, dir)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(perDirection), state.LeftPulls)
	assert.Equal(t, int64(2*perDirection), state.RightPulls)
	assert.Equal(t, state.RightPulls-state.LeftPulls, state.Position)
}
