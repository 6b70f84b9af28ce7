package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_Take(t *testing.T) {
	t.Parallel()

	cfg := ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}

	t.Run("new bucket starts full", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))

		remaining, resetAt, err := store.Take(context.Background(), "k", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, remaining)
		assert.Equal(t, clock.Now().Add(time.Minute), resetAt)
	})

	t.Run("goes negative when exhausted", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))
		ctx := context.Background()

		for range 3 {
			_, _, err := store.Take(ctx, "k", 1, cfg)
			require.NoError(t, err)
		}
		remaining, _, err := store.Take(ctx, "k", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, -1, remaining)
	})

	t.Run("refills per interval up to capacity", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))
		ctx := context.Background()

		_, _, err := store.Take(ctx, "k", 3, cfg)
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)
		remaining, _, err := store.Take(ctx, "k", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, remaining)

		clock.Advance(time.Hour)
		remaining, _, err = store.Take(ctx, "k", 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 3, remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
		ctx := context.Background()

		_, _, err := store.Take(ctx, "a", 3, cfg)
		require.NoError(t, err)
		remaining, _, err := store.Take(ctx, "b", 1, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, remaining)
	})
}

func TestMemoryStore_Reset(t *testing.T) {
	t.Parallel()

	cfg := ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	ctx := context.Background()

	_, _, err := store.Take(ctx, "k", 2, cfg)
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx, "k"))

	remaining, _, err := store.Take(ctx, "k", 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	cfg := ratelimiter.Config{Capacity: 50, RefillRate: 1, RefillInterval: time.Hour}
	clock := newFakeClock()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(clock.Now))
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.Take(ctx, "shared", 1, cfg)
		}()
	}
	wg.Wait()

	remaining, _, err := store.Take(ctx, "shared", 0, cfg)
	require.NoError(t, err)
	assert.Equal(t, -50, remaining)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(time.Millisecond))
	store.Close()
	assert.NotPanics(t, store.Close)
}
