package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flasharb/internal/domain"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFromExisting(rdb)
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sc := NewSnapshotCache(testClient(t))

	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	in := domain.PriceSnapshot{"quickswap": 2000.5, "sushiswap": 2012}
	require.NoError(t, sc.SetSnapshot(ctx, "WETH/USDC", in, ts))

	got, gotTS, err := sc.GetSnapshot(ctx, "WETH/USDC")
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.True(t, ts.Equal(gotTS))
}

func TestSnapshotCache_ReplacesStaleExchanges(t *testing.T) {
	ctx := context.Background()
	sc := NewSnapshotCache(testClient(t))
	ts := time.Now().UTC()

	require.NoError(t, sc.SetSnapshot(ctx, "WETH/USDC",
		domain.PriceSnapshot{"quickswap": 2000, "apeswap": 1999}, ts))
	require.NoError(t, sc.SetSnapshot(ctx, "WETH/USDC",
		domain.PriceSnapshot{"quickswap": 2001}, ts))

	got, _, err := sc.GetSnapshot(ctx, "WETH/USDC")
	require.NoError(t, err)
	assert.Equal(t, domain.PriceSnapshot{"quickswap": 2001}, got)
}

func TestSnapshotCache_Miss(t *testing.T) {
	sc := NewSnapshotCache(testClient(t))

	_, _, err := sc.GetSnapshot(context.Background(), "WETH/USDC")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLockManager_MutualExclusion(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager(testClient(t))

	unlock, err := lm.Acquire(ctx, "config", time.Minute)
	require.NoError(t, err)

	_, err = lm.Acquire(ctx, "config", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	unlock()
	unlock2, err := lm.Acquire(ctx, "config", time.Minute)
	require.NoError(t, err)
	unlock2()
}

func TestLockManager_UnlockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager(testClient(t))

	unlock, err := lm.Acquire(ctx, "config", time.Minute)
	require.NoError(t, err)
	unlock()
	unlock()

	_, err = lm.Acquire(ctx, "config", time.Minute)
	assert.NoError(t, err)
}

func TestRateLimiter_EnforcesWindowLimit(t *testing.T) {
	ctx := context.Background()
	rl := NewRateLimiter(testClient(t))

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "api:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i)
	}

	ok, err := rl.Allow(ctx, "api:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = rl.Allow(ctx, "api:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")
}

func TestLockManager_IndependentKeys(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager(testClient(t))

	unlockA, err := lm.Acquire(ctx, "config", time.Minute)
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := lm.Acquire(ctx, "archive", time.Minute)
	require.NoError(t, err)
	defer unlockB()
}
