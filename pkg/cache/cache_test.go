package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedMatchup struct {
	WinningProb float64   `json:"winning_prob"`
	Histogram   [10]int   `json:"histogram"`
	Categories  []float64 `json:"categories"`
}

func newTestCache(t *testing.T) (*ResultCacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return NewResultCacheService(client, log, time.Minute), mr
}

func TestSetAndGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	want := cachedMatchup{WinningProb: 0.62, Histogram: [10]int{0, 0, 1, 3, 5, 8, 4, 2, 1, 0}, Categories: []float64{0.4, 0.7}}
	require.NoError(t, c.Set(ctx, KindMatchup, "abc", want))
	assert.True(t, mr.Exists("matchup:abc"))
	assert.Equal(t, time.Minute, mr.TTL("matchup:abc"))

	var got cachedMatchup
	require.NoError(t, c.Get(ctx, KindMatchup, "abc", &got))
	assert.Equal(t, want, got)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got cachedMatchup
	err := c.Get(context.Background(), KindOptimization, "missing", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, KindTrade, "t1", map[string]float64{"improvement": 0.1}))
	mr.FastForward(2 * time.Minute)

	var got map[string]float64
	assert.ErrorIs(t, c.Get(ctx, KindTrade, "t1", &got), ErrMiss)
}

func TestFlushOnlyTouchesOneKind(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, KindOptimization, key, key))
	}
	require.NoError(t, c.Set(ctx, KindMatchup, "a", "kept"))

	deleted, err := c.Flush(ctx, KindOptimization)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.False(t, mr.Exists("optimization:a"))
	assert.True(t, mr.Exists("matchup:a"))

	require.NoError(t, c.Delete(ctx, KindMatchup, "a"))
	assert.False(t, mr.Exists("matchup:a"))
}

func TestKeyIsStable(t *testing.T) {
	type request struct {
		TeamA string `json:"team_a"`
		Week  int    `json:"week"`
	}
	k1, err := Key(request{TeamA: "t.1", Week: 2})
	require.NoError(t, err)
	k2, err := Key(request{TeamA: "t.1", Week: 2})
	require.NoError(t, err)
	k3, err := Key(request{TeamA: "t.1", Week: 3})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, 64)
}

func TestStatus(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, KindMatchup, "x", 1))

	status := c.GetStatus(ctx)
	assert.Equal(t, true, status["connected"])
	assert.Equal(t, 1, status["matchup_keys"])
	assert.Equal(t, 0, status["trade_keys"])
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	mr.SetError("server down")
	var dest cachedMatchup
	for i := 0; i < 3; i++ {
		err := c.Get(ctx, KindMatchup, "abc", &dest)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, "open", c.BreakerState())

	// rejected without reaching Redis
	mr.SetError("")
	err := c.Get(ctx, KindMatchup, "abc", &dest)
	assert.ErrorIs(t, err, ErrUnavailable)
	err = c.Set(ctx, KindMatchup, "abc", cachedMatchup{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, mr.Exists("matchup:abc"))
}

func TestMissDoesNotTripBreaker(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var dest cachedMatchup
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, c.Get(ctx, KindMatchup, "missing", &dest), ErrMiss)
	}
	assert.Equal(t, "closed", c.BreakerState())
}
