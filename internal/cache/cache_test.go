package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotus/config"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	server := miniredis.RunT(t)

	c, err := NewCache(context.Background(), config.RedisConfig{
		Addr:     server.Addr(),
		CacheTTL: time.Minute,
	})
	require.NoError(t, err)
	require.NotNil(t, c)

	t.Cleanup(func() { c.Close() })

	return c
}

func TestNewCacheWithoutAddr(t *testing.T) {
	c, err := NewCache(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.Set(ctx, "key", payload{Name: "массаж", Count: 3}))

	var got payload
	require.NoError(t, c.Get(ctx, "key", &got))
	assert.Equal(t, payload{Name: "массаж", Count: 3}, got)
}

func TestCacheMiss(t *testing.T) {
	c := newTestCache(t)

	var got string
	err := c.Get(context.Background(), "missing", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))
	require.NoError(t, c.Delete(ctx, "a", "b"))

	var got int
	assert.ErrorIs(t, c.Get(ctx, "a", &got), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "b", &got), ErrMiss)
}

// Nil-кэш ведет себя как постоянный промах, а не падает.
func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "key", "value"))
	assert.NoError(t, c.Delete(ctx, "key"))
	assert.NoError(t, c.Close())

	var got string
	assert.ErrorIs(t, c.Get(ctx, "key", &got), ErrMiss)
}
