//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/birbparty/dandb-go/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedisCache(t *testing.T, prefix string) *RedisCache {
	t.Helper()
	ctx := context.Background()

	tc, err := testutil.StartRedis(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tc.Cleanup(context.Background()) })

	config := DefaultConfig()
	config.Host = tc.RedisHost
	config.Port = tc.RedisPort
	config.KeyPrefix = prefix

	c, err := NewRedisCache(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_Integration(t *testing.T) {
	ctx := context.Background()
	c := startRedisCache(t, "it")

	require.NoError(t, c.Ping(ctx))

	ok, err := c.Has(ctx, "access-token-cache-key")
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := c.Get(ctx, "access-token-cache-key")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, c.Put(ctx, "access-token-cache-key", "tok-1", time.Hour))

	ok, err = c.Has(ctx, "access-token-cache-key")
	require.NoError(t, err)
	assert.True(t, ok)

	v, err = c.Get(ctx, "access-token-cache-key")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", v)

	ttl, ok, err := c.TTL(ctx, "access-token-cache-key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	// Stored under the namespaced key
	raw, err := c.client.Get(ctx, "it:token:access-token-cache-key").Result()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", raw)

	require.NoError(t, c.Delete(ctx, "access-token-cache-key"))
	ok, _ = c.Has(ctx, "access-token-cache-key")
	assert.False(t, ok)
}

func TestRedisCache_IntegrationTTL(t *testing.T) {
	ctx := context.Background()
	c := startRedisCache(t, "ttl")

	require.NoError(t, c.Put(ctx, "short", "tok", time.Second))
	assert.Eventually(t, func() bool {
		ok, err := c.Has(ctx, "short")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)

	require.NoError(t, c.Put(ctx, "default", "tok", 0))
	ttl, ok, err := c.TTL(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Greater(t, ttl, 9*time.Hour)

	require.NoError(t, c.Put(ctx, "forever", "tok", -1))
	ttl, ok, err = c.TTL(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, ttl)
}

func TestRedisCache_IntegrationClear(t *testing.T) {
	ctx := context.Background()
	c := startRedisCache(t, "clear")

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Put(ctx, k, "tok", time.Hour))
	}
	require.NoError(t, c.client.Set(ctx, "unrelated", "x", 0).Err())

	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)

	n, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	exists, err := c.client.Exists(ctx, "unrelated").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}
