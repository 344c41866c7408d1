package sdk

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryTokenCache()

	ok, err := cache.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, cache.Put(ctx, "k", "token", time.Hour))

	ok, _ = cache.Has(ctx, "k")
	assert.True(t, ok)
	v, _ = cache.Get(ctx, "k")
	assert.Equal(t, "token", v)

	require.NoError(t, cache.Delete(ctx, "k"))
	ok, _ = cache.Has(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, cache.Delete(ctx, "missing"))
}

func TestMemoryTokenCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryTokenCache()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Put(ctx, "k", "token", time.Minute))
	require.NoError(t, cache.Put(ctx, "forever", "token", 0))

	now = now.Add(59 * time.Second)
	ok, _ := cache.Has(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	ok, _ = cache.Has(ctx, "k")
	assert.False(t, ok, "entry expires at its deadline")
	v, _ := cache.Get(ctx, "k")
	assert.Empty(t, v)

	now = now.Add(24 * 365 * time.Hour)
	ok, _ = cache.Has(ctx, "forever")
	assert.True(t, ok)
}

func TestMemoryTokenCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryTokenCache()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Put(ctx, "k", "token", time.Hour)
			_, _ = cache.Has(ctx, "k")
			_, _ = cache.Get(ctx, "k")
		}()
	}
	wg.Wait()

	v, _ := cache.Get(ctx, "k")
	assert.Equal(t, "token", v)
}
