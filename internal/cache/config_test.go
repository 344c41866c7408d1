package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("REDIS_HOST", "")
		t.Setenv("REDIS_PORT", "")
		t.Setenv("TOKEN_CACHE_TTL", "")

		config, err := NewConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", config.Address())
		assert.Equal(t, "dandb", config.KeyPrefix)
		assert.Equal(t, 10*time.Hour, config.DefaultTTL)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("REDIS_HOST", "redis.internal")
		t.Setenv("REDIS_PORT", "6380")
		t.Setenv("REDIS_DB", "2")
		t.Setenv("REDIS_PASSWORD", "secret")
		t.Setenv("REDIS_KEY_PREFIX", "tenant-a")
		t.Setenv("TOKEN_CACHE_TTL", "30m")

		config, err := NewConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "redis.internal:6380", config.Address())
		assert.Equal(t, 2, config.DB)
		assert.Equal(t, "secret", config.Password)
		assert.Equal(t, "tenant-a", config.KeyPrefix)
		assert.Equal(t, 30*time.Minute, config.DefaultTTL)
	})

	t.Run("invalid values", func(t *testing.T) {
		for env, value := range map[string]string{
			"REDIS_PORT":      "abc",
			"REDIS_DB":        "x",
			"REDIS_POOL_SIZE": "many",
			"TOKEN_CACHE_TTL": "soon",
		} {
			t.Run(env, func(t *testing.T) {
				t.Setenv(env, value)
				_, err := NewConfigFromEnv()
				assert.ErrorContains(t, err, env)
			})
		}
	})
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("36000")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour, d)

	d, err = parseDuration("1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = parseDuration("later")
	assert.Error(t, err)
}
