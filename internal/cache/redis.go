package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores access tokens in Redis. It implements sdk.TokenCache.
type RedisCache struct {
	client *redis.Client
	config *Config
	keys   *KeyBuilder
	closed atomic.Bool
}

var _ TokenCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(config *Config) (*RedisCache, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	client := redis.NewClient(&redis.Options{
		Addr:            config.Address(),
		Password:        config.Password,
		DB:              config.DB,
		MaxRetries:      config.MaxRetries,
		MinRetryBackoff: config.MinRetryBackoff,
		MaxRetryBackoff: config.MaxRetryBackoff,
		DialTimeout:     config.DialTimeout,
		ReadTimeout:     config.ReadTimeout,
		WriteTimeout:    config.WriteTimeout,
		PoolSize:        config.PoolSize,
		MinIdleConns:    config.MinIdleConns,
		ConnMaxIdleTime: config.MaxIdleTime,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheWithClient(client, config), nil
}

// NewRedisCacheWithClient wraps an existing client without pinging it
func NewRedisCacheWithClient(client *redis.Client, config *Config) *RedisCache {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisCache{
		client: client,
		config: config,
		keys:   NewKeyBuilder(config.KeyPrefix),
	}
}

// Has reports whether a token is stored under key
func (r *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	if r.closed.Load() {
		return false, ErrCacheClosed
	}
	n, err := r.client.Exists(ctx, r.keys.TokenKey(key)).Result()
	if err != nil {
		return false, NewCacheError("failed to check existence", true).WithError(err)
	}
	return n > 0, nil
}

// Get returns the token stored under key, or "" if there is none
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	if r.closed.Load() {
		return "", ErrCacheClosed
	}
	val, err := r.client.Get(ctx, r.keys.TokenKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", NewCacheError("failed to get key", true).WithError(err)
	}
	return val, nil
}

// Put stores a token for ttl. A zero ttl uses Config.DefaultTTL; a
// negative ttl stores the token without expiry.
func (r *RedisCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.closed.Load() {
		return ErrCacheClosed
	}
	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}
	if ttl < 0 {
		ttl = 0
	}

	if err := r.client.Set(ctx, r.keys.TokenKey(key), value, ttl).Err(); err != nil {
		return NewCacheError("failed to set key", true).WithError(err)
	}
	return nil
}

// Delete removes a token
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if r.closed.Load() {
		return ErrCacheClosed
	}
	if err := r.client.Del(ctx, r.keys.TokenKey(key)).Err(); err != nil {
		return NewCacheError("failed to delete key", true).WithError(err)
	}
	return nil
}

// TTL returns the remaining lifetime of a token. ok is false when the key
// does not exist; a zero duration with ok means no expiry.
func (r *RedisCache) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	if r.closed.Load() {
		return 0, false, ErrCacheClosed
	}
	ttl, err := r.client.TTL(ctx, r.keys.TokenKey(key)).Result()
	if err != nil {
		return 0, false, NewCacheError("failed to get TTL", true).WithError(err)
	}

	switch ttl {
	case -2:
		// Key doesn't exist
		return 0, false, nil
	case -1:
		// Key exists but has no TTL
		return 0, true, nil
	}
	return ttl, true, nil
}

// Keys lists the SDK cache keys stored in this namespace
func (r *RedisCache) Keys(ctx context.Context) ([]string, error) {
	if r.closed.Load() {
		return nil, ErrCacheClosed
	}

	var keys []string
	iter := r.client.Scan(ctx, 0, r.keys.Pattern(), 100).Iterator()
	for iter.Next(ctx) {
		if key, ok := r.keys.ParseKey(iter.Val()); ok {
			keys = append(keys, key)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, NewCacheError("failed to scan keys", true).WithError(err)
	}
	return keys, nil
}

// Clear removes every token in this namespace and returns how many were removed
func (r *RedisCache) Clear(ctx context.Context) (int, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = r.keys.TokenKey(k)
	}
	n, err := r.client.Del(ctx, redisKeys...).Result()
	if err != nil {
		return 0, NewCacheError("failed to delete keys", true).WithError(err)
	}
	return int(n), nil
}

// Ping checks if the cache is healthy
func (r *RedisCache) Ping(ctx context.Context) error {
	if r.closed.Load() {
		return ErrCacheClosed
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return NewCacheError("ping failed", false).WithError(err)
	}
	return nil
}

// Close closes the cache connection. It is safe to call more than once.
func (r *RedisCache) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Stats returns Redis connection pool stats
func (r *RedisCache) Stats() *redis.PoolStats {
	if r.client != nil {
		return r.client.PoolStats()
	}
	return nil
}
