package sdk

import (
	"context"
	"sync"
	"time"
)

// MemoryTokenCache is an in-process TokenCache. Entries expire after the
// TTL given to Put. It is safe for concurrent use.
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithCredentials(id, secret).
//	    WithTokenCache(sdk.NewMemoryTokenCache())
type MemoryTokenCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryTokenCache creates an empty in-memory token cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Has reports whether key holds an unexpired value.
func (c *MemoryTokenCache) Has(ctx context.Context, key string) (bool, error) {
	_, ok := c.lookup(key)
	return ok, nil
}

// Get returns the value stored under key, or "" if it is absent or expired.
func (c *MemoryTokenCache) Get(ctx context.Context, key string) (string, error) {
	value, _ := c.lookup(key)
	return value, nil
}

// Put stores value under key. A ttl of zero or less never expires.
func (c *MemoryTokenCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *MemoryTokenCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryTokenCache) lookup(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Put may have replaced the entry.
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return entry.value, true
}
