package cache

import (
	"strings"
)

const (
	// Separator is the delimiter used in key construction
	Separator = ":"
	// tokenComponent marks access token keys
	tokenComponent = "token"
)

// KeyBuilder maps SDK token cache keys onto namespaced Redis keys.
// Format: {prefix}:token:{key}. With an empty prefix the format is token:{key}.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a KeyBuilder for the given namespace
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: strings.Trim(strings.TrimSpace(prefix), Separator),
	}
}

// Prefix returns the namespace
func (kb *KeyBuilder) Prefix() string {
	return kb.prefix
}

// TokenKey builds the Redis key for an SDK cache key
func (kb *KeyBuilder) TokenKey(key string) string {
	if kb.prefix == "" {
		return tokenComponent + Separator + key
	}
	return kb.prefix + Separator + tokenComponent + Separator + key
}

// ParseKey returns the SDK cache key of a Redis key built by TokenKey.
// ok is false for keys outside the namespace.
func (kb *KeyBuilder) ParseKey(redisKey string) (key string, ok bool) {
	base := kb.TokenKey("")
	if !strings.HasPrefix(redisKey, base) {
		return "", false
	}
	return strings.TrimPrefix(redisKey, base), true
}

// Pattern returns a SCAN pattern matching every token key in the namespace
func (kb *KeyBuilder) Pattern() string {
	return kb.TokenKey("*")
}
