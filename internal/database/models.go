package database

import (
	"errors"
	"math"
	"time"
)

// TokenEntry is a stored access token
type TokenEntry struct {
	Namespace string    `db:"namespace" json:"namespace"`
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Version   int       `db:"version" json:"version"`
	TTL       *int      `db:"ttl" json:"ttl,omitempty"`
}

// Common errors
var (
	ErrNotFound = errors.New("token not found")
)

// IsExpired checks if the entry is expired based on TTL
func (e *TokenEntry) IsExpired(now time.Time) bool {
	if e.TTL == nil || *e.TTL <= 0 {
		return false
	}

	expirationTime := e.UpdatedAt.Add(time.Duration(*e.TTL) * time.Second)
	return !now.Before(expirationTime)
}

// ExpiresAt returns when the entry expires; ok is false if it never does
func (e *TokenEntry) ExpiresAt() (time.Time, bool) {
	if e.TTL == nil || *e.TTL <= 0 {
		return time.Time{}, false
	}
	return e.UpdatedAt.Add(time.Duration(*e.TTL) * time.Second), true
}

// ttlSeconds converts a TTL to the stored column. Zero or negative TTLs
// never expire; sub-second TTLs round up to one second.
func ttlSeconds(ttl time.Duration) *int {
	if ttl <= 0 {
		return nil
	}
	seconds := int(math.Ceil(ttl.Seconds()))
	return &seconds
}
