// Package cache provides Redis backed storage for DandB API access tokens.
package cache

import (
	"context"

	"github.com/birbparty/dandb-go/sdk"
)

// TokenCache is an sdk.TokenCache that can also evict, report health and
// release its connections.
type TokenCache interface {
	sdk.TokenCache

	// Delete removes a token. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache is healthy
	Ping(ctx context.Context) error

	// Close closes the cache connection
	Close() error
}

// Common errors
var (
	ErrCacheClosed = NewCacheError("cache is closed", false)
)

// CacheError represents a cache-specific error
type CacheError struct {
	Message    string
	Retryable  bool
	Underlying error
}

// NewCacheError creates a new cache error
func NewCacheError(message string, retryable bool) *CacheError {
	return &CacheError{
		Message:   message,
		Retryable: retryable,
	}
}

// Error implements the error interface
func (e *CacheError) Error() string {
	if e.Underlying != nil {
		return e.Message + ": " + e.Underlying.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *CacheError) Unwrap() error {
	return e.Underlying
}

// WithError returns a copy of e wrapping err
func (e *CacheError) WithError(err error) *CacheError {
	return &CacheError{
		Message:    e.Message,
		Retryable:  e.Retryable,
		Underlying: err,
	}
}

// IsRetryable returns whether the error is retryable
func (e *CacheError) IsRetryable() bool {
	return e.Retryable
}
