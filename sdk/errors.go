package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Common errors returned by the SDK. These can be used with errors.Is()
// to check for specific error conditions.
//
// Business failures reported by the API (a non-200 meta.code, an error
// list, an error_code) are never returned as errors; inspect the Response.
//
// Example:
//
//	resp, err := client.BusinessSearchByDUNS(ctx, "007280554")
//	if errors.Is(err, sdk.ErrTimeout) {
//	    // The transport gave up
//	} else if err == nil && !resp.IsValid() {
//	    // The API answered with a failure
//	}
var (
	// ErrInvalidConfig is returned when the configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrClientClosed is returned by any call made after Close
	ErrClientClosed = errors.New("client is closed")

	// ErrTimeout is returned when a request times out
	ErrTimeout = errors.New("request timeout")

	// ErrInvalidResponse is returned when the server response is not a JSON object
	ErrInvalidResponse = errors.New("invalid response from server")

	// ErrContextCanceled is returned when the context is canceled before completion
	ErrContextCanceled = errors.New("context canceled")

	// ErrMissingIdentity is returned when neither a user token nor an email was given
	ErrMissingIdentity = errors.New("a user token or an email address is required")

	// ErrNoResults is returned by Response.DecodeResults when response.results is absent
	ErrNoResults = errors.New("response has no results")
)

// ErrorType represents the type of error for categorization and handling.
type ErrorType int

const (
	// ErrorTypeUnknown represents an unknown or unclassified error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork represents network-related errors (connection refused, DNS, etc.)
	ErrorTypeNetwork
	// ErrorTypeTimeout represents timeout errors (request timeout, context deadline)
	ErrorTypeTimeout
	// ErrorTypeDecode represents a response body that is not a JSON object
	ErrorTypeDecode
	// ErrorTypeValidation represents validation errors (invalid input, config, etc.)
	ErrorTypeValidation
	// ErrorTypeCache represents a failure of the configured TokenCache
	ErrorTypeCache
	// ErrorTypeCanceled represents a canceled context
	ErrorTypeCanceled
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeDecode:
		return "decode"
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeCache:
		return "cache"
	case ErrorTypeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error represents a transport-level failure with additional context.
// It supports error wrapping via errors.Is() and errors.As().
//
// Example:
//
//	var sdkErr *sdk.Error
//	if errors.As(err, &sdkErr) {
//	    fmt.Printf("Error Type: %s\n", sdkErr.Type)
//	    if sdkErr.Context != nil {
//	        fmt.Printf("Failed URL: %s\n", sdkErr.Context.URL)
//	    }
//	}
type Error struct {
	// Type categorizes the error for handling decisions
	Type ErrorType `json:"type"`
	// Message is a human-readable error description
	Message string `json:"message"`
	// Details contains additional error metadata
	Details map[string]interface{} `json:"details,omitempty"`
	// Timestamp is when the error occurred
	Timestamp time.Time `json:"timestamp"`
	// Context provides additional context about the failed operation
	Context *ErrorContext `json:"context,omitempty"`
	// wrapped is the underlying error, if any
	wrapped error
}

// ErrorContext provides additional context about the operation that failed.
type ErrorContext struct {
	// URL is the full URL of the failed request, without its query string
	URL string `json:"url,omitempty"`
	// Method is the HTTP method used (GET, POST)
	Method string `json:"method,omitempty"`
	// Duration is how long the operation took before failing
	Duration time.Duration `json:"duration,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Context != nil && e.Context.URL != "" {
		return fmt.Sprintf("%s error: %s (%s %s)", e.Type, e.Message, e.Context.Method, e.Context.URL)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is implements errors.Is
func (e *Error) Is(target error) bool {
	switch e.Type {
	case ErrorTypeTimeout:
		return target == ErrTimeout
	case ErrorTypeDecode:
		return target == ErrInvalidResponse
	case ErrorTypeCanceled:
		return target == ErrContextCanceled
	}
	return false
}

// WithContext adds error context
func (e *Error) WithContext(ctx *ErrorContext) *Error {
	e.Context = ctx
	return e
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewError creates a new enhanced error
func NewError(errType ErrorType, message string, wrapped error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		wrapped:   wrapped,
	}
}

// APIError is returned when the API answers with an HTTP error status
// and a body that is not a DandB envelope (a proxy error page, for example).
// Error statuses that carry an envelope are returned as a Response instead.
//
// Example:
//
//	var apiErr *sdk.APIError
//	if errors.As(err, &apiErr) && apiErr.IsServerError() {
//	    // Upstream is unhealthy
//	}
type APIError struct {
	// StatusCode is the HTTP status code from the response
	StatusCode int
	// Body is the raw response body, truncated to 512 bytes
	Body string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API error (status %d)", e.StatusCode)
}

// IsServerError returns true if the error is a server error
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsClientError returns true if the error is a client error
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsUnauthorized reports a rejected or missing access token
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// NetworkError represents a network-related error such as connection
// refused, DNS resolution failure, or a broken connection.
type NetworkError struct {
	// Op is the operation that failed (e.g., "GET /v1/business/search")
	Op string
	// Err is the underlying network error
	Err error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ToError converts NetworkError to the enhanced Error type. Context
// cancellation and deadlines are classified separately from other
// network failures.
func (e *NetworkError) ToError() *Error {
	errType := ErrorTypeNetwork
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded) || isTimeout(e.Err):
		errType = ErrorTypeTimeout
	case errors.Is(e.Err, context.Canceled):
		errType = ErrorTypeCanceled
	}
	err := NewError(errType, e.Error(), e)
	err.WithDetail("operation", e.Op)
	return err
}

// CacheError wraps a failure reported by the configured TokenCache.
type CacheError struct {
	// Op is the cache operation that failed: "has", "get" or "put"
	Op  string
	Key string
	Err error
}

// Error implements the error interface
func (e *CacheError) Error() string {
	return fmt.Sprintf("token cache %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error
func (e *CacheError) Unwrap() error {
	return e.Err
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	return err != nil && errors.Is(err, ErrTimeout)
}

// IsNetwork reports whether err is a transport failure of any kind
// (network, timeout, cancellation).
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
