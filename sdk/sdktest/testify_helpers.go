package sdktest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuite provides common test setup and utilities
type TestSuite struct {
	T          *testing.T
	Server     *MockServer
	BaseURL    string
	Context    context.Context
	CancelFunc context.CancelFunc
}

// NewTestSuite creates a new test suite with mock server
func NewTestSuite(t *testing.T) *TestSuite {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	server := NewMockServer()

	ts := &TestSuite{
		T:          t,
		Server:     server,
		BaseURL:    server.URL,
		Context:    ctx,
		CancelFunc: cancel,
	}
	t.Cleanup(ts.Cleanup)
	return ts
}

// Cleanup cleans up test resources
func (ts *TestSuite) Cleanup() {
	if ts.CancelFunc != nil {
		ts.CancelFunc()
	}
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// RequireLastRequest returns the most recent non-token request
func (ts *TestSuite) RequireLastRequest() RecordedRequest {
	ts.T.Helper()
	req, ok := ts.Server.LastRequest()
	require.True(ts.T, ok, "expected at least one API request")
	return req
}

// AssertRequest checks the method and path of a recorded request
func AssertRequest(t *testing.T, req RecordedRequest, method, path string) {
	t.Helper()
	assert.Equal(t, method, req.Method, "method mismatch")
	assert.Equal(t, path, req.Path, "path mismatch")
}

// AssertFormEquals checks a form body field by field, in order
func AssertFormEquals(t *testing.T, req RecordedRequest, keys []string, values map[string]string) {
	t.Helper()
	assert.Equal(t, keys, req.FormKeys(), "form keys mismatch")
	form := req.Form()
	for k, v := range values {
		assert.Equal(t, v, form.Get(k), "form field %q", k)
	}
}

// AssertEventuallyConsistent checks that a condition becomes true within timeout
func AssertEventuallyConsistent(t *testing.T, condition func() bool, timeout time.Duration, tick time.Duration, msgAndArgs ...interface{}) {
	assert.Eventually(t, condition, timeout, tick, msgAndArgs...)
}
