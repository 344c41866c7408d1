package sdktest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MockServer is an httptest server that speaks the DandB envelope and
// records every request it receives.
type MockServer struct {
	*httptest.Server
	mu           sync.RWMutex
	handlers     map[string]HandlerFunc
	requestCount atomic.Int32
	tokenCount   atomic.Int32
	requests     []RecordedRequest
	accessToken  string
}

// HandlerFunc answers a request with a status and a JSON body. A []byte
// body is written verbatim.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) (int, interface{})

// RecordedRequest stores information about a received request
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Headers  http.Header
	Body     []byte
	Time     time.Time
}

// Form parses a form-urlencoded body
func (r RecordedRequest) Form() url.Values {
	v, _ := url.ParseQuery(string(r.Body))
	return v
}

// JSON decodes a JSON object body
func (r RecordedRequest) JSON() map[string]interface{} {
	m := map[string]interface{}{}
	_ = json.Unmarshal(r.Body, &m)
	return m
}

// FormKeys returns the body keys in wire order
func (r RecordedRequest) FormKeys() []string {
	return orderedKeys(string(r.Body))
}

// QueryKeys returns the query keys in wire order
func (r RecordedRequest) QueryKeys() []string {
	return orderedKeys(r.RawQuery)
}

func orderedKeys(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var keys []string
	for _, pair := range strings.Split(encoded, "&") {
		name, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(name); err == nil {
			keys = append(keys, k)
		}
	}
	return keys
}

// DefaultAccessToken is issued by the token endpoint unless overridden
const DefaultAccessToken = "test-access-token"

// NewMockServer creates a mock DandB API with a working token endpoint
func NewMockServer() *MockServer {
	ms := &MockServer{
		handlers:    make(map[string]HandlerFunc),
		requests:    make([]RecordedRequest, 0),
		accessToken: DefaultAccessToken,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", ms.handleRequest)

	ms.Server = httptest.NewServer(mux)
	ms.setupDefaultHandlers()

	return ms
}

func (ms *MockServer) setupDefaultHandlers() {
	ms.RegisterHandler("POST /v1/oauth/token", func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
		ms.tokenCount.Add(1)
		ms.mu.RLock()
		token := ms.accessToken
		ms.mu.RUnlock()
		if token == "" {
			return http.StatusOK, map[string]interface{}{"token_type": "Bearer"}
		}
		return http.StatusOK, map[string]interface{}{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
	})
}

// SetAccessToken changes the token issued by /v1/oauth/token. An empty
// token makes the endpoint answer without one.
func (ms *MockServer) SetAccessToken(token string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.accessToken = token
}

// RegisterHandler registers a handler for "METHOD /path". A pattern
// ending in "/" matches by prefix.
func (ms *MockServer) RegisterHandler(pattern string, handler HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[pattern] = handler
}

// RespondWith registers a handler that always returns body
func (ms *MockServer) RespondWith(pattern string, status int, body interface{}) {
	ms.RegisterHandler(pattern, func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
		return status, body
	})
}

func (ms *MockServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	body := make([]byte, 0)
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	ms.mu.Lock()
	ms.requests = append(ms.requests, RecordedRequest{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Query:    r.URL.Query(),
		Headers:  r.Header.Clone(),
		Body:     body,
		Time:     time.Now(),
	})
	ms.mu.Unlock()

	ms.requestCount.Add(1)

	pattern := r.Method + " " + r.URL.Path
	ms.mu.RLock()
	handler, exact := ms.handlers[pattern]
	if !exact {
		// Try prefix match for dynamic paths
		for p, h := range ms.handlers {
			if strings.HasSuffix(p, "/") && strings.HasPrefix(pattern, p) {
				handler = h
				break
			}
		}
	}
	ms.mu.RUnlock()

	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
			return http.StatusOK, Envelope(200, map[string]interface{}{"path": r.URL.Path})
		}
	}

	status, response := handler(w, r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	switch v := response.(type) {
	case nil:
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

// GetRequestCount returns the total number of requests received
func (ms *MockServer) GetRequestCount() int {
	return int(ms.requestCount.Load())
}

// GetTokenRequestCount returns how many access tokens were issued
func (ms *MockServer) GetTokenRequestCount() int {
	return int(ms.tokenCount.Load())
}

// GetRequests returns all recorded requests
func (ms *MockServer) GetRequests() []RecordedRequest {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]RecordedRequest, len(ms.requests))
	copy(result, ms.requests)
	return result
}

// APIRequests returns recorded requests other than token requests
func (ms *MockServer) APIRequests() []RecordedRequest {
	var out []RecordedRequest
	for _, r := range ms.GetRequests() {
		if r.Path != "/v1/oauth/token" {
			out = append(out, r)
		}
	}
	return out
}

// LastRequest returns the most recent non-token request
func (ms *MockServer) LastRequest() (RecordedRequest, bool) {
	reqs := ms.APIRequests()
	if len(reqs) == 0 {
		return RecordedRequest{}, false
	}
	return reqs[len(reqs)-1], true
}

// Reset clears all recorded requests
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.requestCount.Store(0)
	ms.tokenCount.Store(0)
	ms.requests = ms.requests[:0]
}

// WithDelayedResponse sets up a handler that delays before responding
func (ms *MockServer) WithDelayedResponse(pattern string, delay time.Duration, handler HandlerFunc) {
	ms.RegisterHandler(pattern, func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
		time.Sleep(delay)
		return handler(w, r)
	})
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	if ms.Server != nil {
		ms.Server.Close()
	}
}
