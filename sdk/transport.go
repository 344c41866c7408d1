package sdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// userAgent is sent with every request
	userAgent = "dandb-go-sdk/1.0.0"

	// maxErrorBody caps the body kept on APIError
	maxErrorBody = 512
)

// bodyEncoding selects how request parameters travel.
type bodyEncoding int

const (
	// encodeQuery puts params in the URL query (GET)
	encodeQuery bodyEncoding = iota
	// encodeForm sends params as application/x-www-form-urlencoded
	encodeForm
	// encodeJSON sends params as a flat JSON object
	encodeJSON
)

// outgoing describes a single HTTP request before it is sent.
type outgoing struct {
	method   string
	path     string
	params   Params
	encoding bodyEncoding
	// headers are applied after Config.Headers
	headers map[string]string
}

// incoming is the raw result of a round trip.
type incoming struct {
	status int
	header http.Header
	body   []byte
}

// httpTransport handles HTTP communication with the DandB API.
// It owns the *http.Client and knows nothing about tokens or envelopes.
type httpTransport struct {
	// client is the underlying HTTP client
	client *http.Client
	// config holds the SDK configuration
	config *Config
	// baseURL is the parsed base URL for the API
	baseURL *url.URL
	// observer for monitoring operations
	observer Observer
}

// newHTTPTransport creates the HTTP transport for a validated config.
// Config.HTTPClient, when set, replaces the pooled client built from
// Timeout and TransportConfig.
func newHTTPTransport(config *Config) (*httpTransport, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// Validate that it's a proper URL with scheme and host
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("base URL must have a scheme and host")
	}

	client := config.HTTPClient
	if client == nil {
		transport := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        config.TransportConfig.MaxIdleConns,
			MaxConnsPerHost:     config.TransportConfig.MaxConnsPerHost,
			IdleConnTimeout:     config.TransportConfig.IdleConnTimeout,
			TLSHandshakeTimeout: 10 * time.Second,
		}
		client = &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		}
	}

	observer := config.Observer
	if observer == nil {
		observer = &NoopObserver{}
	}

	return &httpTransport{
		client:   client,
		config:   config,
		baseURL:  baseURL,
		observer: observer,
	}, nil
}

// resolve joins path onto the base URL, keeping any base path prefix.
// path must already be escaped (see buildPath).
func (t *httpTransport) resolve(path string) string {
	base := *t.baseURL
	base.RawQuery = ""
	base.Fragment = ""
	return strings.TrimRight(base.String(), "/") + "/" + strings.TrimLeft(path, "/")
}

// roundTrip sends one request and reads the whole response body.
// Only transport failures are returned as errors; any HTTP status is
// handed back to the caller.
func (t *httpTransport) roundTrip(ctx context.Context, out *outgoing) (*incoming, error) {
	t.observer.OnRequestStart(out.method, out.path)
	start := time.Now()

	in, err := t.perform(ctx, out)

	status := 0
	if in != nil {
		status = in.status
	}
	t.observer.OnRequestEnd(out.method, out.path, status, time.Since(start), err)
	return in, err
}

func (t *httpTransport) perform(ctx context.Context, out *outgoing) (*incoming, error) {
	fullURL := t.resolve(out.path)

	var (
		bodyReader  io.Reader
		contentType string
	)
	switch out.encoding {
	case encodeQuery:
		if len(out.params) > 0 {
			fullURL += "?" + out.params.Encode()
		}
	case encodeForm:
		bodyReader = strings.NewReader(out.params.Encode())
		contentType = "application/x-www-form-urlencoded"
	case encodeJSON:
		data, err := out.params.MarshalJSON()
		if err != nil {
			return nil, NewError(ErrorTypeValidation, "failed to marshal request body", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, out.method, fullURL, bodyReader)
	if err != nil {
		return nil, NewError(ErrorTypeValidation, "failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// Custom headers first; per-request headers (the token) win
	for key, value := range t.config.Headers {
		req.Header.Set(key, value)
	}
	for key, value := range out.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		netErr := &NetworkError{Op: out.method + " " + out.path, Err: err}
		return nil, netErr.ToError().WithContext(&ErrorContext{
			URL:      t.resolve(out.path),
			Method:   out.method,
			Duration: time.Since(start),
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Op: "reading response", Err: err}
		return nil, netErr.ToError().WithContext(&ErrorContext{
			URL:      t.resolve(out.path),
			Method:   out.method,
			Duration: time.Since(start),
		})
	}

	return &incoming{
		status: resp.StatusCode,
		header: resp.Header,
		body:   body,
	}, nil
}

// close releases idle connections
func (t *httpTransport) close() error {
	t.client.CloseIdleConnections()
	return nil
}

// buildPath builds a URL path with proper escaping for path parameters.
// It replaces placeholders like {0}, {1}, etc. with the provided arguments,
// ensuring all special characters are properly URL-encoded.
//
// Example:
//
//	path := buildPath("/v1/verified/{0}", "007280554")
//	// Result: "/v1/verified/007280554"
//
//	path = buildPath("/v1/content/{0}/{1}", "about us", "en")
//	// Result: "/v1/content/about%20us/en"
//
// The function uses QueryEscape for encoding, then replaces '+' with '%20'
// to ensure proper space encoding in URL paths (as '+' is only valid in
// query strings, not paths).
func buildPath(pattern string, args ...string) string {
	path := pattern
	for i, arg := range args {
		placeholder := fmt.Sprintf("{%d}", i)
		escaped := url.QueryEscape(arg)
		escaped = strings.ReplaceAll(escaped, "+", "%20")
		path = strings.Replace(path, placeholder, escaped, 1)
	}
	return path
}

// truncate shortens s for error messages
func truncate(s []byte, n int) string {
	if len(s) <= n {
		return string(s)
	}
	return string(s[:n])
}
