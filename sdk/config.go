package sdk

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultBaseURL is the production DandB API.
	DefaultBaseURL = "https://api.dandb.com"

	// DefaultTokenCacheKey is the cache key the access token is stored under.
	DefaultTokenCacheKey = "access-token-cache-key"

	// DefaultTokenCacheTTL is how long a fetched access token stays cached.
	DefaultTokenCacheTTL = 36000 * time.Second
)

// Config holds the configuration for the DandB client.
// Only the credentials are required; everything else has a default.
//
// Configuration can be built using the fluent builder pattern:
//
//	config := sdk.DefaultConfig().
//	    WithCredentials("client-id", "client-secret").
//	    WithTimeout(10 * time.Second).
//	    WithTokenCache(sdk.NewMemoryTokenCache())
//
//	client, err := sdk.NewClient(config)
type Config struct {
	// BaseURL is the base URL of the DandB API.
	// Default: "https://api.dandb.com"
	BaseURL string `validate:"required,url"`

	// ClientID and ClientSecret are the OAuth2 client credentials used
	// to obtain an access token.
	ClientID     string `validate:"required_without=AccessToken"`
	ClientSecret string `validate:"required_without=AccessToken"`

	// AccessToken, when set, is sent with every request and no token is
	// ever fetched or cached.
	AccessToken string

	// Timeout is the HTTP request timeout.
	// This includes connection time, any redirects, and reading the response body.
	// Default: 30s
	Timeout time.Duration `validate:"gte=0"`

	// TransportConfig holds HTTP transport settings.
	TransportConfig TransportConfig

	// HTTPClient replaces the client built from Timeout and TransportConfig.
	HTTPClient *http.Client `validate:"-"`

	// Headers are custom headers to include in all requests.
	// The access token header is always set last and cannot be overridden here.
	Headers map[string]string

	// TokenCache stores the access token between requests. If nil, a new
	// token is requested for every API call.
	TokenCache TokenCache `validate:"-"`

	// TokenCacheKey is the key used with TokenCache.
	// Default: "access-token-cache-key"
	TokenCacheKey string

	// TokenCacheTTL is the TTL passed to TokenCache.Put.
	// Default: 36000s
	TokenCacheTTL time.Duration `validate:"gte=0"`

	// Observer for monitoring operations.
	// If nil, NoopObserver is used.
	Observer Observer `validate:"-"`
}

// TransportConfig holds HTTP transport configuration for connection pooling.
type TransportConfig struct {
	// MaxIdleConns controls the maximum number of idle connections
	// across all hosts. Zero means no limit.
	// Default: 100
	MaxIdleConns int `validate:"gte=0"`

	// MaxConnsPerHost controls the maximum connections per host.
	// Default: 10
	MaxConnsPerHost int `validate:"gte=0"`

	// IdleConnTimeout is the maximum time an idle connection will remain idle
	// before closing itself. Zero means no limit.
	// Default: 90s
	IdleConnTimeout time.Duration `validate:"gte=0"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// clone returns a shallow copy with its own Headers map, so builder calls
// on the caller's Config do not reach a running client
func (c *Config) clone() *Config {
	copied := *c
	copied.Headers = make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		copied.Headers[k] = v
	}
	return &copied
}

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// DefaultConfig returns a Config pointing at the production API with
// a 30 second timeout and no token cache. Credentials must still be set.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
		TransportConfig: TransportConfig{
			MaxIdleConns:    100,
			MaxConnsPerHost: 10,
			IdleConnTimeout: 90 * time.Second,
		},
		Headers:       make(map[string]string),
		TokenCacheKey: DefaultTokenCacheKey,
		TokenCacheTTL: DefaultTokenCacheTTL,
		Observer:      &NoopObserver{},
	}
}

// WithBaseURL sets the base URL for the DandB API.
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithBaseURL("https://api.sandbox.dandb.com")
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithCredentials sets the OAuth2 client id and secret.
func (c *Config) WithCredentials(clientID, clientSecret string) *Config {
	c.ClientID = clientID
	c.ClientSecret = clientSecret
	return c
}

// WithAccessToken sets a pre-issued access token. The client will never
// request one itself.
func (c *Config) WithAccessToken(token string) *Config {
	c.AccessToken = token
	return c
}

// WithTimeout sets the request timeout for all operations.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithHTTPClient replaces the HTTP client used for every request.
func (c *Config) WithHTTPClient(client *http.Client) *Config {
	c.HTTPClient = client
	return c
}

// WithHeader adds a custom header to be sent with all requests.
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithHeader("X-Request-Source", "billing")
func (c *Config) WithHeader(key, value string) *Config {
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	c.Headers[key] = value
	return c
}

// WithTokenCache sets the cache used to keep the access token between calls.
func (c *Config) WithTokenCache(cache TokenCache) *Config {
	c.TokenCache = cache
	return c
}

// WithTokenCacheKey overrides the key the access token is cached under.
func (c *Config) WithTokenCacheKey(key string) *Config {
	c.TokenCacheKey = key
	return c
}

// WithTokenCacheTTL overrides how long a fetched access token is cached.
func (c *Config) WithTokenCacheTTL(ttl time.Duration) *Config {
	c.TokenCacheTTL = ttl
	return c
}

// WithObserver sets a custom observer for monitoring SDK operations.
func (c *Config) WithObserver(observer Observer) *Config {
	c.Observer = observer
	return c
}

// Validate validates the configuration and sets defaults for missing values.
// This is called automatically by NewClient.
func (c *Config) Validate() error {
	if err := configValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.TokenCacheKey == "" {
		c.TokenCacheKey = DefaultTokenCacheKey
	}
	if c.TokenCacheTTL <= 0 {
		c.TokenCacheTTL = DefaultTokenCacheTTL
	}
	if c.Observer == nil {
		c.Observer = &NoopObserver{}
	}
	return nil
}
