package sdk

import (
	"context"
	"net/http"
	"time"
)

// tokenPath is the OAuth2 client-credentials endpoint.
const tokenPath = "/v1/oauth/token"

// TokenCache stores the API access token between calls. Implementations
// must be safe for concurrent use. The SDK never evicts; evict through
// the cache itself.
//
// Reference implementations: MemoryTokenCache in this package, a Redis
// cache and a PostgreSQL store in the repository's internal packages.
type TokenCache interface {
	// Has reports whether key holds a value.
	Has(ctx context.Context, key string) (bool, error)
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) (string, error)
	// Put stores value under key for ttl.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// tokenProvider resolves the access token for outgoing requests.
//
// Resolution order:
//  1. the token preconfigured in Config.AccessToken (no network, no cache)
//  2. the TokenCache, when configured (fetch and Put on miss)
//  3. a fresh client-credentials request
//
// There is no expiry tracking or locking: concurrent misses each fetch
// and the last Put wins.
type tokenProvider struct {
	transport *httpTransport
	config    *Config
	cache     TokenCache
	observer  Observer
}

func newTokenProvider(transport *httpTransport, config *Config) *tokenProvider {
	return &tokenProvider{
		transport: transport,
		config:    config,
		cache:     config.TokenCache,
		observer:  transport.observer,
	}
}

// AccessToken returns the token to send. ok is false when the token
// endpoint answered without one; that is not an error.
func (p *tokenProvider) AccessToken(ctx context.Context) (string, bool, error) {
	if p.config.AccessToken != "" {
		return p.config.AccessToken, true, nil
	}

	if p.cache == nil {
		return p.FetchToken(ctx)
	}

	key := p.config.TokenCacheKey
	found, err := p.cache.Has(ctx, key)
	if err != nil {
		return "", false, cacheFailure("has", key, err)
	}
	if found {
		token, err := p.cache.Get(ctx, key)
		if err != nil {
			return "", false, cacheFailure("get", key, err)
		}
		// An empty value means the entry expired after Has; fetch as on a miss
		if token != "" {
			p.observer.OnTokenCacheHit(key)
			return token, true, nil
		}
	}

	p.observer.OnTokenCacheMiss(key)
	token, ok, err := p.FetchToken(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	if err := p.cache.Put(ctx, key, token, p.config.TokenCacheTTL); err != nil {
		return "", false, cacheFailure("put", key, err)
	}
	return token, true, nil
}

// FetchToken always requests a new token, bypassing the cache.
func (p *tokenProvider) FetchToken(ctx context.Context) (token string, ok bool, err error) {
	start := time.Now()
	defer func() {
		p.observer.OnTokenFetch(ok, time.Since(start), err)
	}()

	in, err := p.transport.roundTrip(ctx, &outgoing{
		method: http.MethodPost,
		path:   tokenPath,
		params: Params{}.
			Add("client_id", p.config.ClientID).
			Add("client_secret", p.config.ClientSecret).
			Add("grant_type", "client_credentials"),
		encoding: encodeForm,
	})
	if err != nil {
		return "", false, err
	}

	body, err := decodeBody(in)
	if err != nil {
		return "", false, err
	}

	switch v := body["access_token"].(type) {
	case string:
		return v, v != "", nil
	case nil:
		return "", false, nil
	default:
		// Numbers and other scalars are sent back as their JSON text
		if s, ok := scalarString(v); ok {
			return s, s != "", nil
		}
		return "", false, nil
	}
}

func cacheFailure(op, key string, err error) error {
	cacheErr := &CacheError{Op: op, Key: key, Err: err}
	return NewError(ErrorTypeCache, cacheErr.Error(), cacheErr)
}
