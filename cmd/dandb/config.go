package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/birbparty/dandb-go/internal/cache"
	"github.com/birbparty/dandb-go/internal/database"
	"github.com/birbparty/dandb-go/sdk"
)

// Token cache backends selectable with DANDB_TOKEN_CACHE
const (
	cacheNone     = "none"
	cacheMemory   = "memory"
	cacheRedis    = "redis"
	cachePostgres = "postgres"
)

// cliConfig holds the CLI settings read from the environment
type cliConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	AccessToken  string
	Timeout      time.Duration
	TokenCache   string
}

func loadConfig() (*cliConfig, error) {
	timeout, err := strconv.Atoi(getEnvOrDefault("DANDB_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DANDB_TIMEOUT: %w", err)
	}

	cfg := &cliConfig{
		BaseURL:      getEnvOrDefault("DANDB_BASE_URL", sdk.DefaultBaseURL),
		ClientID:     os.Getenv("DANDB_CLIENT_ID"),
		ClientSecret: os.Getenv("DANDB_CLIENT_SECRET"),
		AccessToken:  os.Getenv("DANDB_ACCESS_TOKEN"),
		Timeout:      time.Duration(timeout) * time.Second,
		TokenCache:   getEnvOrDefault("DANDB_TOKEN_CACHE", cacheMemory),
	}

	switch cfg.TokenCache {
	case cacheNone, cacheMemory, cacheRedis, cachePostgres:
	default:
		return nil, fmt.Errorf("invalid DANDB_TOKEN_CACHE %q: want none, memory, redis or postgres", cfg.TokenCache)
	}
	return cfg, nil
}

// openTokenCache connects the configured token cache. The returned closer
// releases its connections and is never nil.
func openTokenCache(ctx context.Context, backend string) (sdk.TokenCache, io.Closer, error) {
	switch backend {
	case cacheRedis:
		cfg, err := cache.NewConfigFromEnv()
		if err != nil {
			return nil, nil, err
		}
		rc, err := cache.NewRedisCache(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return rc, rc, nil

	case cachePostgres:
		cfg, err := database.NewConfigFromEnv()
		if err != nil {
			return nil, nil, err
		}
		store, err := database.NewTokenStore(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return store, store, nil

	case cacheMemory:
		return sdk.NewMemoryTokenCache(), nopCloser{}, nil
	}
	return nil, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newClient builds the SDK client for cfg
func newClient(cfg *cliConfig, tokens sdk.TokenCache, observer sdk.Observer) (sdk.Client, error) {
	config := sdk.DefaultConfig().
		WithBaseURL(cfg.BaseURL).
		WithTimeout(cfg.Timeout).
		WithObserver(observer)

	if cfg.AccessToken != "" {
		config = config.WithAccessToken(cfg.AccessToken)
	} else {
		config = config.WithCredentials(cfg.ClientID, cfg.ClientSecret)
	}
	if tokens != nil {
		config = config.WithTokenCache(tokens)
	}
	return sdk.NewClient(config)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
