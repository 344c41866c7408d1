//go:build integration

package integration

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/birbparty/dandb-go/internal/cache"
	"github.com/birbparty/dandb-go/internal/cleanup"
	"github.com/birbparty/dandb-go/internal/database"
	"github.com/birbparty/dandb-go/internal/sandbox"
	"github.com/birbparty/dandb-go/internal/telemetry"
	"github.com/birbparty/dandb-go/sdk"
	"github.com/birbparty/dandb-go/tests/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const demoDUNS = "007280554"

// TokenCacheSuite runs SDK clients against the sandbox with the shared
// token caches backed by real Redis and PostgreSQL containers.
type TokenCacheSuite struct {
	suite.Suite
	ctx        context.Context
	containers *testutil.TestContainers
	baseURL    string
	sandbox    *sandbox.Config
}

func TestTokenCacheSuite(t *testing.T) {
	suite.Run(t, new(TokenCacheSuite))
}

func (s *TokenCacheSuite) SetupSuite() {
	s.ctx = context.Background()

	tc, err := testutil.StartContainers(s.ctx)
	s.Require().NoError(err)
	s.containers = tc

	s.sandbox = sandbox.DefaultConfig()
	store := sandbox.NewStore(s.sandbox.UserTokenTTL)
	sandbox.Seed(store)

	reg := prometheus.NewRegistry()
	metrics, err := telemetry.NewMetrics("integration", reg)
	s.Require().NoError(err)
	app := sandbox.NewApp(s.sandbox, store, metrics, reg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	go func() { _ = app.Listener(ln) }()
	s.T().Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	s.baseURL = "http://" + ln.Addr().String()
}

func (s *TokenCacheSuite) TearDownSuite() {
	if s.containers != nil {
		_ = s.containers.Cleanup(context.Background())
	}
}

func (s *TokenCacheSuite) redisCache(prefix string) *cache.RedisCache {
	cfg := cache.DefaultConfig()
	cfg.Host = s.containers.RedisHost
	cfg.Port = s.containers.RedisPort
	cfg.KeyPrefix = prefix

	rc, err := cache.NewRedisCache(cfg)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = rc.Close() })
	return rc
}

func (s *TokenCacheSuite) tokenStore(namespace string) *database.TokenStore {
	store, err := database.NewTokenStore(s.ctx, &database.Config{
		Host:      s.containers.PostgresHost,
		Port:      s.containers.PostgresPort,
		User:      testutil.PostgresUser,
		Password:  testutil.PostgresPassword,
		Database:  testutil.PostgresDatabase,
		MaxConns:  4,
		Namespace: namespace,
	})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = store.Close() })
	return store
}

func (s *TokenCacheSuite) client(tokens sdk.TokenCache, ttl time.Duration) (sdk.Client, *sdk.MetricsCollector) {
	metrics := sdk.NewMetricsCollector()
	client, err := sdk.NewClient(sdk.DefaultConfig().
		WithBaseURL(s.baseURL).
		WithCredentials(s.sandbox.ClientID, s.sandbox.ClientSecret).
		WithTimeout(5 * time.Second).
		WithTokenCache(tokens).
		WithTokenCacheTTL(ttl).
		WithObserver(metrics))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = client.Close() })
	return client, metrics
}

// searchTwice issues two business searches with each of two clients that
// share tokens, and returns how many token fetches each client made.
func (s *TokenCacheSuite) searchTwice(tokens sdk.TokenCache) (first, second int64) {
	t := s.T()
	a, aMetrics := s.client(tokens, time.Hour)
	b, bMetrics := s.client(tokens, time.Hour)

	for _, c := range []sdk.Client{a, a, b, b} {
		resp, err := c.BusinessSearchByDUNS(s.ctx, demoDUNS)
		require.NoError(t, err)
		code, _ := resp.ErrorCode()
		require.True(t, resp.IsValid(), "status %d code %s", resp.StatusCode(), code)
	}

	return aMetrics.GetMetrics()["token_fetches"].(int64), bMetrics.GetMetrics()["token_fetches"].(int64)
}

func (s *TokenCacheSuite) TestRedisSharesAccessToken() {
	rc := s.redisCache("it-share")

	first, second := s.searchTwice(rc)
	s.Equal(int64(1), first)
	s.Equal(int64(0), second, "the second client reuses the cached token")

	ttl, ok, err := rc.TTL(s.ctx, sdk.DefaultTokenCacheKey)
	s.Require().NoError(err)
	s.True(ok)
	s.InDelta(time.Hour.Seconds(), ttl.Seconds(), 5)
}

func (s *TokenCacheSuite) TestPostgresSharesAccessToken() {
	store := s.tokenStore("it-share")

	first, second := s.searchTwice(store)
	s.Equal(int64(1), first)
	s.Equal(int64(0), second, "the second client reuses the stored token")

	entries, err := store.Entries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(sdk.DefaultTokenCacheKey, entries[0].Key)
}

func (s *TokenCacheSuite) TestRedisExpiredTokenIsRefetched() {
	rc := s.redisCache("it-expire")
	client, metrics := s.client(rc, time.Second)

	resp, err := client.BusinessSearchByDUNS(s.ctx, demoDUNS)
	s.Require().NoError(err)
	s.True(resp.IsValid())

	time.Sleep(1500 * time.Millisecond)

	resp, err = client.BusinessSearchByDUNS(s.ctx, demoDUNS)
	s.Require().NoError(err)
	s.True(resp.IsValid())
	s.Equal(int64(2), metrics.GetMetrics()["token_fetches"])
}

func (s *TokenCacheSuite) TestCleanupPurgesPostgres() {
	store := s.tokenStore("it-purge")
	client, _ := s.client(store, time.Second)

	_, ok, err := client.AccessToken(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)

	time.Sleep(2 * time.Second)

	svc := cleanup.NewService(cleanup.DefaultConfig())
	svc.Register("postgres", cleanup.PurgerFunc(store.Purge))
	results := svc.Sweep(s.ctx)
	s.Require().Len(results, 1)
	s.NoError(results[0].Err)
	s.GreaterOrEqual(results[0].Purged, int64(1))

	found, err := store.Has(s.ctx, sdk.DefaultTokenCacheKey)
	s.Require().NoError(err)
	assert.False(s.T(), found)
}
