package sdk

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector(t *testing.T) {
	collector := NewMetricsCollector()

	collector.OnRequestStart("GET", "/v1/business/search")
	collector.OnRequestEnd("GET", "/v1/business/search", 200, 50*time.Millisecond, nil)
	collector.OnRequestStart("GET", "/v1/business/search")
	collector.OnRequestEnd("GET", "/v1/business/search", 0, 10*time.Millisecond, errors.New("refused"))
	collector.OnRequestStart("POST", "/v1/oauth/token")
	collector.OnRequestEnd("POST", "/v1/oauth/token", 200, 5*time.Millisecond, nil)

	collector.OnTokenCacheMiss("k")
	collector.OnTokenFetch(true, 5*time.Millisecond, nil)
	collector.OnTokenCacheHit("k")
	collector.OnTokenCacheHit("k")
	collector.OnTokenCacheHit("k")
	collector.OnTokenFetch(false, time.Millisecond, nil)

	m := collector.GetMetrics()

	requests := m["requests"].(map[string]int64)
	assert.Equal(t, int64(2), requests["GET /v1/business/search"])
	assert.Equal(t, int64(1), requests["POST /v1/oauth/token"])

	latencies := m["latencies"].(map[string][]time.Duration)
	assert.Len(t, latencies["GET /v1/business/search"], 2)

	errs := m["errors"].(map[string]int64)
	assert.Equal(t, int64(1), errs["GET /v1/business/search"])
	assert.Zero(t, errs["POST /v1/oauth/token"])

	statuses := m["statuses"].(map[int]int64)
	assert.Equal(t, int64(2), statuses[200])
	assert.Zero(t, statuses[0], "responses without a status are not counted")

	assert.Equal(t, int64(2), m["token_fetches"])
	assert.Equal(t, int64(1), m["token_fetches_empty"])
	assert.Equal(t, int64(3), m["token_cache_hits"])
	assert.Equal(t, int64(1), m["token_cache_misses"])
	assert.InDelta(t, 0.75, m["token_cache_hit_rate"].(float64), 0.0001)
}

func TestMetricsCollector_SnapshotIsCopy(t *testing.T) {
	collector := NewMetricsCollector()
	collector.OnRequestStart("GET", "/a")

	m := collector.GetMetrics()
	m["requests"].(map[string]int64)["GET /a"] = 100

	assert.Equal(t, int64(1), collector.GetMetrics()["requests"].(map[string]int64)["GET /a"])
}

func TestMetricsCollector_Concurrent(t *testing.T) {
	collector := NewMetricsCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.OnRequestStart("GET", "/x")
			collector.OnRequestEnd("GET", "/x", 200, time.Millisecond, nil)
			collector.OnTokenCacheHit("k")
			_ = collector.GetMetrics()
		}()
	}
	wg.Wait()

	m := collector.GetMetrics()
	assert.Equal(t, int64(50), m["requests"].(map[string]int64)["GET /x"])
	assert.Equal(t, int64(50), m["token_cache_hits"])
}

type panicObserver struct {
	NoopObserver
}

func (panicObserver) OnRequestStart(method, path string) { panic("boom") }

func TestCompositeObserver(t *testing.T) {
	first := NewMetricsCollector()
	second := NewMetricsCollector()
	composite := NewCompositeObserver(first, nil, &panicObserver{}, second)

	assert.NotPanics(t, func() {
		composite.OnRequestStart("GET", "/v1/user")
	})
	composite.OnRequestEnd("GET", "/v1/user", 200, time.Millisecond, nil)
	composite.OnTokenCacheHit("k")
	composite.OnTokenCacheMiss("k")
	composite.OnTokenFetch(true, time.Millisecond, nil)

	for _, c := range []*MetricsCollector{first, second} {
		m := c.GetMetrics()
		assert.Equal(t, int64(1), m["requests"].(map[string]int64)["GET /v1/user"])
		assert.Equal(t, int64(1), m["token_cache_hits"])
		assert.Equal(t, int64(1), m["token_cache_misses"])
		assert.Equal(t, int64(1), m["token_fetches"])
	}
}

func TestNoopObserver(t *testing.T) {
	var obs Observer = &NoopObserver{}
	assert.NotPanics(t, func() {
		obs.OnRequestStart("GET", "/")
		obs.OnRequestEnd("GET", "/", 200, 0, nil)
		obs.OnTokenCacheHit("k")
		obs.OnTokenCacheMiss("k")
		obs.OnTokenFetch(false, 0, nil)
	})
}
