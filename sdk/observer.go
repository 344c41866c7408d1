package sdk

import (
	"sync"
	"time"
)

// Observer provides hooks for monitoring SDK operations.
// Implement this interface to track performance metrics, debug issues,
// or integrate with your observability stack.
//
// Observer methods should be fast and non-blocking to avoid impacting performance.
//
// Example implementation:
//
//	type LogObserver struct {
//	    logger *log.Logger
//	}
//
//	func (o *LogObserver) OnRequestStart(method, path string) {
//	    o.logger.Printf("[START] %s %s", method, path)
//	}
//
//	func (o *LogObserver) OnRequestEnd(method, path string, status int, duration time.Duration, err error) {
//	    if err != nil {
//	        o.logger.Printf("[ERROR] %s %s - %v (took %v)", method, path, err, duration)
//	    } else {
//	        o.logger.Printf("[%d] %s %s (took %v)", status, method, path, duration)
//	    }
//	}
//
//	// ... remaining methods
//
//	config := sdk.DefaultConfig().
//	    WithObserver(&LogObserver{logger: log.Default()})
type Observer interface {
	// OnRequestStart is called when an HTTP request starts, including
	// the access token request.
	//
	// Parameters:
	//   - method: HTTP method (GET, POST)
	//   - path: Request path without query (e.g., "/v1/business/search")
	OnRequestStart(method, path string)

	// OnRequestEnd is called when an HTTP request completes.
	//
	// Parameters:
	//   - method: HTTP method
	//   - path: Request path
	//   - status: HTTP status code, 0 when no response was received
	//   - duration: Time taken for the request
	//   - err: Transport error if the request failed, nil otherwise.
	//     Business failures carried in the envelope are not errors.
	OnRequestEnd(method, path string, status int, duration time.Duration, err error)

	// OnTokenCacheHit is called when the access token was served from the TokenCache.
	OnTokenCacheHit(key string)

	// OnTokenCacheMiss is called when the TokenCache had no access token.
	OnTokenCacheMiss(key string)

	// OnTokenFetch is called after an access token request.
	// ok reports whether the response contained a token.
	OnTokenFetch(ok bool, duration time.Duration, err error)
}

// NoopObserver is a no-op implementation of Observer that does nothing.
// This is the default observer used when none is configured.
type NoopObserver struct{}

// OnRequestStart does nothing
func (n *NoopObserver) OnRequestStart(method, path string) {}

// OnRequestEnd does nothing
func (n *NoopObserver) OnRequestEnd(method, path string, status int, duration time.Duration, err error) {
}

// OnTokenCacheHit does nothing
func (n *NoopObserver) OnTokenCacheHit(key string) {}

// OnTokenCacheMiss does nothing
func (n *NoopObserver) OnTokenCacheMiss(key string) {}

// OnTokenFetch does nothing
func (n *NoopObserver) OnTokenFetch(ok bool, duration time.Duration, err error) {}

// MetricsCollector is a simple in-memory metrics implementation.
// It collects request counts, latencies, error counts, HTTP status
// counts and token cache statistics.
//
// Note: This implementation stores all data in memory and is primarily
// intended for debugging and testing. For production use, implement
// Observer to export metrics to your monitoring system.
//
// Example:
//
//	metrics := sdk.NewMetricsCollector()
//	config := sdk.DefaultConfig().
//	    WithCredentials(id, secret).
//	    WithObserver(metrics)
//
//	client, _ := sdk.NewClient(config)
//	// Use client...
//
//	snapshot := metrics.GetMetrics()
//	fmt.Printf("Token cache hit rate: %.2f%%\n", snapshot["token_cache_hit_rate"].(float64)*100)
type MetricsCollector struct {
	mu              sync.RWMutex
	requestCount    map[string]int64
	latencies       map[string][]time.Duration
	errorCount      map[string]int64
	statusCount     map[int]int64
	tokenFetchCount int64
	tokenEmptyCount int64
	cacheHitCount   int64
	cacheMissCount  int64
}

// NewMetricsCollector creates a new metrics collector for tracking SDK operations.
// The collector is thread-safe and can be used concurrently.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		requestCount: make(map[string]int64),
		latencies:    make(map[string][]time.Duration),
		errorCount:   make(map[string]int64),
		statusCount:  make(map[int]int64),
	}
}

// OnRequestStart increments request count
func (m *MetricsCollector) OnRequestStart(method, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[method+" "+path]++
}

// OnRequestEnd records request duration, status and errors
func (m *MetricsCollector) OnRequestEnd(method, path string, status int, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := method + " " + path
	m.latencies[key] = append(m.latencies[key], duration)
	if status > 0 {
		m.statusCount[status]++
	}
	if err != nil {
		m.errorCount[key]++
	}
}

// OnTokenCacheHit increments cache hit count
func (m *MetricsCollector) OnTokenCacheHit(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHitCount++
}

// OnTokenCacheMiss increments cache miss count
func (m *MetricsCollector) OnTokenCacheMiss(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMissCount++
}

// OnTokenFetch counts token requests and responses without a token
func (m *MetricsCollector) OnTokenFetch(ok bool, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenFetchCount++
	if err == nil && !ok {
		m.tokenEmptyCount++
	}
}

// GetMetrics returns a snapshot of current metrics.
// The returned map is a copy and safe to read without locks.
//
// The metrics include:
//   - "requests": Map of endpoint to request count
//   - "latencies": Map of endpoint to latency measurements
//   - "errors": Map of endpoint to error count
//   - "statuses": Map of HTTP status code to response count
//   - "token_fetches": Total access token requests
//   - "token_fetches_empty": Token responses without an access_token
//   - "token_cache_hits": Total token cache hits
//   - "token_cache_misses": Total token cache misses
//   - "token_cache_hit_rate": Calculated hit rate (0.0 to 1.0)
func (m *MetricsCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requestsCopy := make(map[string]int64, len(m.requestCount))
	for k, v := range m.requestCount {
		requestsCopy[k] = v
	}

	latenciesCopy := make(map[string][]time.Duration, len(m.latencies))
	for k, v := range m.latencies {
		latenciesCopy[k] = append([]time.Duration(nil), v...)
	}

	errorsCopy := make(map[string]int64, len(m.errorCount))
	for k, v := range m.errorCount {
		errorsCopy[k] = v
	}

	statusesCopy := make(map[int]int64, len(m.statusCount))
	for k, v := range m.statusCount {
		statusesCopy[k] = v
	}

	cacheTotal := m.cacheHitCount + m.cacheMissCount
	cacheHitRate := float64(0)
	if cacheTotal > 0 {
		cacheHitRate = float64(m.cacheHitCount) / float64(cacheTotal)
	}

	return map[string]interface{}{
		"requests":             requestsCopy,
		"latencies":            latenciesCopy,
		"errors":               errorsCopy,
		"statuses":             statusesCopy,
		"token_fetches":        m.tokenFetchCount,
		"token_fetches_empty":  m.tokenEmptyCount,
		"token_cache_hits":     m.cacheHitCount,
		"token_cache_misses":   m.cacheMissCount,
		"token_cache_hit_rate": cacheHitRate,
	}
}

// CompositeObserver allows multiple observers to be combined into one.
// All observer methods are called on each child observer in order.
// A panicking observer is recovered so the others still run.
//
// Example:
//
//	composite := sdk.NewCompositeObserver(
//	    sdk.NewMetricsCollector(),
//	    telemetryObserver,
//	)
//
//	config := sdk.DefaultConfig().
//	    WithObserver(composite)
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an observer that delegates to multiple observers.
// Nil observers are skipped.
func NewCompositeObserver(observers ...Observer) Observer {
	kept := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			kept = append(kept, obs)
		}
	}
	return &CompositeObserver{observers: kept}
}

func (c *CompositeObserver) each(fn func(Observer)) {
	for _, obs := range c.observers {
		func() {
			defer func() {
				// Observer panicked, ignore
				_ = recover()
			}()
			fn(obs)
		}()
	}
}

// OnRequestStart notifies all observers of request start.
func (c *CompositeObserver) OnRequestStart(method, path string) {
	c.each(func(o Observer) { o.OnRequestStart(method, path) })
}

// OnRequestEnd notifies all observers of request completion.
func (c *CompositeObserver) OnRequestEnd(method, path string, status int, duration time.Duration, err error) {
	c.each(func(o Observer) { o.OnRequestEnd(method, path, status, duration, err) })
}

// OnTokenCacheHit notifies all observers
func (c *CompositeObserver) OnTokenCacheHit(key string) {
	c.each(func(o Observer) { o.OnTokenCacheHit(key) })
}

// OnTokenCacheMiss notifies all observers
func (c *CompositeObserver) OnTokenCacheMiss(key string) {
	c.each(func(o Observer) { o.OnTokenCacheMiss(key) })
}

// OnTokenFetch notifies all observers
func (c *CompositeObserver) OnTokenFetch(ok bool, duration time.Duration, err error) {
	c.each(func(o Observer) { o.OnTokenFetch(ok, duration, err) })
}
