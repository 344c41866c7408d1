package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the prometheus collectors for SDK calls and the sandbox
// HTTP server.
type Metrics struct {
	// SDK metrics
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	requestsInFlight  prometheus.Gauge
	tokenCacheHits    *prometheus.CounterVec
	tokenCacheMisses  *prometheus.CounterVec
	tokenFetchesTotal *prometheus.CounterVec
	tokenFetchLatency prometheus.Histogram

	// Sandbox server metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
	meterProvider      *sdkmetric.MeterProvider
)

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "requests_total",
			Help:      "Total number of DandB API requests",
		}, []string{"method", "path", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "request_duration_seconds",
			Help:      "Duration of DandB API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "requests_in_flight",
			Help:      "Number of DandB API requests awaiting a response",
		}),

		tokenCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "token_cache_hits_total",
			Help:      "Total number of access tokens served from the token cache",
		}, []string{"key"}),

		tokenCacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "token_cache_misses_total",
			Help:      "Total number of token cache misses",
		}, []string{"key"}),

		tokenFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "token_fetches_total",
			Help:      "Total number of access token requests by result",
		}, []string{"result"}),

		tokenFetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sdk",
			Name:      "token_fetch_duration_seconds",
			Help:      "Duration of access token requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sandbox",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "endpoint", "status"}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sandbox",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}

	collectors := []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.requestsInFlight,
		m.tokenCacheHits,
		m.tokenCacheMisses,
		m.tokenFetchesTotal,
		m.tokenFetchLatency,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// DefaultMetrics returns the collectors registered with the prometheus
// default registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics("dandb", prometheus.DefaultRegisterer)
		if err != nil {
			panic(err)
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// InitMetrics starts the OTLP metric exporter when metrics are enabled
func InitMetrics(ctx context.Context, cfg *Config) error {
	if !cfg.EnableMetrics || cfg.ExportToFile {
		return nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return err
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(cfg.MetricsInterval)*time.Second),
			),
		),
	)
	otel.SetMeterProvider(meterProvider)
	return nil
}

// CloseMetrics flushes and stops the OTLP metric exporter
func CloseMetrics(ctx context.Context) error {
	if meterProvider == nil {
		return nil
	}
	err := meterProvider.Shutdown(ctx)
	meterProvider = nil
	return err
}

// RecordRequest records a completed SDK request. status 0 means no
// response was received.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	route := RouteLabel(path)
	m.requestsTotal.WithLabelValues(method, route, label).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RequestStarted marks a request in flight
func (m *Metrics) RequestStarted() {
	m.requestsInFlight.Inc()
}

// RequestFinished clears a request in flight
func (m *Metrics) RequestFinished() {
	m.requestsInFlight.Dec()
}

// RecordTokenCacheHit records a token served from the cache
func (m *Metrics) RecordTokenCacheHit(key string) {
	m.tokenCacheHits.WithLabelValues(key).Inc()
}

// RecordTokenCacheMiss records a token cache miss
func (m *Metrics) RecordTokenCacheMiss(key string) {
	m.tokenCacheMisses.WithLabelValues(key).Inc()
}

// RecordTokenFetch records an access token request. result is one of
// "ok", "absent" or "error".
func (m *Metrics) RecordTokenFetch(result string, duration time.Duration) {
	m.tokenFetchesTotal.WithLabelValues(result).Inc()
	m.tokenFetchLatency.Observe(duration.Seconds())
}

// RecordHTTPRequest records a request served by the sandbox
func (m *Metrics) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RouteLabel replaces numeric path segments such as DUNS numbers with
// ":id" to keep label cardinality bounded.
func RouteLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s != "" && isDigits(s) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
