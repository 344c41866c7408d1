package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/birbparty/dandb-go/sdk"
	"github.com/birbparty/dandb-go/sdk/sdktest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type observerFixture struct {
	observer *Observer
	metrics  *Metrics
	hook     *test.Hook
	spans    *tracetest.SpanRecorder
}

func newObserverFixture(t *testing.T) *observerFixture {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	metrics, err := NewMetrics("test", prometheus.NewRegistry())
	require.NoError(t, err)

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return &observerFixture{
		observer: NewObserver(logger, metrics, tp.Tracer("test")),
		metrics:  metrics,
		hook:     hook,
		spans:    spans,
	}
}

func TestObserver_Request(t *testing.T) {
	f := newObserverFixture(t)

	f.observer.OnRequestStart("GET", "/v1/verified/007280554")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requestsInFlight))

	f.observer.OnRequestEnd("GET", "/v1/verified/007280554", 200, 120*time.Millisecond, nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.requestsInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requestsTotal.WithLabelValues("GET", "/v1/verified/:id", "200")))

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "dandb-sdk", entry.Data["component"])
	assert.Equal(t, 200, entry.Data["status"])
	assert.Equal(t, int64(120), entry.Data["duration"])
	assert.Contains(t, entry.Data, "trace.id")

	ended := f.spans.Ended()
	require.Len(t, ended, 1)
	span := ended[0]
	assert.Equal(t, "GET /v1/verified/:id", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)
	assert.InDelta(t, float64(120*time.Millisecond), float64(span.EndTime().Sub(span.StartTime())), float64(time.Millisecond))
}

func TestObserver_RequestFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		duration time.Duration
		err      error
		level    logrus.Level
		label    string
		spanCode codes.Code
	}{
		{"transport error", 0, time.Millisecond, errors.New("connection refused"), logrus.ErrorLevel, "error", codes.Error},
		{"error status", 502, time.Millisecond, nil, logrus.WarnLevel, "502", codes.Error},
		{"slow request", 200, 3 * time.Second, nil, logrus.WarnLevel, "200", codes.Ok},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newObserverFixture(t)

			f.observer.OnRequestEnd("POST", "/v1/business/search", tt.status, tt.duration, tt.err)

			entry := f.hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.level, entry.Level)
			if tt.err != nil {
				assert.Equal(t, tt.err, entry.Data[logrus.ErrorKey])
			}

			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requestsTotal.WithLabelValues("POST", "/v1/business/search", tt.label)))

			ended := f.spans.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, tt.spanCode, ended[0].Status().Code)
		})
	}
}

func TestObserver_TokenEvents(t *testing.T) {
	f := newObserverFixture(t)

	f.observer.OnTokenCacheMiss("access-token-cache-key")
	f.observer.OnTokenCacheHit("access-token-cache-key")
	f.observer.OnTokenCacheHit("access-token-cache-key")

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.tokenCacheHits.WithLabelValues("access-token-cache-key")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.tokenCacheMisses.WithLabelValues("access-token-cache-key")))

	f.observer.OnTokenFetch(true, 10*time.Millisecond, nil)
	assert.Equal(t, logrus.InfoLevel, f.hook.LastEntry().Level)

	f.observer.OnTokenFetch(false, 10*time.Millisecond, nil)
	assert.Equal(t, logrus.WarnLevel, f.hook.LastEntry().Level)

	f.observer.OnTokenFetch(false, 10*time.Millisecond, errors.New("boom"))
	assert.Equal(t, logrus.ErrorLevel, f.hook.LastEntry().Level)

	for _, result := range []string{"ok", "absent", "error"} {
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.tokenFetchesTotal.WithLabelValues(result)), result)
	}
}

func TestObserver_NilSignals(t *testing.T) {
	logger, hook := test.NewNullLogger()
	observer := NewObserver(logger, nil, nil)

	assert.NotPanics(t, func() {
		observer.OnRequestStart("GET", "/v1/cms")
		observer.OnRequestEnd("GET", "/v1/cms", 200, time.Millisecond, nil)
		observer.OnTokenCacheHit("k")
		observer.OnTokenCacheMiss("k")
		observer.OnTokenFetch(true, time.Millisecond, nil)
	})
	assert.NotContains(t, hook.LastEntry().Data, "trace.id")
}

func TestObserver_WithClient(t *testing.T) {
	f := newObserverFixture(t)
	ts := sdktest.NewTestSuite(t)
	ts.Server.RespondWith("GET /v1/verified/", 200, sdktest.Envelope(200, map[string]interface{}{"name": "Acme"}))

	config := sdk.DefaultConfig().
		WithBaseURL(ts.BaseURL).
		WithCredentials("client-id", "client-secret").
		WithTokenCache(sdk.NewMemoryTokenCache()).
		WithObserver(f.observer)
	client, err := sdk.NewClient(config)
	require.NoError(t, err)
	defer client.Close()

	for i := 0; i < 2; i++ {
		resp, err := client.VerifiedProfile(ts.Context, "123456789")
		require.NoError(t, err)
		assert.True(t, resp.IsValid())
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.tokenFetchesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.tokenCacheMisses.WithLabelValues(sdk.DefaultTokenCacheKey)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.tokenCacheHits.WithLabelValues(sdk.DefaultTokenCacheKey)))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.requestsTotal.WithLabelValues("GET", "/v1/verified/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requestsTotal.WithLabelValues("POST", "/v1/oauth/token", "200")))
	assert.Len(t, f.spans.Ended(), 3)
}
