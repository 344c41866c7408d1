package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestFiberMiddleware(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
	t.Cleanup(func() {
		loggerMu.Lock()
		logger = nil
		loggerMu.Unlock()
	})

	metrics, err := NewMetrics("test", prometheus.NewRegistry())
	require.NoError(t, err)

	app := fiber.New()
	app.Use(requestid.New(), FiberLoggingMiddleware(), FiberMetricsMiddleware(metrics))
	app.Get("/v1/verified/:id", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream down")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/verified/804735132?user_token=secret", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/v1/verified/:id", "200")))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /v1/verified/:id", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("http.route", "/v1/verified/:id"))
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "/v1/verified/804735132", entry.Data["path"])
	assert.NotEmpty(t, entry.Data["request_id"])
	for _, v := range entry.Data {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "secret")
		}
	}

	_, err = app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	require.NoError(t, err)

	ended = spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
