// Package telemetry wires logging, metrics and tracing for the DandB SDK
// tools and the sandbox server.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Init initializes all telemetry components
func Init(ctx context.Context, cfg *Config) error {
	if err := InitLogger(cfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := InitMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if err := InitTracing(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	L().WithFields(logrus.Fields{
		"service":      cfg.ServiceName,
		"version":      cfg.ServiceVersion,
		"environment":  cfg.Environment,
		"tracing":      cfg.EnableTracing,
		"exportToFile": cfg.ExportToFile,
	}).Debug("Telemetry initialized")

	return nil
}

// Shutdown flushes exporters and closes the log file
func Shutdown(ctx context.Context) error {
	if err := CloseTracing(ctx); err != nil {
		L().WithError(err).Error("Failed to close tracing")
	}

	if err := CloseMetrics(ctx); err != nil {
		L().WithError(err).Error("Failed to close metrics")
	}

	return CloseLogger()
}

// PrometheusHandler returns an HTTP handler serving the metrics in g
func PrometheusHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// FiberMetricsMiddleware records request metrics and a server span per
// request. Metrics and span names use the matched route pattern, so path
// parameters such as DUNS numbers stay out of label values.
func FiberMetricsMiddleware(m *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()

		ctx, span := StartSpan(c.UserContext(), method+" "+c.Path())
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		m.RecordHTTPRequest(method, route, strconv.Itoa(status), time.Since(start))

		span.SetName(method + " " + route)
		span.SetAttributes(
			semconv.HTTPMethodKey.String(method),
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPStatusCodeKey.Int(status),
		)

		switch {
		case err != nil:
			RecordError(ctx, err)
			SetErrorStatus(ctx, err.Error())
		case status >= 500:
			SetErrorStatus(ctx, fmt.Sprintf("HTTP %d", status))
		default:
			SetOKStatus(ctx)
		}
		return err
	}
}

// FiberLoggingMiddleware logs one line per request. Query strings are
// never logged; they carry user tokens.
func FiberLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		entry := WithContext(c.UserContext()).WithFields(logrus.Fields{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.IP(),
		})
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			entry = entry.WithField("request_id", id)
		}

		switch {
		case err != nil:
			entry.WithError(err).Error("Request failed")
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Debug("Request rejected")
		default:
			entry.Debug("Request completed")
		}
		return err
	}
}
