package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/birbparty/dandb-go/sdk"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Observer reports SDK activity as log entries, prometheus metrics and
// client spans.
type Observer struct {
	log     *logrus.Entry
	metrics *Metrics
	tracer  trace.Tracer

	// SlowRequest is the duration above which a request is logged at warn level
	SlowRequest time.Duration
}

var _ sdk.Observer = (*Observer)(nil)

// NewObserver creates an observer. A nil metrics or tracer disables
// that signal.
func NewObserver(log *logrus.Logger, metrics *Metrics, tracer trace.Tracer) *Observer {
	if log == nil {
		log = L()
	}
	return &Observer{
		log:         log.WithField("component", "dandb-sdk"),
		metrics:     metrics,
		tracer:      tracer,
		SlowRequest: 2 * time.Second,
	}
}

// OnRequestStart implements sdk.Observer
func (o *Observer) OnRequestStart(method, path string) {
	if o.metrics != nil {
		o.metrics.RequestStarted()
	}
	o.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Debug("Request started")
}

// OnRequestEnd implements sdk.Observer
func (o *Observer) OnRequestEnd(method, path string, status int, duration time.Duration, err error) {
	if o.metrics != nil {
		o.metrics.RequestFinished()
		o.metrics.RecordRequest(method, path, status, duration)
	}

	entry := o.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   status,
		"duration": duration.Milliseconds(),
	})

	if o.tracer != nil {
		entry = withSpan(entry, o.recordSpan(method, path, status, duration, err))
	}

	switch {
	case err != nil:
		entry.WithError(err).Error("Request failed")
	case status >= 400:
		entry.Warn("Request completed with error status")
	case o.SlowRequest > 0 && duration > o.SlowRequest:
		entry.Warn("Slow request")
	default:
		entry.Debug("Request completed")
	}
}

// recordSpan emits a finished client span covering the request
func (o *Observer) recordSpan(method, path string, status int, duration time.Duration, err error) trace.Span {
	end := time.Now()
	_, span := o.tracer.Start(context.Background(), method+" "+RouteLabel(path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(end.Add(-duration)),
		trace.WithAttributes(
			semconv.HTTPMethodKey.String(method),
			semconv.HTTPTargetKey.String(path),
		),
	)

	if status > 0 {
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(status))
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= 400:
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
	default:
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(end))
	return span
}

// OnTokenCacheHit implements sdk.Observer
func (o *Observer) OnTokenCacheHit(key string) {
	if o.metrics != nil {
		o.metrics.RecordTokenCacheHit(key)
	}
	o.log.WithField("key", key).Debug("Access token served from cache")
}

// OnTokenCacheMiss implements sdk.Observer
func (o *Observer) OnTokenCacheMiss(key string) {
	if o.metrics != nil {
		o.metrics.RecordTokenCacheMiss(key)
	}
	o.log.WithField("key", key).Debug("Access token cache miss")
}

// OnTokenFetch implements sdk.Observer
func (o *Observer) OnTokenFetch(ok bool, duration time.Duration, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !ok:
		result = "absent"
	}

	if o.metrics != nil {
		o.metrics.RecordTokenFetch(result, duration)
	}

	entry := o.log.WithFields(logrus.Fields{
		"result":   result,
		"duration": duration.Milliseconds(),
	})
	switch result {
	case "error":
		entry.WithError(err).Error("Access token request failed")
	case "absent":
		entry.Warn("Access token response carried no token")
	default:
		entry.Info("Access token fetched")
	}
}
