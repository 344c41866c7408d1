package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceName = "dandb-cli"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	l := NewLogger(cfg, &buf)

	l.Info("dropped")
	l.WithField("duns", "007280554").Warn("kept")

	lines := decodeLines(t, buf.Bytes())
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["message"])
	assert.Equal(t, "warning", lines[0]["level"])
	assert.Equal(t, "dandb-cli", lines[0]["service.name"])
	assert.Equal(t, "development", lines[0]["environment"])
	assert.Equal(t, "007280554", lines[0]["duns"])
	assert.Contains(t, lines[0], "@timestamp")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "chatty"

	var buf bytes.Buffer
	l := NewLogger(cfg, &buf)
	l.Debug("dropped")
	l.Info("kept")

	assert.Len(t, decodeLines(t, buf.Bytes()), 1)
}

func TestFileHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs.json")
	hook, err := NewFileHook(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	l := NewLogger(DefaultConfig(), &buf)
	l.AddHook(hook)

	l.WithError(errors.New("boom")).Error("failed")
	require.NoError(t, hook.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := decodeLines(t, data)
	require.Len(t, lines, 1)
	assert.Equal(t, "failed", lines[0]["message"])
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Equal(t, "dandb-go", lines[0]["service.name"])
}

func TestInitLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExportToFile = true
	cfg.LogsFilePath = filepath.Join(t.TempDir(), "logs.json")

	require.NoError(t, InitLogger(cfg))
	t.Cleanup(func() {
		_ = CloseLogger()
		loggerMu.Lock()
		logger = nil
		loggerMu.Unlock()
	})

	L().Info("hello")
	require.NoError(t, CloseLogger())
	assert.NoError(t, CloseLogger())

	data, err := os.ReadFile(cfg.LogsFilePath)
	require.NoError(t, err)
	assert.Equal(t, "hello", decodeLines(t, data)[0]["message"])
}

func TestWithContext(t *testing.T) {
	assert.NotContains(t, WithContext(context.Background()).Data, "trace.id")

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	entry := WithContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry.Data["trace.id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry.Data["span.id"])
}
