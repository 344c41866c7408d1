package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	loggerMu sync.RWMutex
	logger   *logrus.Logger
	fileHook *FileHook
)

// NewLogger builds a JSON logger writing to out. Every entry carries the
// service name, version and environment from cfg.
func NewLogger(cfg *Config, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "@timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	l.AddHook(&serviceHook{fields: logrus.Fields{
		"service.name":    cfg.ServiceName,
		"service.version": cfg.ServiceVersion,
		"environment":     cfg.Environment,
	}})

	return l
}

// InitLogger replaces the global logger. When file export is enabled
// entries are also appended to cfg.LogsFilePath.
func InitLogger(cfg *Config) error {
	l := NewLogger(cfg, os.Stderr)

	var hook *FileHook
	if cfg.ExportToFile && cfg.LogsFilePath != "" {
		var err error
		hook, err = NewFileHook(cfg.LogsFilePath)
		if err != nil {
			return err
		}
		l.AddHook(hook)
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if fileHook != nil {
		_ = fileHook.Close()
	}
	logger, fileHook = l, hook
	return nil
}

// serviceHook stamps static fields on every entry
type serviceHook struct {
	fields logrus.Fields
}

func (h *serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}

// FileHook appends every entry as a JSON line to a file
type FileHook struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

// NewFileHook opens filePath for appending, creating parent directories
func NewFileHook(filePath string) (*FileHook, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &FileHook{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Levels returns the log levels this hook is interested in
func (f *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire writes the entry
func (f *FileHook) Fire(entry *logrus.Entry) error {
	data := make(map[string]interface{}, len(entry.Data)+3)
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}
	data["@timestamp"] = entry.Time.Format(timestampFormat)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.encoder.Encode(data)
}

// Close closes the underlying file
func (f *FileHook) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

// L returns the global logger instance
func L() *logrus.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}

// WithContext adds trace information to the logger
func WithContext(ctx context.Context) *logrus.Entry {
	return withSpan(L().WithContext(ctx), trace.SpanFromContext(ctx))
}

func withSpan(entry *logrus.Entry, span trace.Span) *logrus.Entry {
	sc := span.SpanContext()
	if !sc.IsValid() {
		return entry
	}
	return entry.WithFields(logrus.Fields{
		"trace.id": sc.TraceID().String(),
		"span.id":  sc.SpanID().String(),
	})
}

// WithFields adds fields to the logger
func WithFields(fields logrus.Fields) *logrus.Entry {
	return L().WithFields(fields)
}

// WithError adds an error to the logger
func WithError(err error) *logrus.Entry {
	return L().WithError(err)
}

// CloseLogger closes the file hook, if any
func CloseLogger() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if fileHook == nil {
		return nil
	}
	err := fileHook.Close()
	fileHook = nil
	return err
}
