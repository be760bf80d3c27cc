package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"reportqa/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "reportqa.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = os.Stat(logFile)
	require.NoError(t, err, "log file should be created with its directory")

	logger.Info("parsed workbook", "records", 12)
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "parsed workbook", entry["msg"])
	assert.Equal(t, float64(12), entry["records"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_ReplacesDefault(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Format: "text", Output: "console"}, &buf)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, second, GetLogger())

	slog.Debug("through the default")
	assert.Contains(t, buf.String(), "through the default")

	_, err = InitializeLogger(config.LoggingConfig{Level: "info", Output: "file", FilePath: t.TempDir()}, &buf)
	assert.Error(t, err, "a directory is not a log file")
	assert.Same(t, second, GetLogger())
}

func TestNewLogger_ContextIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "trace-123")
	ctx = WithRunID(ctx, "run-456")
	logger.InfoContext(ctx, "comparison finished")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "run-456", entry["run_id"])
}

func TestNewLogger_SpanTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.InfoContext(ctx, "inside span")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["otel_trace_id"])
	assert.NotContains(t, entry, "trace_id")
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "console"}, &buf)
	require.NoError(t, err)

	logger.Info("text output", "section", "BQ")
	out := buf.String()
	assert.Contains(t, out, "msg=\"text output\"")
	assert.Contains(t, out, "section=BQ")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level       string
		debugLogged bool
		infoLogged  bool
		warnLogged  bool
	}{
		{level: "debug", debugLogged: true, infoLogged: true, warnLogged: true},
		{level: "info", infoLogged: true, warnLogged: true},
		{level: "warning", warnLogged: true},
		{level: "error"},
		{level: "nonsense", infoLogged: true, warnLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(config.LoggingConfig{Level: tt.level, Format: "json", Output: "console"}, &buf)
			require.NoError(t, err)

			logger.Debug("d")
			assert.Equal(t, tt.debugLogged, strings.Contains(buf.String(), `"msg":"d"`))
			logger.Info("i")
			assert.Equal(t, tt.infoLogged, strings.Contains(buf.String(), `"msg":"i"`))
			logger.Warn("w")
			assert.Equal(t, tt.warnLogged, strings.Contains(buf.String(), `"msg":"w"`))
		})
	}
}

func TestNewLogger_BothOutputs(t *testing.T) {
	defer CloseLogFile()

	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "both.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "both", FilePath: logFile}, &buf)
	require.NoError(t, err)

	logger.Info("twice")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "twice")
	assert.Contains(t, buf.String(), "twice")
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.Len(t, traceID, 36)

	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)), "existing trace ID must be kept")
	assert.Empty(t, GetRunID(ctx))
	assert.Equal(t, "r1", GetRunID(WithRunID(ctx, "r1")))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	WithComponent(logger, "comparator").Info("component test")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "comparator", entry["component"])

	buf.Reset()
	WithError(logger, os.ErrNotExist).Info("error test")
	entry = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry["error"], "file does not exist")

	assert.Same(t, logger, WithError(logger, nil))
}
