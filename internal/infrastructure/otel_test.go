package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "reportqa-test"}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	totals, err := providers.CollectMetrics(context.Background())
	require.NoError(t, err)
	assert.Nil(t, totals)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	var out bytes.Buffer
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   "reportqa-test",
		Environment:   "test",
		TraceExporter: "stdout",
		EnableTracing: true,
		SampleRatio:   1.0,
		TraceWriter:   &out,
	}, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "compare")
	assert.True(t, span.IsRecording())
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))

	SetSpanAttributes(ctx, map[string]interface{}{
		"section": "BQ",
		"records": 3,
		"ratio":   0.5,
		"strict":  true,
	})
	AddSpanEvent(ctx, "section.compared", map[string]interface{}{"mismatches": int64(1)})
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, out.String(), `"Name":"compare"`)
	assert.Contains(t, out.String(), "section.compared")
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "jaeger"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestValidationMetrics_Collect(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "reportqa-test", EnableMetrics: true}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateValidationMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordParse(ctx, "source", 7, 0)
	metrics.RecordParse(ctx, "dest", 5, 2)
	metrics.RecordDiscrepancy(ctx, "MISMATCH", "HIGH")
	metrics.RecordDiscrepancy(ctx, "MISSING_IN_DEST", "HIGH")
	metrics.RecordCalculationCheck(ctx, "Day Sale", "MATCH")
	metrics.RecordValidationRun(ctx, 1500*time.Millisecond, true)

	totals, err := providers.CollectMetrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 12.0, totals["reportqa_records_parsed_total"])
	assert.Equal(t, 2.0, totals["reportqa_parsing_errors_total"])
	assert.Equal(t, 2.0, totals["reportqa_discrepancies_total"])
	assert.Equal(t, 1.0, totals["reportqa_calculation_checks_total"])
	assert.Equal(t, 1.0, totals["reportqa_validation_runs_total"])
	assert.Equal(t, 1.0, totals["reportqa_validation_duration_seconds"])
}

func TestValidationMetrics_NilSafe(t *testing.T) {
	var metrics *ValidationMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordParse(ctx, "source", 1, 1)
		metrics.RecordDiscrepancy(ctx, "MISMATCH", "LOW")
		metrics.RecordCalculationCheck(ctx, "WTD Sale", "MATCH")
		metrics.RecordValidationRun(ctx, time.Second, false)
	})
}

func TestSpanHelpers_NoRecordingSpan(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.NotPanics(t, func() {
		SetSpanAttributes(ctx, map[string]interface{}{"k": "v"})
		AddSpanEvent(ctx, "e", nil)
		RecordError(ctx, errors.New("ignored"))
	})
}
