package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"reportqa/internal/config"
	"reportqa/pkg/contracts"
)

// InstrumentationName names the tracer and meter used across the module
const InstrumentationName = "reportqa"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	EnableTracing  bool
	EnableMetrics  bool
	SampleRatio    float64
	// TraceWriter receives stdout exporter output; nil means stderr
	TraceWriter io.Writer
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Reader         *sdkmetric.ManualReader
	Tracer         trace.Tracer
	Meter          metric.Meter
	Logger         *slog.Logger
}

// NewOTelConfig maps the telemetry section of the application config
func NewOTelConfig(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    cfg.Environment,
		TraceExporter:  cfg.TraceExporter,
		EnableTracing:  cfg.TracingEnabled,
		EnableMetrics:  cfg.MetricsEnabled,
		SampleRatio:    cfg.SampleRatio,
	}
}

// InitializeOTel installs the tracer and meter providers requested by cfg as
// the global providers. Disabled signals keep the no-op globals.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = NewOTelConfig(config.Default().Telemetry)
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()
	providers := &OTelProviders{Logger: logger}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		providers.Reader = reader
		providers.MeterProvider = mp
		otel.SetMeterProvider(mp)
	}

	if providers.TracerProvider != nil {
		providers.Tracer = providers.TracerProvider.Tracer(InstrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	} else {
		providers.Tracer = otel.Tracer(InstrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	}
	if providers.MeterProvider != nil {
		providers.Meter = providers.MeterProvider.Meter(InstrumentationName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	} else {
		providers.Meter = otel.Meter(InstrumentationName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	}

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter

	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stderr
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = exp
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	// A short-lived command exports synchronously so nothing is lost on exit
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	providers.TracerProvider = tp
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// Shutdown flushes and stops the installed providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// CollectMetrics reads the manual reader and flattens every instrument to a
// single number: the sum of a counter's data points or the observation count
// of a histogram. It returns nil when metrics are disabled.
func (p *OTelProviders) CollectMetrics(ctx context.Context) (map[string]float64, error) {
	if p.Reader == nil {
		return nil, nil
	}

	var rm metricdata.ResourceMetrics
	if err := p.Reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	totals := make(map[string]float64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += float64(dp.Count)
				}
			}
		}
	}
	return totals, nil
}

// ValidationMetrics holds the instruments recorded by validation runs
type ValidationMetrics struct {
	RunsTotal         metric.Int64Counter
	RunDuration       metric.Float64Histogram
	RecordsParsed     metric.Int64Counter
	ParsingErrors     metric.Int64Counter
	Discrepancies     metric.Int64Counter
	CalculationChecks metric.Int64Counter
}

// CreateValidationMetrics registers the validation instruments on meter
func CreateValidationMetrics(meter metric.Meter) (*ValidationMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"reportqa_validation_runs_total",
		metric.WithDescription("Total number of validation runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"reportqa_validation_duration_seconds",
		metric.WithDescription("Validation run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	recordsParsed, err := meter.Int64Counter(
		"reportqa_records_parsed_total",
		metric.WithDescription("Total number of records extracted from workbooks"),
	)
	if err != nil {
		return nil, err
	}

	parsingErrors, err := meter.Int64Counter(
		"reportqa_parsing_errors_total",
		metric.WithDescription("Total number of non-fatal parsing errors"),
	)
	if err != nil {
		return nil, err
	}

	discrepancies, err := meter.Int64Counter(
		"reportqa_discrepancies_total",
		metric.WithDescription("Total number of discrepancies reported"),
	)
	if err != nil {
		return nil, err
	}

	calcChecks, err := meter.Int64Counter(
		"reportqa_calculation_checks_total",
		metric.WithDescription("Total number of total-row calculation checks"),
	)
	if err != nil {
		return nil, err
	}

	return &ValidationMetrics{
		RunsTotal:         runsTotal,
		RunDuration:       runDuration,
		RecordsParsed:     recordsParsed,
		ParsingErrors:     parsingErrors,
		Discrepancies:     discrepancies,
		CalculationChecks: calcChecks,
	}, nil
}

// RecordValidationRun records the outcome of one run
func (m *ValidationMetrics) RecordValidationRun(ctx context.Context, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordParse records the records and errors produced by parsing one side
func (m *ValidationMetrics) RecordParse(ctx context.Context, side string, records, parsingErrors int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("side", side))
	m.RecordsParsed.Add(ctx, int64(records), attrs)
	if parsingErrors > 0 {
		m.ParsingErrors.Add(ctx, int64(parsingErrors), attrs)
	}
}

// RecordDiscrepancy counts one discrepancy by status and severity
func (m *ValidationMetrics) RecordDiscrepancy(ctx context.Context, status, severity string) {
	if m == nil {
		return
	}
	m.Discrepancies.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("severity", severity),
	))
}

// RecordCalculationCheck counts one total-row reconciliation
func (m *ValidationMetrics) RecordCalculationCheck(ctx context.Context, field, status string) {
	if m == nil {
		return
	}
	m.CalculationChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("field", field),
		attribute.String("status", status),
	))
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// TraceIDFromContext extracts the OpenTelemetry trace ID for log correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(toAttributes(attributes)...)
}

func toAttributes(attributes map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	return attrs
}
