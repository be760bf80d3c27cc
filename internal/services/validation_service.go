package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"reportqa/internal/comparison"
	"reportqa/internal/config"
	"reportqa/internal/dataprocessing"
	apperrors "reportqa/internal/errors"
	"reportqa/internal/infrastructure"
	"reportqa/internal/validation"
	"reportqa/pkg/contracts/domain"
)

const (
	sideSource = "source"
	sideDest   = "destination"
)

// DocumentParser reads report workbooks
type DocumentParser interface {
	ParseFile(ctx context.Context, path, sheet string) *domain.ParsedDocument
	ValidateFile(ctx context.Context, path, sheet string) []domain.StructureIssue
	PreviewFile(ctx context.Context, path, sheet string, maxRows int) domain.FilePreview
}

// DocumentComparator reconciles two parsed documents
type DocumentComparator interface {
	Compare(ctx context.Context, source, dest *domain.ParsedDocument) *comparison.Comparison
}

// ValidationRequest names the two workbooks of one validation run. Empty
// sheet names fall back to the configured sheet, then the active sheet.
type ValidationRequest struct {
	ReportName  string `json:"report_name"`
	SourcePath  string `json:"source_path"`
	DestPath    string `json:"dest_path"`
	SourceSheet string `json:"source_sheet,omitempty"`
	DestSheet   string `json:"dest_sheet,omitempty"`
}

// ValidationService runs source/destination reconciliations
type ValidationService struct {
	cfg        *config.Config
	parser     DocumentParser
	comparator DocumentComparator
	files      *validation.FileValidator
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *infrastructure.ValidationMetrics
	now        func() time.Time
}

// Option customises a ValidationService
type Option func(*ValidationService)

// WithParser replaces the workbook parser
func WithParser(p DocumentParser) Option {
	return func(s *ValidationService) { s.parser = p }
}

// WithComparator replaces the document comparator
func WithComparator(c DocumentComparator) Option {
	return func(s *ValidationService) { s.comparator = c }
}

// WithMetrics records run, parse and discrepancy counts on m
func WithMetrics(m *infrastructure.ValidationMetrics) Option {
	return func(s *ValidationService) { s.metrics = m }
}

// NewValidationService creates a validation service using default logger
func NewValidationService(cfg *config.Config, opts ...Option) *ValidationService {
	return NewValidationServiceWithLogger(cfg, slog.Default(), opts...)
}

// NewValidationServiceWithLogger creates a validation service with a specific logger
func NewValidationServiceWithLogger(cfg *config.Config, logger *slog.Logger, opts ...Option) *ValidationService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &ValidationService{
		cfg:    cfg,
		files:  validation.NewFileValidator(logger),
		logger: infrastructure.WithComponent(logger, "validation_service"),
		tracer: otel.Tracer("reportqa/services"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = dataprocessing.NewParser(logger)
	}
	if s.comparator == nil {
		s.comparator = comparison.NewComparator(cfg.Comparison, logger).WithMetrics(s.metrics)
	}

	s.logger.Debug("ValidationService initialized",
		slog.Float64("tolerance", cfg.Comparison.Tolerance),
		slog.Duration("timeout", cfg.Service.Timeout))
	return s
}

// Validate parses both workbooks concurrently, compares them and builds the
// report. It fails when an input file is unusable, when neither or only one
// document has sections, or when the configured timeout elapses.
func (s *ValidationService) Validate(ctx context.Context, req ValidationRequest) (*domain.ValidationReport, error) {
	start := s.now()
	runID := uuid.NewString()
	ctx = infrastructure.WithRunID(infrastructure.EnsureTraceID(ctx), runID)

	ctx, span := s.tracer.Start(ctx, "services.Validate", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("source.file", filepath.Base(req.SourcePath)),
		attribute.String("dest.file", filepath.Base(req.DestPath)),
	))
	defer span.End()

	report, err := s.validate(ctx, req, runID, start)
	s.metrics.RecordValidationRun(ctx, s.now().Sub(start), err == nil)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		logServiceError(ctx, s.logger, "validate", "validation failed", err)
		return nil, err
	}

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"report.discrepancies":     len(report.ComparisonResults),
		"report.match_percentage":  report.Summary.OverallMatchPercentage,
		"report.calculation_check": report.Summary.HasCalculationErrors,
	})
	return report, nil
}

func (s *ValidationService) validate(ctx context.Context, req ValidationRequest, runID string, start time.Time) (*domain.ValidationReport, error) {
	if err := s.checkInput(sideSource, req.SourcePath); err != nil {
		return nil, err
	}
	if err := s.checkInput(sideDest, req.DestPath); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Service.Timeout)
	defer cancel()

	s.logger.InfoContext(ctx, "starting validation",
		slog.String("source", req.SourcePath),
		slog.String("dest", req.DestPath))

	source, dest, err := s.parseBoth(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := checkDocuments(source, dest); err != nil {
		return nil, err
	}

	out, err := s.compare(ctx, source, dest)
	if err != nil {
		return nil, err
	}

	summary := comparison.WithStats(comparison.GenerateSummary(out.Results, out.CalculationValidations), out.Stats)
	report := &domain.ValidationReport{
		RunID:                  runID,
		ReportName:             reportName(req),
		Success:                true,
		Message:                fmt.Sprintf("Validation completed successfully with %d discrepancies found", summary.TotalDiscrepancies),
		ValidatedAt:            start,
		Summary:                summary,
		SectionSummaries:       comparison.GenerateSectionSummaries(out.Results),
		ComparisonResults:      out.Results,
		CalculationValidations: out.CalculationValidations,
		Stats:                  out.Stats,
		SourceFile:             validation.Describe(req.SourcePath),
		DestFile:               validation.Describe(req.DestPath),
		SourceParsingErrors:    source.ParsingErrors,
		DestParsingErrors:      dest.ParsingErrors,
	}
	report.ProcessingTimeSeconds = s.now().Sub(start).Seconds()

	s.logger.InfoContext(ctx, "validation completed",
		slog.Int("discrepancies", len(report.ComparisonResults)),
		slog.Int("critical_issues", summary.CriticalIssues),
		slog.Float64("field_match_percentage", summary.FieldMatchPercentage),
		slog.Float64("processing_time_seconds", report.ProcessingTimeSeconds))
	return report, nil
}

func (s *ValidationService) checkInput(side, path string) error {
	if err := s.files.ValidateExcelFile(path); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("side", side)
		}
		return err
	}
	return nil
}

// parseBoth parses source and destination concurrently
func (s *ValidationService) parseBoth(ctx context.Context, req ValidationRequest) (*domain.ParsedDocument, *domain.ParsedDocument, error) {
	var source, dest *domain.ParsedDocument

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		source = s.parser.ParseFile(gctx, req.SourcePath, s.sheet(req.SourceSheet))
		s.recordParse(gctx, sideSource, source)
		return gctx.Err()
	})
	g.Go(func() error {
		dest = s.parser.ParseFile(gctx, req.DestPath, s.sheet(req.DestSheet))
		s.recordParse(gctx, sideDest, dest)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, nil, timeoutOr(err, "parsing")
	}
	infrastructure.AddSpanEvent(ctx, "documents parsed", map[string]interface{}{
		"source.records": source.TotalRecords,
		"dest.records":   dest.TotalRecords,
	})
	return source, dest, nil
}

func (s *ValidationService) recordParse(ctx context.Context, side string, doc *domain.ParsedDocument) {
	if doc == nil {
		return
	}
	s.metrics.RecordParse(ctx, side, doc.TotalRecords, len(doc.ParsingErrors))
	if len(doc.ParsingErrors) > 0 {
		s.logger.WarnContext(ctx, "document parsed with errors",
			slog.String("side", side),
			slog.Any("parsing_errors", doc.ParsingErrors))
	}
}

// compare runs the comparator and abandons it when ctx expires
func (s *ValidationService) compare(ctx context.Context, source, dest *domain.ParsedDocument) (*comparison.Comparison, error) {
	done := make(chan *comparison.Comparison, 1)
	go func() {
		done <- s.comparator.Compare(ctx, source, dest)
	}()

	select {
	case out := <-done:
		return out, nil
	case <-ctx.Done():
		return nil, timeoutOr(ctx.Err(), "comparison")
	}
}

func (s *ValidationService) sheet(requested string) string {
	if requested != "" {
		return requested
	}
	return s.cfg.Service.SheetName
}

// Files returns the validator used for input and output paths
func (s *ValidationService) Files() *validation.FileValidator {
	return s.files
}

// CheckStructure validates the layout of one workbook. Input problems are
// returned as errors, layout problems as issues.
func (s *ValidationService) CheckStructure(ctx context.Context, path, sheet string) ([]domain.StructureIssue, error) {
	if err := s.checkInput(sideSource, path); err != nil {
		return nil, err
	}
	issues := s.parser.ValidateFile(ctx, path, s.sheet(sheet))
	s.logger.InfoContext(ctx, "structure checked",
		slog.String("path", path),
		slog.Int("issues", len(issues)))
	return issues, nil
}

// Preview samples one workbook. maxRows <= 0 uses the configured row count.
func (s *ValidationService) Preview(ctx context.Context, path, sheet string, maxRows int) (domain.FilePreview, error) {
	if err := s.checkInput(sideSource, path); err != nil {
		return domain.FilePreview{}, err
	}
	if maxRows <= 0 {
		maxRows = s.cfg.Service.PreviewRows
	}
	return s.parser.PreviewFile(ctx, path, s.sheet(sheet), maxRows), nil
}

// checkDocuments refuses to compare when a side has no sections
func checkDocuments(source, dest *domain.ParsedDocument) error {
	switch {
	case source.IsEmpty() && dest.IsEmpty():
		return apperrors.NewParsingError("both files failed to parse", ErrComparisonImpossible).
			WithContext("source_errors", source.ParsingErrors).
			WithContext("dest_errors", dest.ParsingErrors)
	case source.IsEmpty():
		return missingSide(sideSource, source)
	case dest.IsEmpty():
		return missingSide(sideDest, dest)
	}
	return nil
}

func missingSide(side string, doc *domain.ParsedDocument) error {
	msg := fmt.Sprintf("%s file parsing failed", side)
	if len(doc.ParsingErrors) > 0 {
		msg += ": " + strings.Join(doc.ParsingErrors, ", ")
	}
	return apperrors.NewParsingError(msg, fmt.Errorf("%s %w", side, ErrMissingSide)).
		WithContext("side", side)
}

// timeoutOr turns a deadline into a TIMEOUT error and passes other errors on
func timeoutOr(err error, stage string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(fmt.Sprintf("validation timed out during %s", stage),
			fmt.Errorf("%w: %w", ErrOperationTimeout, err))
	}
	return fmt.Errorf("%s: %w", stage, err)
}

func reportName(req ValidationRequest) string {
	if req.ReportName != "" {
		return req.ReportName
	}
	base := filepath.Base(req.SourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
