package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"reportqa/internal/comparison"
	"reportqa/internal/config"
	apperrors "reportqa/internal/errors"
	"reportqa/internal/infrastructure"
	"reportqa/internal/shared/testutil"
	"reportqa/pkg/contracts/domain"
)

// placeholder creates an input file for tests where parsing is mocked
func placeholder(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0644))
	return path
}

func bqDocument(daySale float64) *domain.ParsedDocument {
	doc := domain.NewParsedDocument()
	rec := domain.NewRecord(4)
	rec.Key = "Central_Michael_MGG"
	rec.Set("Day Sale", domain.Number(daySale))
	doc.Sections[domain.SectionBQ] = []domain.Record{rec}
	doc.TotalRecords = 1
	return doc
}

func TestValidationService_Validate(t *testing.T) {
	dir := t.TempDir()
	source := testutil.ReportWorkbook(t, dir, "source.xlsx", 1000)
	dest := testutil.ReportWorkbook(t, dir, "dest.xlsx", 1050)
	logger, logs := testutil.NewTestLogger(t)

	svc := NewValidationServiceWithLogger(config.Default(), logger)
	report, err := svc.Validate(context.Background(), ValidationRequest{SourcePath: source, DestPath: dest})
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, "source", report.ReportName)
	assert.Equal(t, "Validation completed successfully with 1 discrepancies found", report.Message)

	require.Len(t, report.ComparisonResults, 1)
	r := report.ComparisonResults[0]
	assert.Equal(t, "Central_Michael_MGG", r.Key)
	assert.Equal(t, "Day Sale", r.Field)
	assert.Equal(t, domain.SeverityHigh, r.Severity)
	require.NotNil(t, r.Difference)
	assert.Equal(t, -50.0, *r.Difference)

	assert.Equal(t, 1, report.Summary.TotalMismatches)
	assert.Equal(t, 4, report.Summary.TotalFieldsCompared)
	assert.Equal(t, 75.0, report.Summary.FieldMatchPercentage)
	require.Len(t, report.SectionSummaries, 1)
	assert.Equal(t, "BQ", report.SectionSummaries[0].SectionName)

	assert.True(t, report.SourceFile.Exists)
	assert.Equal(t, "dest.xlsx", report.DestFile.FileName)
	assert.GreaterOrEqual(t, report.ProcessingTimeSeconds, 0.0)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "validation completed")
	testutil.AssertLogAttr(t, logs, "component", "validation_service")
	testutil.AssertNoErrors(t, logs)
}

func TestValidationService_InputErrors(t *testing.T) {
	good := placeholder(t, "good.xlsx")

	tests := []struct {
		name    string
		req     ValidationRequest
		errType apperrors.ErrorType
		side    string
	}{
		{
			name:    "missing source",
			req:     ValidationRequest{SourcePath: filepath.Join(t.TempDir(), "nope.xlsx"), DestPath: good},
			errType: apperrors.ErrTypeNotFound,
			side:    "source",
		},
		{
			name:    "destination not a workbook",
			req:     ValidationRequest{SourcePath: good, DestPath: placeholder(t, "dest.csv")},
			errType: apperrors.ErrTypeValidation,
			side:    "destination",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(MockParser)
			logger, _ := testutil.NewTestLogger(t)
			svc := NewValidationServiceWithLogger(config.Default(), logger, WithParser(parser))

			report, err := svc.Validate(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.side, appErr.Context["side"])
			parser.AssertNotCalled(t, "ParseFile", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestValidationService_EmptyDocuments(t *testing.T) {
	source := placeholder(t, "source.xlsx")
	dest := placeholder(t, "dest.xlsx")

	emptyWith := func(msg string) *domain.ParsedDocument {
		d := domain.NewParsedDocument()
		d.ParsingErrors = append(d.ParsingErrors, msg)
		return d
	}

	tests := []struct {
		name     string
		source   *domain.ParsedDocument
		dest     *domain.ParsedDocument
		sentinel error
		contains string
	}{
		{name: "both empty", source: emptyWith("a"), dest: emptyWith("b"), sentinel: ErrComparisonImpossible, contains: "both files failed to parse"},
		{name: "source empty", source: emptyWith("bad source"), dest: bqDocument(1), sentinel: ErrMissingSide, contains: "source file parsing failed: bad source"},
		{name: "destination empty", source: bqDocument(1), dest: emptyWith("bad dest"), sentinel: ErrMissingSide, contains: "destination file parsing failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(MockParser)
			parser.On("ParseFile", mock.Anything, source, "").Return(tt.source)
			parser.On("ParseFile", mock.Anything, dest, "").Return(tt.dest)
			comparator := new(MockComparator)
			logger, _ := testutil.NewTestLogger(t)

			svc := NewValidationServiceWithLogger(config.Default(), logger, WithParser(parser), WithComparator(comparator))
			_, err := svc.Validate(context.Background(), ValidationRequest{SourcePath: source, DestPath: dest})

			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.contains)
			comparator.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything, mock.Anything)
			parser.AssertExpectations(t)
		})
	}
}

func TestValidationService_Timeout(t *testing.T) {
	source := placeholder(t, "source.xlsx")
	dest := placeholder(t, "dest.xlsx")

	parser := new(MockParser)
	parser.On("ParseFile", mock.Anything, mock.Anything, mock.Anything).Return(bqDocument(1))
	comparator := new(MockComparator)
	comparator.On("Compare", mock.Anything, mock.Anything, mock.Anything).
		Return(&comparison.Comparison{}).
		After(500 * time.Millisecond)

	cfg := config.Default()
	cfg.Service.Timeout = 20 * time.Millisecond
	logger, logs := testutil.NewTestLogger(t)
	svc := NewValidationServiceWithLogger(cfg, logger, WithParser(parser), WithComparator(comparator))

	began := time.Now()
	_, err := svc.Validate(context.Background(), ValidationRequest{SourcePath: source, DestPath: dest})

	require.Error(t, err)
	assert.Less(t, time.Since(began), 400*time.Millisecond, "comparison is abandoned at the deadline")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeTimeout))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrOperationTimeout)
	testutil.AssertLogContains(t, logs, slog.LevelError, "validation failed")
	testutil.AssertLogAttr(t, logs, "action", "validate")
}

func TestValidationService_SheetSelection(t *testing.T) {
	source := placeholder(t, "source.xlsx")
	dest := placeholder(t, "dest.xlsx")

	parser := new(MockParser)
	parser.On("ParseFile", mock.Anything, source, "Daily").Return(bqDocument(5)).Once()
	parser.On("ParseFile", mock.Anything, dest, "Export").Return(bqDocument(5)).Once()

	cfg := config.Default()
	cfg.Service.SheetName = "Daily"
	logger, _ := testutil.NewTestLogger(t)
	svc := NewValidationServiceWithLogger(cfg, logger, WithParser(parser))

	report, err := svc.Validate(context.Background(), ValidationRequest{
		ReportName: "weekly",
		SourcePath: source,
		DestPath:   dest,
		DestSheet:  "Export",
	})
	require.NoError(t, err)
	assert.Equal(t, "weekly", report.ReportName)
	assert.Empty(t, report.ComparisonResults)
	assert.Equal(t, 100.0, report.Summary.FieldMatchPercentage)
	parser.AssertExpectations(t)
}

func TestValidationService_MissingRecordsAreDiscrepancies(t *testing.T) {
	source := placeholder(t, "source.xlsx")
	dest := placeholder(t, "dest.xlsx")

	moved := bqDocument(5)
	moved.Sections[domain.SectionBQ][0].Key = "Central_SMS_MGG"

	parser := new(MockParser)
	parser.On("ParseFile", mock.Anything, source, "").Return(bqDocument(5))
	parser.On("ParseFile", mock.Anything, dest, "").Return(moved)
	logger, _ := testutil.NewTestLogger(t)
	svc := NewValidationServiceWithLogger(config.Default(), logger, WithParser(parser))

	report, err := svc.Validate(context.Background(), ValidationRequest{SourcePath: source, DestPath: dest})
	require.NoError(t, err)

	assert.Zero(t, report.Summary.TotalMismatches)
	assert.Equal(t, 1, report.Summary.TotalMissingInSource)
	assert.Equal(t, 1, report.Summary.TotalMissingInDest)
	assert.Equal(t, 2, report.Summary.TotalDiscrepancies)
	assert.Equal(t, "Validation completed successfully with 2 discrepancies found", report.Message)
}

func TestValidationService_Metrics(t *testing.T) {
	dir := t.TempDir()
	source := testutil.ReportWorkbook(t, dir, "source.xlsx", 1000)
	dest := testutil.ReportWorkbook(t, dir, "dest.xlsx", 1050)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateValidationMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	svc := NewValidationServiceWithLogger(config.Default(), logger, WithMetrics(metrics))
	_, err = svc.Validate(context.Background(), ValidationRequest{SourcePath: source, DestPath: dest})
	require.NoError(t, err)

	totals, err := (&infrastructure.OTelProviders{Reader: reader}).CollectMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, totals["reportqa_validation_runs_total"])
	assert.Equal(t, 2.0, totals["reportqa_records_parsed_total"])
	assert.Equal(t, 1.0, totals["reportqa_discrepancies_total"])
}

func TestValidationService_CheckStructureAndPreview(t *testing.T) {
	path := placeholder(t, "book.xlsx")
	issues := []domain.StructureIssue{{ErrorType: domain.IssueNoSections, Message: "none"}}
	preview := domain.FilePreview{FileName: "book.xlsx", TotalRows: 3}

	parser := new(MockParser)
	parser.On("ValidateFile", mock.Anything, path, "").Return(issues)
	parser.On("PreviewFile", mock.Anything, path, "", config.DefaultPreviewRows).Return(preview)
	logger, _ := testutil.NewTestLogger(t)
	svc := NewValidationServiceWithLogger(config.Default(), logger, WithParser(parser))

	got, err := svc.CheckStructure(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, issues, got)

	p, err := svc.Preview(context.Background(), path, "", 0)
	require.NoError(t, err)
	assert.Equal(t, preview, p)

	_, err = svc.CheckStructure(context.Background(), filepath.Join(t.TempDir(), "x.xlsx"), "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	parser.AssertExpectations(t)
}
