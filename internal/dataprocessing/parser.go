package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"reportqa/internal/infrastructure"
	"reportqa/internal/grid"
	"reportqa/pkg/contracts/domain"
)

const (
	// dataRowOffset skips the section title and header rows before data
	dataRowOffset = 3
	// previewColumns is how many leading columns a preview samples
	previewColumns = 9
	// DefaultPreviewRows is used when Preview is asked for no rows
	DefaultPreviewRows = 10
	// minHeaders is the header count below which a section is reported as thin
	minHeaders = 3
)

var errUnreadableGrid = errors.New("grid extents cannot be read")

// Parser turns report sheets into parsed documents. It holds no per-run
// state and is safe for concurrent use.
type Parser struct {
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewParser creates a parser logging to logger (slog.Default when nil)
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger: infrastructure.WithComponent(logger, "parser"),
		tracer: otel.Tracer("reportqa/dataprocessing"),
		now:    time.Now,
	}
}

// Parse detects the sections of src and extracts their records. It never
// fails: problems are collected in ParsingErrors. A section without headers
// is left out, a section whose processing panics is kept with no records,
// and an unreadable grid yields a document with no sections.
func (p *Parser) Parse(ctx context.Context, src grid.Source) *domain.ParsedDocument {
	doc := domain.NewParsedDocument()
	doc.Metadata.ParsedAt = p.now()
	describe(src, &doc.Metadata)

	rows, cols, err := safeDimensions(src)
	if err != nil {
		return p.unreadable(ctx, doc, err)
	}
	doc.Metadata.TotalRows = rows
	doc.Metadata.TotalColumns = cols

	sections := DetectSections(src)
	doc.Metadata.SectionsFound = make([]string, 0, len(sections))
	for _, s := range sections {
		doc.Metadata.SectionsFound = append(doc.Metadata.SectionsFound, s.Name)
	}
	p.logger.DebugContext(ctx, "sections detected",
		slog.Any("sections", doc.Metadata.SectionsFound),
		slog.Int("rows", rows),
		slog.Int("columns", cols))

	for _, section := range sections {
		records, headers, err := p.parseSection(src, section)
		if err != nil {
			msg := fmt.Sprintf("Error processing section '%s': %v", section.Name, err)
			p.logger.ErrorContext(ctx, "section processing failed",
				slog.String("section", section.Name),
				slog.String("error", err.Error()))
			doc.ParsingErrors = append(doc.ParsingErrors, msg)
			doc.Sections[section.Name] = []domain.Record{}
			continue
		}

		doc.Headers[section.Name] = headers
		if len(headers) == 0 {
			msg := fmt.Sprintf("No headers detected for section '%s'", section.Name)
			p.logger.WarnContext(ctx, "no headers detected", slog.String("section", section.Name))
			doc.ParsingErrors = append(doc.ParsingErrors, msg)
			continue
		}

		doc.Sections[section.Name] = records
		doc.TotalRecords += len(records)
		p.logger.DebugContext(ctx, "section extracted",
			slog.String("section", section.Name),
			slog.Int("start_row", section.StartRow),
			slog.Int("end_row", section.EndRow),
			slog.Int("headers", len(headers)),
			slog.Int("records", len(records)))
	}

	return doc
}

// parseSection reads the headers and records of one section. A panic while
// extracting, such as a cell value whose String method panics during
// normalization, is returned as an error so the other sections still parse.
func (p *Parser) parseSection(src grid.Source, section domain.Section) (records []domain.Record, headers domain.HeaderMap, err error) {
	defer func() {
		if r := recover(); r != nil {
			records, headers = nil, nil
			err = fmt.Errorf("%v", r)
		}
	}()

	headers = DetectHeaders(src, section.StartRow, section.EndRow)
	if len(headers) == 0 {
		return nil, headers, nil
	}

	dataStart := section.StartRow + dataRowOffset
	if dataStart > section.EndRow {
		return []domain.Record{}, headers, nil
	}
	return Extract(src, dataStart, section.EndRow, headers), headers, nil
}

func (p *Parser) unreadable(ctx context.Context, doc *domain.ParsedDocument, cause error) *domain.ParsedDocument {
	target := doc.Metadata.FilePath
	if target == "" {
		target = "grid"
	}
	msg := fmt.Sprintf("Failed to parse %s: %v", target, cause)
	p.logger.ErrorContext(ctx, "document unreadable", slog.String("error", cause.Error()))
	doc.Metadata.Error = msg
	doc.ParsingErrors = append(doc.ParsingErrors, msg)
	return doc
}

// ParseFile loads a workbook sheet and parses it. A load failure produces
// the same empty document as an unreadable grid, with the loader's error
// recorded.
func (p *Parser) ParseFile(ctx context.Context, path, sheet string) *domain.ParsedDocument {
	ctx, span := p.tracer.Start(ctx, "dataprocessing.ParseFile",
		trace.WithAttributes(attribute.String("file.name", filepath.Base(path))))
	defer span.End()

	p.logger.InfoContext(ctx, "parsing workbook", slog.String("path", path))

	g, err := grid.LoadFile(ctx, path, sheet)
	if err != nil {
		doc := domain.NewParsedDocument()
		doc.Metadata.ParsedAt = p.now()
		doc.Metadata.FilePath = path
		doc.Metadata.SheetName = sheet
		span.RecordError(err)
		return p.unreadable(ctx, doc, err)
	}

	doc := p.Parse(ctx, g)
	span.SetAttributes(
		attribute.Int("document.sections", len(doc.Sections)),
		attribute.Int("document.records", doc.TotalRecords),
		attribute.Int("document.parsing_errors", len(doc.ParsingErrors)),
	)
	p.logger.InfoContext(ctx, "workbook parsed",
		slog.String("path", path),
		slog.Int("sections", len(doc.Sections)),
		slog.Int("records", doc.TotalRecords),
		slog.Int("parsing_errors", len(doc.ParsingErrors)))
	return doc
}

// ValidateStructure reports advisory layout issues of src. It never fails.
func (p *Parser) ValidateStructure(src grid.Source) []domain.StructureIssue {
	issues := []domain.StructureIssue{}

	rows, _, err := safeDimensions(src)
	if err != nil {
		return append(issues, readErrorIssue(err))
	}

	if rows <= 1 {
		issues = append(issues, domain.StructureIssue{
			ErrorType:  domain.IssueEmptyFile,
			Message:    "Excel file appears to be empty or has only headers",
			Suggestion: "Ensure the file contains data rows",
		})
	}

	sections := DetectSections(src)
	if len(sections) == 0 {
		issues = append(issues, domain.StructureIssue{
			ErrorType:  domain.IssueNoSections,
			Message:    "No recognizable sections found (BQ, NA, etc.)",
			Suggestion: "Ensure the file contains section headers like 'Baqala (BQ)' or 'National Accounts (NA)'",
		})
	}

	for _, section := range sections {
		headers := DetectHeaders(src, section.StartRow, section.EndRow)
		switch {
		case len(headers) == 0:
			issues = append(issues, domain.StructureIssue{
				ErrorType:  domain.IssueNoHeaders,
				Message:    fmt.Sprintf("No headers detected in section '%s'", section.Name),
				Field:      section.Name,
				Suggestion: "Ensure the section contains column headers like 'Region', 'Supervisor', 'Area', etc.",
			})
		case len(headers) < minHeaders:
			issues = append(issues, domain.StructureIssue{
				ErrorType:  domain.IssueInsufficientHeaders,
				Message:    fmt.Sprintf("Section '%s' has only %d headers, expected at least %d", section.Name, len(headers), minHeaders),
				Field:      section.Name,
				Value:      fmt.Sprintf("%d", len(headers)),
				Suggestion: "Ensure the section has at least Region, Supervisor, and Area columns",
			})
		}
	}

	return issues
}

// ValidateFile loads a workbook sheet and validates its structure. A load
// failure is reported as a FILE_READ_ERROR issue.
func (p *Parser) ValidateFile(ctx context.Context, path, sheet string) []domain.StructureIssue {
	g, err := grid.LoadFile(ctx, path, sheet)
	if err != nil {
		return []domain.StructureIssue{readErrorIssue(err)}
	}
	return p.ValidateStructure(g)
}

func readErrorIssue(err error) domain.StructureIssue {
	return domain.StructureIssue{
		ErrorType:  domain.IssueFileReadError,
		Message:    fmt.Sprintf("Cannot read Excel file: %v", err),
		Suggestion: "Check if the file is a valid Excel file and is not corrupted",
	}
}

// Preview summarises the detected layout of src and samples the first
// maxRows rows of its first columns as display text.
func (p *Parser) Preview(src grid.Source, maxRows int) domain.FilePreview {
	if maxRows <= 0 {
		maxRows = DefaultPreviewRows
	}

	var meta domain.DocumentMetadata
	describe(src, &meta)
	preview := domain.FilePreview{
		SheetName:  meta.SheetName,
		Sections:   make(map[string]domain.SectionPreview),
		SampleData: [][]string{},
	}
	if meta.FilePath != "" {
		preview.FileName = filepath.Base(meta.FilePath)
	}

	rows, cols, err := safeDimensions(src)
	if err != nil {
		preview.Error = fmt.Sprintf("Cannot preview file: %v", err)
		return preview
	}
	preview.TotalRows = rows
	preview.TotalColumns = cols

	for _, section := range DetectSections(src) {
		headers := DetectHeaders(src, section.StartRow, section.EndRow)
		preview.Sections[section.Name] = domain.SectionPreview{
			StartRow:    section.StartRow,
			EndRow:      section.EndRow,
			Headers:     headers,
			HeaderCount: len(headers),
		}
	}

	sampleCols := cols
	if sampleCols > previewColumns {
		sampleCols = previewColumns
	}
	for row := 1; row <= rows && row <= maxRows; row++ {
		line := make([]string, sampleCols)
		for col := 1; col <= sampleCols; col++ {
			line[col-1] = grid.Text(src, row, col)
		}
		preview.SampleData = append(preview.SampleData, line)
	}

	return preview
}

// PreviewFile loads a workbook sheet and previews it. A load failure is
// reported in the preview's Error field.
func (p *Parser) PreviewFile(ctx context.Context, path, sheet string, maxRows int) domain.FilePreview {
	g, err := grid.LoadFile(ctx, path, sheet)
	if err != nil {
		return domain.FilePreview{
			FileName:   filepath.Base(path),
			Sections:   map[string]domain.SectionPreview{},
			SampleData: [][]string{},
			Error:      fmt.Sprintf("Cannot preview file: %v", err),
		}
	}
	return p.Preview(g, maxRows)
}

// describe copies the sheet name and path of an in-memory grid
func describe(src grid.Source, meta *domain.DocumentMetadata) {
	if g, ok := src.(*grid.Grid); ok && g != nil {
		meta.FilePath = g.Path
		meta.SheetName = g.Sheet
	}
}
