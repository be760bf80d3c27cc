package comparison

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"reportqa/internal/config"
	"reportqa/internal/infrastructure"
	"reportqa/pkg/contracts/domain"
)

// Comparison is everything one comparator run produces. Results holds
// discrepancies only; field matches are counted in Stats.
type Comparison struct {
	Results                []domain.ComparisonResult      `json:"comparison_results"`
	CalculationValidations []domain.CalculationValidation `json:"calculation_validations"`
	Stats                  domain.ComparisonStats         `json:"stats"`
}

// Comparator reconciles a source document against a destination document.
// It is stateless between runs and safe for concurrent use.
type Comparator struct {
	cfg        config.ComparisonConfig
	numeric    NumericalComparator
	structural StructuralValidator
	calc       CalculationValidator
	thresholds Thresholds
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *infrastructure.ValidationMetrics
}

// NewComparator creates a comparator from cfg
func NewComparator(cfg config.ComparisonConfig, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	numeric := NewNumericalComparator(cfg.Tolerance)
	return &Comparator{
		cfg:        cfg,
		numeric:    numeric,
		calc:       NewCalculationValidator(numeric),
		thresholds: ThresholdsFromConfig(cfg),
		logger:     infrastructure.WithComponent(logger, "comparator"),
		tracer:     otel.Tracer("reportqa/comparison"),
	}
}

// WithMetrics makes the comparator count discrepancies and calculation
// checks on m.
func (c *Comparator) WithMetrics(m *infrastructure.ValidationMetrics) *Comparator {
	c.metrics = m
	return c
}

// Compare runs structural validation, record comparison and calculation
// validation, in that order. The two validations can be disabled in the
// configuration. A nil document is treated as empty.
func (c *Comparator) Compare(ctx context.Context, source, dest *domain.ParsedDocument) *Comparison {
	ctx, span := c.tracer.Start(ctx, "comparison.Compare")
	defer span.End()

	if source == nil {
		source = domain.NewParsedDocument()
	}
	if dest == nil {
		dest = domain.NewParsedDocument()
	}

	out := &Comparison{
		Results:                []domain.ComparisonResult{},
		CalculationValidations: []domain.CalculationValidation{},
		Stats:                  domain.ComparisonStats{Sections: make(map[string]domain.SectionStats)},
	}

	c.logger.InfoContext(ctx, "starting report comparison",
		slog.Int("source_sections", len(source.Sections)),
		slog.Int("dest_sections", len(dest.Sections)))

	if c.cfg.EnableStructureValidation {
		out.Results = append(out.Results, c.structural.ValidateSections(source, dest)...)
		out.Results = append(out.Results, c.structural.ValidateRecordCounts(source, dest)...)
		c.logger.DebugContext(ctx, "structural validation done", slog.Int("results", len(out.Results)))
	}

	for _, name := range commonSections(source, dest) {
		results, stats := c.compareSection(name, source.Sections[name], dest.Sections[name])
		out.Results = append(out.Results, results...)
		out.Stats.Sections[name] = stats
		c.logger.DebugContext(ctx, "section compared",
			slog.String("section", name),
			slog.Int("records_compared", stats.RecordsCompared),
			slog.Int("fields_compared", stats.FieldsCompared),
			slog.Int("discrepancies", len(results)))
	}

	if c.cfg.EnableCalculationValidation {
		out.CalculationValidations = c.calc.ValidateTotals(dest)
		for _, cv := range out.CalculationValidations {
			c.metrics.RecordCalculationCheck(ctx, cv.Field, string(cv.Status))
			if cv.Status == domain.StatusCalculationError {
				out.Results = append(out.Results, CalculationResult(cv))
			}
		}
	}

	for _, r := range out.Results {
		c.metrics.RecordDiscrepancy(ctx, string(r.Status), string(r.Severity))
	}

	totals := out.Stats.Totals()
	span.SetAttributes(
		attribute.Int("comparison.results", len(out.Results)),
		attribute.Int("comparison.calculations", len(out.CalculationValidations)),
		attribute.Int("comparison.fields_compared", totals.FieldsCompared),
	)
	c.logger.InfoContext(ctx, "comparison completed",
		slog.Int("results", len(out.Results)),
		slog.Int("calculation_validations", len(out.CalculationValidations)),
		slog.Int("records_compared", totals.RecordsCompared),
		slog.Int("field_matches", totals.FieldMatches))

	return out
}

// compareSection matches records by key. Keys are visited in source order,
// then destination-only keys in destination order. A repeated key keeps
// its last record.
func (c *Comparator) compareSection(section string, source, dest []domain.Record) ([]domain.ComparisonResult, domain.SectionStats) {
	var results []domain.ComparisonResult
	var stats domain.SectionStats

	srcByKey, keys := indexRecords(source)
	dstByKey, dstKeys := indexRecords(dest)
	for _, k := range dstKeys {
		if _, ok := srcByKey[k]; !ok {
			keys = append(keys, k)
		}
	}

	for _, key := range keys {
		src, inSource := srcByKey[key]
		dst, inDest := dstByKey[key]

		switch {
		case !inSource:
			results = append(results, domain.ComparisonResult{
				Key:         key,
				Section:     section,
				Field:       domain.FieldEntireRecord,
				SourceValue: missingValue,
				DestValue:   existsValue,
				Status:      domain.StatusMissingInSource,
				Severity:    domain.SeverityHigh,
				Notes:       "Record exists in destination but missing in source",
			})
		case !inDest:
			results = append(results, domain.ComparisonResult{
				Key:         key,
				Section:     section,
				Field:       domain.FieldEntireRecord,
				SourceValue: existsValue,
				DestValue:   missingValue,
				Status:      domain.StatusMissingInDest,
				Severity:    domain.SeverityHigh,
				Notes:       "Record exists in source but missing in destination",
			})
		default:
			stats.RecordsCompared++
			results = append(results, c.compareRecords(key, section, src, dst, &stats)...)
		}
	}

	return results, stats
}

func (c *Comparator) compareRecords(key, section string, src, dst domain.Record, stats *domain.SectionStats) []domain.ComparisonResult {
	var results []domain.ComparisonResult

	for _, field := range fieldUnion(src, dst) {
		sv, _ := src.Get(field)
		dv, _ := dst.Get(field)
		stats.FieldsCompared++

		match, diff := c.numeric.Compare(sv, dv)
		if match {
			stats.FieldMatches++
			continue
		}

		r := domain.ComparisonResult{
			Key:         key,
			Section:     section,
			Field:       field,
			SourceValue: sv,
			DestValue:   dv,
			Status:      domain.StatusMismatch,
			Difference:  diff,
		}
		r.Severity = DetermineSeverity(r, c.thresholds)
		results = append(results, r)
	}

	return results
}

func indexRecords(records []domain.Record) (map[string]domain.Record, []string) {
	byKey := make(map[string]domain.Record, len(records))
	keys := make([]string, 0, len(records))
	for _, r := range records {
		if _, seen := byKey[r.Key]; !seen {
			keys = append(keys, r.Key)
		}
		byKey[r.Key] = r
	}
	return byKey, keys
}

// fieldUnion returns the source fields followed by destination-only fields
func fieldUnion(src, dst domain.Record) []string {
	fields := append([]string(nil), src.Fields...)
	for _, f := range dst.Fields {
		if _, ok := src.Values[f]; !ok {
			fields = append(fields, f)
		}
	}
	return fields
}
