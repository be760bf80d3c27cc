package domain

import (
	"time"
)

// ValidationStatus is the outcome of comparing one key/section/field triple.
type ValidationStatus string

const (
	StatusMatch            ValidationStatus = "MATCH"
	StatusMismatch         ValidationStatus = "MISMATCH"
	StatusMissingInSource  ValidationStatus = "MISSING_IN_SOURCE"
	StatusMissingInDest    ValidationStatus = "MISSING_IN_DEST"
	StatusCalculationError ValidationStatus = "CALCULATION_ERROR"
	StatusStructuralError  ValidationStatus = "STRUCTURAL_ERROR"
)

// IsMissing reports whether the status marks a record or section present on
// one side only.
func (s ValidationStatus) IsMissing() bool {
	return s == StatusMissingInSource || s == StatusMissingInDest
}

// Severity ranks how much a discrepancy matters.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Pseudo keys, sections and fields used by results that do not describe a
// single record field.
const (
	KeyTotalCalculation = "TOTAL_CALCULATION"
	SectionStructural   = "STRUCTURAL"
	SectionCalculation  = "CALCULATION"
	FieldEntireSection  = "ENTIRE_SECTION"
	FieldEntireRecord   = "ENTIRE_RECORD"
	FieldRecordCount    = "RECORD_COUNT"
)

// ComparisonResult describes one discrepancy. Field-level matches are never
// materialised as results; match counts are only available through
// ComparisonStats and the summaries built from it.
type ComparisonResult struct {
	Key         string           `json:"key"`
	Section     string           `json:"section"`
	Field       string           `json:"field"`
	SourceValue Value            `json:"source_value"`
	DestValue   Value            `json:"dest_value"`
	Status      ValidationStatus `json:"status"`
	Severity    Severity         `json:"severity"`
	Difference  *float64         `json:"difference"`
	Notes       string           `json:"notes,omitempty"`
}

// CalculationValidation reconciles one summable field of the total section
// against the sum of the itemized sections.
type CalculationValidation struct {
	Field           string           `json:"field"`
	ExpectedValue   float64          `json:"expected_value"`
	ActualValue     float64          `json:"actual_value"`
	Difference      float64          `json:"difference"`
	PercentageError float64          `json:"percentage_error"`
	Status          ValidationStatus `json:"status"`
	FormulaUsed     string           `json:"formula_used,omitempty"`
}

// SectionStats counts the work done for one common section.
type SectionStats struct {
	RecordsCompared int `json:"records_compared"`
	FieldsCompared  int `json:"fields_compared"`
	FieldMatches    int `json:"field_matches"`
}

// ComparisonStats holds per-section comparison counts.
type ComparisonStats struct {
	Sections map[string]SectionStats `json:"sections"`
}

// Totals sums the per-section counts.
func (s ComparisonStats) Totals() SectionStats {
	var total SectionStats
	for _, st := range s.Sections {
		total.RecordsCompared += st.RecordsCompared
		total.FieldsCompared += st.FieldsCompared
		total.FieldMatches += st.FieldMatches
	}
	return total
}

// ValidationSummary aggregates a result list.
type ValidationSummary struct {
	TotalRecordsCompared   int     `json:"total_records_compared"`
	TotalFieldsCompared    int     `json:"total_fields_compared"`
	TotalMatches           int     `json:"total_matches"`
	TotalMismatches        int     `json:"total_mismatches"`
	TotalMissingInSource   int     `json:"total_missing_in_source"`
	TotalMissingInDest     int     `json:"total_missing_in_dest"`
	TotalCalculationErrors int     `json:"total_calculation_errors"`
	TotalStructuralErrors  int     `json:"total_structural_errors"`
	TotalDiscrepancies     int     `json:"total_discrepancies"`
	OverallMatchPercentage float64 `json:"overall_match_percentage"`
	FieldMatchPercentage   float64 `json:"field_match_percentage"`
	CriticalIssues         int     `json:"critical_issues"`
	HighIssues             int     `json:"high_issues"`
	MediumIssues           int     `json:"medium_issues"`
	LowIssues              int     `json:"low_issues"`
	HasCalculationErrors   bool    `json:"has_calculation_errors"`
	HasStructuralErrors    bool    `json:"has_structural_errors"`
}

// SectionSummary aggregates the results of one section.
type SectionSummary struct {
	SectionName     string  `json:"section_name"`
	TotalRecords    int     `json:"total_records"`
	TotalFields     int     `json:"total_fields"`
	Matches         int     `json:"matches"`
	Mismatches      int     `json:"mismatches"`
	MissingInSource int     `json:"missing_in_source"`
	MissingInDest   int     `json:"missing_in_dest"`
	MatchPercentage float64 `json:"match_percentage"`
}

// FileInfo describes an input workbook.
type FileInfo struct {
	FileName   string    `json:"filename"`
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	SizeMB     float64   `json:"size_mb"`
	FileType   string    `json:"file_type"`
	ModifiedAt time.Time `json:"upload_timestamp"`
	Exists     bool      `json:"exists"`
}

// ValidationReport is the complete outcome of one validation run.
type ValidationReport struct {
	RunID                  string                  `json:"run_id"`
	ReportName             string                  `json:"report_name"`
	Success                bool                    `json:"success"`
	Message                string                  `json:"message"`
	ValidatedAt            time.Time               `json:"validation_timestamp"`
	ProcessingTimeSeconds  float64                 `json:"processing_time_seconds"`
	Summary                ValidationSummary       `json:"summary"`
	SectionSummaries       []SectionSummary        `json:"section_summaries"`
	ComparisonResults      []ComparisonResult      `json:"comparison_results"`
	CalculationValidations []CalculationValidation `json:"calculation_validations"`
	Stats                  ComparisonStats         `json:"stats"`
	SourceFile             FileInfo                `json:"source_file_info"`
	DestFile               FileInfo                `json:"dest_file_info"`
	SourceParsingErrors    []string                `json:"source_parsing_errors,omitempty"`
	DestParsingErrors      []string                `json:"dest_parsing_errors,omitempty"`
}
