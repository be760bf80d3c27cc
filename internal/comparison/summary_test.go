package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportqa/pkg/contracts/domain"
)

func result(section string, status domain.ValidationStatus, severity domain.Severity) domain.ComparisonResult {
	return domain.ComparisonResult{Key: "k", Section: section, Field: "f", Status: status, Severity: severity}
}

func TestGenerateSummary_Empty(t *testing.T) {
	s := GenerateSummary(nil, nil)
	assert.Equal(t, 100.0, s.OverallMatchPercentage)
	assert.False(t, s.HasCalculationErrors)
	assert.False(t, s.HasStructuralErrors)
	assert.Zero(t, s.TotalRecordsCompared)
	assert.Zero(t, s.TotalDiscrepancies)
}

func TestGenerateSummary(t *testing.T) {
	results := []domain.ComparisonResult{
		result("BQ", domain.StatusMatch, domain.SeverityLow),
		result("BQ", domain.StatusMismatch, domain.SeverityHigh),
		result("BQ", domain.StatusMismatch, domain.SeverityMedium),
		result("NA", domain.StatusMissingInDest, domain.SeverityHigh),
		result(domain.SectionStructural, domain.StatusMissingInSource, domain.SeverityHigh),
		result(domain.SectionCalculation, domain.StatusCalculationError, domain.SeverityCritical),
	}
	calcs := []domain.CalculationValidation{
		{Field: "Day Sale", Status: domain.StatusCalculationError},
		{Field: "WTD Sale", Status: domain.StatusMatch},
	}

	s := GenerateSummary(results, calcs)

	assert.Equal(t, 6, s.TotalRecordsCompared)
	assert.Equal(t, 1, s.TotalMatches)
	assert.Equal(t, 2, s.TotalMismatches)
	assert.Equal(t, 1, s.TotalMissingInSource)
	assert.Equal(t, 1, s.TotalMissingInDest)
	assert.Equal(t, 1, s.TotalCalculationErrors)
	assert.Equal(t, 5, s.TotalDiscrepancies)
	assert.Equal(t, 1, s.CriticalIssues)
	assert.Equal(t, 3, s.HighIssues)
	assert.Equal(t, 1, s.MediumIssues)
	assert.Equal(t, 1, s.LowIssues)
	assert.Equal(t, 16.67, s.OverallMatchPercentage)
	assert.True(t, s.HasCalculationErrors)
	assert.True(t, s.HasStructuralErrors)
}

func TestGenerateSummary_StructuralFlag(t *testing.T) {
	s := GenerateSummary([]domain.ComparisonResult{result("BQ", domain.StatusStructuralError, domain.SeverityLow)}, nil)
	assert.True(t, s.HasStructuralErrors)
	assert.Equal(t, 1, s.TotalStructuralErrors)

	s = GenerateSummary([]domain.ComparisonResult{result("BQ", domain.StatusMismatch, domain.SeverityMedium)}, nil)
	assert.False(t, s.HasStructuralErrors)
	assert.Zero(t, s.OverallMatchPercentage)
}

func TestWithStats(t *testing.T) {
	stats := domain.ComparisonStats{Sections: map[string]domain.SectionStats{
		"BQ": {RecordsCompared: 2, FieldsCompared: 8, FieldMatches: 7},
		"NA": {RecordsCompared: 1, FieldsCompared: 4, FieldMatches: 4},
	}}
	base := GenerateSummary([]domain.ComparisonResult{result("BQ", domain.StatusMismatch, domain.SeverityHigh)}, nil)

	s := WithStats(base, stats)

	assert.Equal(t, 3, s.TotalRecordsCompared)
	assert.Equal(t, 12, s.TotalFieldsCompared)
	assert.Equal(t, 11, s.TotalMatches)
	assert.Equal(t, 91.67, s.FieldMatchPercentage)
	assert.Equal(t, base.OverallMatchPercentage, s.OverallMatchPercentage)
	assert.Equal(t, 1, s.TotalMismatches)
	assert.Equal(t, 1, s.TotalDiscrepancies)

	assert.Equal(t, 100.0, WithStats(base, domain.ComparisonStats{}).FieldMatchPercentage)
}

func TestGenerateSectionSummaries(t *testing.T) {
	results := []domain.ComparisonResult{
		result("NA", domain.StatusMismatch, domain.SeverityHigh),
		result("BQ", domain.StatusMissingInSource, domain.SeverityHigh),
		result("NA", domain.StatusMatch, domain.SeverityLow),
		result("NA", domain.StatusMissingInDest, domain.SeverityHigh),
	}

	summaries := GenerateSectionSummaries(results)
	require.Len(t, summaries, 2)

	na := summaries[0]
	assert.Equal(t, "NA", na.SectionName, "first-seen order")
	assert.Equal(t, 3, na.TotalRecords)
	assert.Equal(t, 1, na.Matches)
	assert.Equal(t, 1, na.Mismatches)
	assert.Equal(t, 1, na.MissingInDest)
	assert.Equal(t, 33.33, na.MatchPercentage)

	bq := summaries[1]
	assert.Equal(t, "BQ", bq.SectionName)
	assert.Equal(t, 1, bq.MissingInSource)
	assert.Zero(t, bq.MatchPercentage)

	assert.Empty(t, GenerateSectionSummaries(nil))
}
