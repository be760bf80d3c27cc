package comparison

import (
	"github.com/shopspring/decimal"

	"reportqa/pkg/contracts/domain"
)

// GenerateSummary counts results per status and severity. Every result that
// is not a MATCH is a discrepancy. The overall match percentage is the share
// of MATCH results, 100 for an empty list.
// Record and field totals count results until WithStats replaces them.
func GenerateSummary(results []domain.ComparisonResult, calcs []domain.CalculationValidation) domain.ValidationSummary {
	var s domain.ValidationSummary

	for _, r := range results {
		if r.Status != domain.StatusMatch {
			s.TotalDiscrepancies++
		}
		switch r.Status {
		case domain.StatusMatch:
			s.TotalMatches++
		case domain.StatusMismatch:
			s.TotalMismatches++
		case domain.StatusMissingInSource:
			s.TotalMissingInSource++
		case domain.StatusMissingInDest:
			s.TotalMissingInDest++
		case domain.StatusStructuralError:
			s.TotalStructuralErrors++
		}

		switch r.Severity {
		case domain.SeverityCritical:
			s.CriticalIssues++
		case domain.SeverityHigh:
			s.HighIssues++
		case domain.SeverityMedium:
			s.MediumIssues++
		case domain.SeverityLow:
			s.LowIssues++
		}
	}

	for _, cv := range calcs {
		if cv.Status == domain.StatusCalculationError {
			s.TotalCalculationErrors++
		}
	}

	s.TotalRecordsCompared = len(results)
	s.TotalFieldsCompared = len(results)
	s.OverallMatchPercentage = percentage(s.TotalMatches, len(results))
	s.FieldMatchPercentage = s.OverallMatchPercentage
	s.HasCalculationErrors = s.TotalCalculationErrors > 0
	s.HasStructuralErrors = s.TotalStructuralErrors+s.TotalMissingInSource+s.TotalMissingInDest > 0

	return s
}

// WithStats overlays the comparator's record and field counts on s.
// Field matches are never materialised as results, so this is where the
// match count and field match percentage come from.
func WithStats(s domain.ValidationSummary, stats domain.ComparisonStats) domain.ValidationSummary {
	totals := stats.Totals()
	s.TotalRecordsCompared = totals.RecordsCompared
	s.TotalFieldsCompared = totals.FieldsCompared
	s.TotalMatches = totals.FieldMatches
	s.FieldMatchPercentage = percentage(totals.FieldMatches, totals.FieldsCompared)
	return s
}

// GenerateSectionSummaries aggregates results per section, in the order
// sections first appear.
func GenerateSectionSummaries(results []domain.ComparisonResult) []domain.SectionSummary {
	summaries := []domain.SectionSummary{}
	index := make(map[string]int)

	for _, r := range results {
		i, ok := index[r.Section]
		if !ok {
			i = len(summaries)
			index[r.Section] = i
			summaries = append(summaries, domain.SectionSummary{SectionName: r.Section})
		}
		sum := &summaries[i]
		sum.TotalRecords++
		sum.TotalFields++
		switch r.Status {
		case domain.StatusMatch:
			sum.Matches++
		case domain.StatusMismatch:
			sum.Mismatches++
		case domain.StatusMissingInSource:
			sum.MissingInSource++
		case domain.StatusMissingInDest:
			sum.MissingInDest++
		}
	}

	for i := range summaries {
		summaries[i].MatchPercentage = percentage(summaries[i].Matches, summaries[i].TotalRecords)
	}
	return summaries
}

// percentage returns part/total*100 rounded to two places, 100 when total is 0
func percentage(part, total int) float64 {
	if total == 0 {
		return 100
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(2).
		InexactFloat64()
}
