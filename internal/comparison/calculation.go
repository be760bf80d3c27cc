package comparison

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"reportqa/pkg/contracts/domain"
)

// TotalSections lists the section names that hold totals, in the order they
// are looked up.
var TotalSections = []string{domain.SectionCombined, domain.SectionCentral, domain.SectionTotal}

// SummableFields are the fields whose itemized values add up to the total
var SummableFields = []string{
	"WK Slab", "Day Sale", "Day Slab", "Day Stale",
	"WTD Slab", "WTD Sale", "WTD Stale", "Wk Sale LY",
}

var hundred = decimal.NewFromInt(100)

// CalculationValidator reconciles the total section of a document against
// the sum of its itemized sections.
type CalculationValidator struct {
	numeric NumericalComparator
}

// NewCalculationValidator returns a validator using numeric's tolerance
func NewCalculationValidator(numeric NumericalComparator) CalculationValidator {
	return CalculationValidator{numeric: numeric}
}

// ValidateTotals checks every summable field of doc. It returns nothing
// when doc has no total section, no itemized section, or an empty total
// section. A field is skipped when no itemized record carries a numeric
// value for it, or the total record has none.
func (c CalculationValidator) ValidateTotals(doc *domain.ParsedDocument) []domain.CalculationValidation {
	var validations []domain.CalculationValidation
	if doc == nil {
		return validations
	}

	totalName, ok := totalSection(doc)
	if !ok {
		return validations
	}
	itemized := itemizedSections(doc)
	if len(itemized) == 0 {
		return validations
	}
	totals := doc.Sections[totalName]
	if len(totals) == 0 {
		return validations
	}
	totalRecord := totals[0]
	formula := fmt.Sprintf("Sum of %s sections", strings.Join(itemized, ", "))

	for _, field := range SummableFields {
		expected, found := sumField(doc, itemized, field)
		if !found {
			continue
		}
		v, ok := totalRecord.Get(field)
		if !ok {
			continue
		}
		actual, ok := ToDecimal(v)
		if !ok {
			continue
		}

		diff := expected.Sub(actual)
		pct := decimal.Zero
		if !expected.IsZero() {
			pct = diff.Div(expected).Abs().Mul(hundred)
		}
		status := domain.StatusMatch
		if !c.numeric.Within(diff) {
			status = domain.StatusCalculationError
		}

		validations = append(validations, domain.CalculationValidation{
			Field:           field,
			ExpectedValue:   expected.InexactFloat64(),
			ActualValue:     actual.InexactFloat64(),
			Difference:      diff.InexactFloat64(),
			PercentageError: pct.InexactFloat64(),
			Status:          status,
			FormulaUsed:     formula,
		})
	}

	return validations
}

// CalculationResult surfaces a failed calculation check as a discrepancy
func CalculationResult(cv domain.CalculationValidation) domain.ComparisonResult {
	diff := cv.Difference
	return domain.ComparisonResult{
		Key:         domain.KeyTotalCalculation,
		Section:     domain.SectionCalculation,
		Field:       cv.Field,
		SourceValue: domain.Number(cv.ExpectedValue),
		DestValue:   domain.Number(cv.ActualValue),
		Status:      domain.StatusCalculationError,
		Severity:    domain.SeverityCritical,
		Difference:  &diff,
		Notes:       "Calculation error: " + cv.FormulaUsed,
	}
}

func totalSection(doc *domain.ParsedDocument) (string, bool) {
	for _, name := range TotalSections {
		if doc.HasSection(name) {
			return name, true
		}
	}
	return "", false
}

func itemizedSections(doc *domain.ParsedDocument) []string {
	var out []string
	for _, name := range doc.SectionNames() {
		if !isTotalSection(name) {
			out = append(out, name)
		}
	}
	return out
}

func isTotalSection(name string) bool {
	for _, t := range TotalSections {
		if t == name {
			return true
		}
	}
	return false
}

func sumField(doc *domain.ParsedDocument, sections []string, field string) (decimal.Decimal, bool) {
	sum := decimal.Zero
	found := false
	for _, name := range sections {
		for _, rec := range doc.Sections[name] {
			v, ok := rec.Get(field)
			if !ok {
				continue
			}
			d, ok := ToDecimal(v)
			if !ok {
				continue
			}
			sum = sum.Add(d)
			found = true
		}
	}
	return sum, found
}
