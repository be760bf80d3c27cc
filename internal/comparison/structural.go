package comparison

import (
	"fmt"

	"reportqa/pkg/contracts/domain"
)

var (
	existsValue  = domain.Text("EXISTS")
	missingValue = domain.Text("MISSING")
)

// StructuralValidator checks that both documents have the same sections
// with the same number of records.
type StructuralValidator struct{}

// ValidateSections reports every section present in only one document.
// Sections missing from the destination come first, each group sorted by
// name.
func (StructuralValidator) ValidateSections(source, dest *domain.ParsedDocument) []domain.ComparisonResult {
	var results []domain.ComparisonResult

	for _, name := range sectionsOnlyIn(source, dest) {
		results = append(results, domain.ComparisonResult{
			Key:         "SECTION_" + name,
			Section:     domain.SectionStructural,
			Field:       domain.FieldEntireSection,
			SourceValue: existsValue,
			DestValue:   missingValue,
			Status:      domain.StatusMissingInDest,
			Severity:    domain.SeverityCritical,
			Notes:       fmt.Sprintf("Section '%s' exists in source but missing in destination", name),
		})
	}

	for _, name := range sectionsOnlyIn(dest, source) {
		results = append(results, domain.ComparisonResult{
			Key:         "SECTION_" + name,
			Section:     domain.SectionStructural,
			Field:       domain.FieldEntireSection,
			SourceValue: missingValue,
			DestValue:   existsValue,
			Status:      domain.StatusMissingInSource,
			Severity:    domain.SeverityHigh,
			Notes:       fmt.Sprintf("Section '%s' exists in destination but missing in source", name),
		})
	}

	return results
}

// ValidateRecordCounts reports each common section whose record counts
// differ. The difference is source count minus destination count.
func (StructuralValidator) ValidateRecordCounts(source, dest *domain.ParsedDocument) []domain.ComparisonResult {
	var results []domain.ComparisonResult

	for _, name := range commonSections(source, dest) {
		sc := len(source.Sections[name])
		dc := len(dest.Sections[name])
		if sc == dc {
			continue
		}
		diff := float64(sc - dc)
		results = append(results, domain.ComparisonResult{
			Key:         "COUNT_" + name,
			Section:     name,
			Field:       domain.FieldRecordCount,
			SourceValue: domain.Number(float64(sc)),
			DestValue:   domain.Number(float64(dc)),
			Status:      domain.StatusMismatch,
			Severity:    domain.SeverityHigh,
			Difference:  &diff,
			Notes:       fmt.Sprintf("Record count mismatch in section '%s'", name),
		})
	}

	return results
}

// sectionsOnlyIn returns the sorted names of sections in a but not in b
func sectionsOnlyIn(a, b *domain.ParsedDocument) []string {
	var out []string
	for _, name := range a.SectionNames() {
		if !b.HasSection(name) {
			out = append(out, name)
		}
	}
	return out
}

// commonSections returns the sorted names of sections in both documents
func commonSections(a, b *domain.ParsedDocument) []string {
	var out []string
	for _, name := range a.SectionNames() {
		if b.HasSection(name) {
			out = append(out, name)
		}
	}
	return out
}
