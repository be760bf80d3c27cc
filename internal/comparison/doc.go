// Package comparison reconciles two parsed report documents.
//
// A Comparator runs three stages over a source and a destination
// domain.ParsedDocument:
//
//  1. Structural validation: sections present on one side only, and
//     common sections whose record counts differ.
//  2. Record comparison: records of each common section are matched by
//     composite key and compared field by field with a NumericalComparator.
//  3. Calculation validation: the destination's total section is checked
//     against the sum of its itemized sections.
//
// Only discrepancies become domain.ComparisonResult values. Matches are
// counted in ComparisonStats, which WithStats folds into a summary:
//
//	cmp := comparison.NewComparator(cfg.Comparison, logger)
//	out := cmp.Compare(ctx, source, dest)
//	summary := comparison.WithStats(comparison.GenerateSummary(out.Results, out.CalculationValidations), out.Stats)
//
// Numbers are summed and subtracted with github.com/shopspring/decimal so
// that a tolerance of 0.01 behaves as written.
package comparison
