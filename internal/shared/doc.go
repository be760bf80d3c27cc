// Package shared holds code used by several reportqa packages that does not
// belong to a single layer.
//
// The testutil subpackage provides the test helpers:
//
//   - NewTestLogger captures slog records for assertions
//   - WriteWorkbook and ReportWorkbook build .xlsx fixtures with excelize
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.ReportWorkbook(t, t.TempDir(), "source.xlsx", 1000)
//	    // ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "validation completed")
//	}
package shared
