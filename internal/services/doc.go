// Package services implements the use cases of reportqa on top of the
// parser and the comparator. It is the layer the command line talks to.
//
// # Architecture
//
// ValidationService follows these principles:
//
//  1. Interface-driven dependencies (DocumentParser, DocumentComparator) for testability
//  2. Context propagation for deadlines, run ids and tracing
//  3. Functional options for dependency injection
//
// # Validation Flow
//
//	ValidateExcelFile(source, dest)
//	    → ParseFile(source) ∥ ParseFile(dest)      (errgroup)
//	    → reject empty documents
//	    → Compare(source, dest)                     (abandoned at the deadline)
//	    → GenerateSummary / WithStats / GenerateSectionSummaries
//	    → domain.ValidationReport
//
// # Usage
//
//	svc := services.NewValidationServiceWithLogger(cfg, logger, services.WithMetrics(metrics))
//	report, err := svc.Validate(ctx, services.ValidationRequest{
//	    SourcePath: "source.xlsx",
//	    DestPath:   "dest.xlsx",
//	})
//
// # Error Handling
//
// Services return internal/errors.AppError values that the CLI maps to exit
// codes:
//
//   - VALIDATION / NOT_FOUND for unusable input files
//   - PARSING wrapping ErrComparisonImpossible or ErrMissingSide when a
//     document has no sections
//   - TIMEOUT wrapping ErrOperationTimeout and context.DeadlineExceeded
//
// Discrepancies between the documents are never errors; they are results in
// the returned report.
//
// # Testing
//
// Services are tested by mocking dependencies with testify/mock:
//
//	parser := new(MockParser)
//	parser.On("ParseFile", mock.Anything, path, "").Return(doc)
//	svc := NewValidationServiceWithLogger(cfg, logger, WithParser(parser))
package services
