// Package dataprocessing discovers the structure of a report sheet and
// extracts its rows into keyed records.
//
// # Architecture
//
// The package is organized into three stages run by Parser:
//
//  1. Structure detection: DetectSections finds named sections (BQ, NA,
//     COMBINED) by keyword, DetectHeaders maps columns to field names.
//  2. Extraction: Extract normalizes each data row of a section into a
//     domain.Record with a composite key.
//  3. Diagnostics: ValidateStructure and Preview report on a sheet without
//     extracting it.
//
// # Usage
//
//	parser := dataprocessing.NewParser(logger)
//	doc := parser.ParseFile(ctx, "daily_report.xlsx", "")
//	for _, msg := range doc.ParsingErrors {
//	    logger.Warn("parse problem", "error", msg)
//	}
//
// # Data Flow
//
//	grid.Source → DetectSections → DetectHeaders → Extract → domain.ParsedDocument
//
// # Error Handling
//
// Parsing never returns an error. Problems are accumulated on the document's
// ParsingErrors so one bad section does not hide the others; a sheet that
// cannot be read at all produces a document with no sections.
package dataprocessing
