// Package app wires the reportqa command line application together.
//
// # Initialization Flow
//
// NewApplication runs these steps in order:
//
//	1. Load .env files with godotenv (existing variables win)
//	2. Load configuration: defaults, optional YAML file, REPORTQA_* environment
//	3. Initialize the slog logger
//	4. Initialize OpenTelemetry tracing and metrics
//	5. Create the parser, the validation service, workbook discovery and
//	   the report writer
//
// # Usage
//
//	application, err := app.NewApplication(app.Options{ConfigFile: path})
//	if err != nil {
//	    return err
//	}
//	defer application.Shutdown(ctx)
//	report, err := application.Validation.Validate(ctx, req)
//
// # Shutdown
//
// Shutdown logs the metric totals of the run when metrics are enabled,
// flushes the trace exporter and closes the log file.
package app
