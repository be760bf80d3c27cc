package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reportqa/internal/services"
)

// batchEntry summarises the comparison of one workbook pair
type batchEntry struct {
	ReportName           string  `json:"report_name"`
	Source               string  `json:"source"`
	Dest                 string  `json:"dest"`
	RunID                string  `json:"run_id,omitempty"`
	Output               string  `json:"output,omitempty"`
	TotalDiscrepancies   int     `json:"total_discrepancies"`
	TotalMismatches      int     `json:"total_mismatches"`
	CriticalIssues       int     `json:"critical_issues"`
	FieldMatchPercentage float64 `json:"field_match_percentage"`
	Error                string  `json:"error,omitempty"`
}

// batchResult is the output of the compare-dir command
type batchResult struct {
	Reports    []batchEntry `json:"reports"`
	SourceOnly []string     `json:"source_only"`
	DestOnly   []string     `json:"dest_only"`
	Failed     int          `json:"failed"`
}

func (c *cli) newCompareDirCommand() *cobra.Command {
	var (
		outputDir         string
		failOnDiscrepancy bool
	)

	cmd := &cobra.Command{
		Use:     "compare-dir <source-dir> <destination-dir>",
		GroupID: "core",
		Short:   "Compare every workbook pair of two directories",
		Long: `Compare-dir pairs the workbooks of two directories by file name, ignoring
case and extension, and compares each pair. Workbooks without a counterpart
are listed but not compared.

A summary of every pair is printed as JSON. With --output-dir the full
report of each pair is also written to <output-dir>/<name>.json.`,
		Example: `  reportqa compare-dir exports/erp exports/bi --output-dir reports/2024-03-01`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pairing, err := c.app.Discovery.PairWorkbooks(args[0], args[1])
			if err != nil {
				return err
			}

			result := batchResult{
				Reports:    make([]batchEntry, len(pairing.Pairs)),
				SourceOnly: nonNil(pairing.SourceOnly),
				DestOnly:   nonNil(pairing.DestOnly),
			}
			errs := make([]error, len(pairing.Pairs))

			var g errgroup.Group
			g.SetLimit(c.app.Config.Service.BatchWorkers)
			for i, pair := range pairing.Pairs {
				g.Go(func() error {
					entry := &result.Reports[i]
					entry.ReportName = pair.Name
					entry.Source = pair.Source.Path
					entry.Dest = pair.Dest.Path

					report, err := c.app.Validation.Validate(ctx, services.ValidationRequest{
						ReportName:  pair.Name,
						SourcePath:  pair.Source.Path,
						DestPath:    pair.Dest.Path,
						SourceSheet: c.sheet,
						DestSheet:   c.sheet,
					})
					if err != nil {
						errs[i] = fmt.Errorf("%s: %w", pair.Name, err)
						entry.Error = err.Error()
						return nil
					}

					entry.RunID = report.RunID
					entry.TotalDiscrepancies = report.Summary.TotalDiscrepancies
					entry.TotalMismatches = report.Summary.TotalMismatches
					entry.CriticalIssues = report.Summary.CriticalIssues
					entry.FieldMatchPercentage = report.Summary.FieldMatchPercentage

					if outputDir != "" {
						path := filepath.Join(outputDir, pair.Name+".json")
						if err := c.app.Writer.WriteJSON(path, report); err != nil {
							errs[i] = fmt.Errorf("%s: %w", pair.Name, err)
							entry.Error = err.Error()
							return nil
						}
						entry.Output = path
					}
					return nil
				})
			}
			// Pair failures are collected in errs
			_ = g.Wait()

			var failures []error
			discrepancies := 0
			for i, err := range errs {
				if err != nil {
					failures = append(failures, err)
				}
				discrepancies += result.Reports[i].TotalDiscrepancies
			}
			result.Failed = len(failures)

			c.app.Logger.InfoContext(ctx, "batch completed",
				slog.Int("pairs", len(pairing.Pairs)),
				slog.Int("failed", result.Failed),
				slog.Int("discrepancies", discrepancies))

			if err := writeJSON(c.stdout, result); err != nil {
				return err
			}

			if len(failures) > 0 {
				// The first failure decides the exit code
				return fmt.Errorf("%d of %d comparisons failed: %w",
					len(failures), len(pairing.Pairs), errors.Join(failures...))
			}
			if failOnDiscrepancy && discrepancies > 0 {
				return fmt.Errorf("%w: %d", errDiscrepancies, discrepancies)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outputDir, "output-dir", "o", "", "write each report to this directory")
	flags.BoolVar(&failOnDiscrepancy, "fail-on-discrepancy", false, "exit with status 1 when any discrepancy is found")
	return cmd
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
