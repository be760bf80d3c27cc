package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	apperrors "reportqa/internal/errors"
	"reportqa/internal/grid"
	"reportqa/internal/services"
	"reportqa/internal/validation"
	"reportqa/pkg/contracts"
	"reportqa/pkg/contracts/domain"
)

// errDiscrepancies fails compare --fail-on-discrepancy runs
var errDiscrepancies = errors.New("discrepancies found")

func (c *cli) newCompareCommand() *cobra.Command {
	var (
		req               services.ValidationRequest
		output            string
		failOnDiscrepancy bool
	)

	cmd := &cobra.Command{
		Use:     "compare <source.xlsx> <destination.xlsx>",
		GroupID: "core",
		Short:   "Compare two workbooks and print the validation report",
		Long: `Compare parses both workbooks, matches their records and prints a
validation report with every discrepancy, the calculation checks and the
summaries.

Exit codes: 0 success, 1 discrepancies (mismatches, missing records or
calculation errors) found with --fail-on-discrepancy,
2 unusable input file, 3 bad configuration, 4 unparseable documents, 5 timeout.`,
		Example: `  reportqa compare source.xlsx dest.xlsx
  reportqa compare --output report.json --name "Daily 2024-03-01" source.xlsx dest.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SourcePath, req.DestPath = args[0], args[1]
			if req.SourceSheet == "" {
				req.SourceSheet = c.sheet
			}
			if req.DestSheet == "" {
				req.DestSheet = c.sheet
			}

			report, err := c.app.Validation.Validate(cmd.Context(), req)
			if err != nil {
				return err
			}

			if output != "" {
				if err := c.app.Writer.WriteJSON(output, report); err != nil {
					return err
				}
				c.app.Logger.InfoContext(cmd.Context(), "report written",
					slog.String("path", output),
					slog.String("run_id", report.RunID))
			} else if err := writeJSON(c.stdout, report); err != nil {
				return err
			}

			if failOnDiscrepancy && report.Summary.TotalDiscrepancies > 0 {
				return fmt.Errorf("%w: %d", errDiscrepancies, report.Summary.TotalDiscrepancies)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.ReportName, "name", "", "report name (default is the source file name)")
	flags.StringVar(&req.SourceSheet, "source-sheet", "", "worksheet of the source workbook (overrides --sheet)")
	flags.StringVar(&req.DestSheet, "dest-sheet", "", "worksheet of the destination workbook (overrides --sheet)")
	flags.StringVarP(&output, "output", "o", "", "write the report to this file instead of stdout")
	flags.BoolVar(&failOnDiscrepancy, "fail-on-discrepancy", false, "exit with status 1 when any discrepancy is found")
	return cmd
}

// structureCheck is the output of the validate command
type structureCheck struct {
	File   string                  `json:"file"`
	Valid  bool                    `json:"valid"`
	Issues []domain.StructureIssue `json:"issues"`
}

func (c *cli) newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "validate <workbook.xlsx>",
		GroupID: "core",
		Short:   "Check that a workbook has the expected sections and headers",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := c.app.Validation.CheckStructure(cmd.Context(), args[0], c.sheet)
			if err != nil {
				return err
			}
			if issues == nil {
				issues = []domain.StructureIssue{}
			}

			result := structureCheck{File: args[0], Valid: len(issues) == 0, Issues: issues}
			if err := writeJSON(c.stdout, result); err != nil {
				return err
			}
			if !result.Valid {
				return apperrors.NewValidationError(
					fmt.Sprintf("workbook structure has %d issue(s)", len(issues)), nil).
					WithContext("path", args[0])
			}
			return nil
		},
	}
}

func (c *cli) newPreviewCommand() *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:     "preview <workbook.xlsx>",
		GroupID: "inspect",
		Short:   "Show the detected sections and the first rows of a workbook",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, err := c.app.Validation.Preview(cmd.Context(), args[0], c.sheet, rows)
			if err != nil {
				return err
			}
			return writeJSON(c.stdout, preview)
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 0, "number of sample rows (default from configuration)")
	return cmd
}

// workbookDetails is the output of the info command
type workbookDetails struct {
	File     domain.FileInfo    `json:"file"`
	Workbook *grid.WorkbookInfo `json:"workbook"`
}

func (c *cli) newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "info <workbook.xlsx>",
		GroupID: "inspect",
		Short:   "Show file and workbook details",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := c.app.Validation.Files().ValidateExcelFile(path); err != nil {
				return err
			}
			info, err := grid.Inspect(path)
			if err != nil {
				return err
			}
			return writeJSON(c.stdout, workbookDetails{File: validation.Describe(path), Workbook: info})
		},
	}
}

func (c *cli) newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipApp": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, err := fmt.Fprintln(c.stdout, contracts.GetFullVersionString())
				return err
			}
			return writeJSON(c.stdout, contracts.GetVersionInfo())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print a single line")
	return cmd
}
