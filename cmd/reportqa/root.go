package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"reportqa/internal/app"
	apperrors "reportqa/internal/errors"
	"reportqa/pkg/contracts"
)

const shutdownTimeout = 5 * time.Second

// cli carries the parsed global flags and the application built from them
type cli struct {
	opts   app.Options
	sheet  string
	stdout io.Writer
	stderr io.Writer
	app    *app.Application
}

// run executes one command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	c.opts.Stderr = stderr

	root := c.newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	// The signal context may already be cancelled
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := c.app.Shutdown(shutdownCtx); shutdownErr != nil {
		fmt.Fprintf(stderr, "shutdown: %v\n", shutdownErr)
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	return 0
}

func (c *cli) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "reportqa",
		Short: "Reconcile daily sales workbooks",
		Long: `reportqa compares a source and a destination daily sales workbook.

Both workbooks are split into their Baqala (BQ), National Accounts (NA) and
Combined sections. Records are matched by region, supervisor and area, and
every numeric field is compared within the configured tolerance. Itemized
sections are also checked against the combined total.

Results are written to stdout as JSON; logs go to stderr.`,
		Version:           contracts.Version,
		PersistentPreRunE: c.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "inspect", Title: "Inspection Commands:"},
	)

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.ConfigFile, "config", "", "config file (default is ./reportqa.yaml or configs/reportqa.yaml)")
	flags.StringSliceVar(&c.opts.EnvFiles, "env-file", nil, "env files to load (default .env and .env.local when present)")
	flags.StringVar(&c.opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&c.sheet, "sheet", "", "worksheet to read (default is the configured or active sheet)")

	root.SetVersionTemplate("reportqa {{.Version}}\n")

	root.AddCommand(
		c.newCompareCommand(),
		c.newCompareDirCommand(),
		c.newValidateCommand(),
		c.newPreviewCommand(),
		c.newInfoCommand(),
		c.newVersionCommand(),
	)
	return root
}

// setup builds the application once flags are parsed
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations["skipApp"] == "true" {
		return nil
	}
	application, err := app.NewApplication(c.opts)
	if err != nil {
		return err
	}
	c.app = application
	return nil
}
