package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"reportqa/internal/config"
	"reportqa/internal/dataprocessing"
	apperrors "reportqa/internal/errors"
	"reportqa/internal/files"
	"reportqa/internal/infrastructure"
	"reportqa/internal/services"
	"reportqa/pkg/contracts"
)

// DefaultEnvFiles are loaded, when present, before the configuration is read.
// Variables already set in the environment are not overridden.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Options control how an Application is assembled
type Options struct {
	// ConfigFile is an explicit YAML file; empty searches the default locations
	ConfigFile string
	// EnvFiles replace DefaultEnvFiles when set. Explicit files must exist.
	EnvFiles []string
	// LogLevel overrides the configured level when set
	LogLevel string
	// Stderr receives logs and trace output; nil means os.Stderr
	Stderr io.Writer
}

// Application represents the wired command line application
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ValidationMetrics
	Parser        *dataprocessing.Parser
	Validation    *services.ValidationService
	Discovery     *files.Discovery
	Writer        *files.Writer
}

// NewApplication loads the environment and configuration, then builds the
// logger, telemetry providers and services.
func NewApplication(opts Options) (*Application, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, stderr)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize logger", err)
	}

	logger.Debug("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	otelCfg := infrastructure.NewOTelConfig(cfg.Telemetry)
	otelCfg.TraceWriter = stderr
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize OpenTelemetry", err)
	}

	metrics, err := infrastructure.CreateValidationMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create validation metrics: %w", err)
	}

	parser := dataprocessing.NewParser(logger)
	validationService := services.NewValidationServiceWithLogger(cfg, logger,
		services.WithParser(parser),
		services.WithMetrics(metrics))

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		Parser:        parser,
		Validation:    validationService,
		Discovery:     files.NewDiscovery(logger),
		Writer:        files.NewWriter(validationService.Files(), logger),
	}
	return app, nil
}

// Shutdown logs the collected metrics, flushes telemetry and closes the log
// file. It is safe to call on a partially built application.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil || a.OTelProviders == nil {
		return nil
	}

	var errs []error
	if totals, err := a.OTelProviders.CollectMetrics(ctx); err != nil {
		errs = append(errs, err)
	} else if len(totals) > 0 {
		a.Logger.InfoContext(ctx, "validation metrics", metricAttrs(totals)...)
	}

	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

func metricAttrs(totals map[string]float64) []any {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make([]any, 0, len(names))
	for _, name := range names {
		attrs = append(attrs, slog.Float64(name, totals[name]))
	}
	return attrs
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		for _, f := range DefaultEnvFiles {
			// Missing default files are fine
			_ = godotenv.Load(f)
		}
		return nil
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			return apperrors.NewConfigError(fmt.Sprintf("failed to load env file %s", f), err)
		}
	}
	return nil
}
