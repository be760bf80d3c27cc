package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "reportqa/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Comparison ComparisonConfig `yaml:"comparison" envconfig:"COMPARISON"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
	Service    ServiceConfig    `yaml:"service" envconfig:"SERVICE"`
}

// ComparisonConfig holds the read-only tolerance and severity settings of a
// comparison run
type ComparisonConfig struct {
	Tolerance                   float64 `yaml:"tolerance" envconfig:"TOLERANCE" validate:"gte=0"`
	EnableStructureValidation   bool    `yaml:"enable_structure_validation" envconfig:"ENABLE_STRUCTURE_VALIDATION"`
	EnableCalculationValidation bool    `yaml:"enable_calculation_validation" envconfig:"ENABLE_CALCULATION_VALIDATION"`
	HighValueThreshold          float64 `yaml:"high_value_threshold" envconfig:"HIGH_VALUE_THRESHOLD" validate:"gt=0"`
	MediumPercentageError       float64 `yaml:"medium_percentage_error" envconfig:"MEDIUM_PERCENTAGE_ERROR" validate:"gte=0,ltefield=HighValueThreshold"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig controls the OpenTelemetry tracer and meter providers
type TelemetryConfig struct {
	TracingEnabled bool    `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// ServiceConfig contains validation service settings
type ServiceConfig struct {
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	SheetName    string        `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	PreviewRows  int           `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"gte=1"`
	BatchWorkers int           `yaml:"batch_workers" envconfig:"BATCH_WORKERS" validate:"gte=1"`
}

// Load resolves configuration from defaults, an optional YAML file and the
// environment. An empty filePath searches the default locations.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath == "" {
		filePath = getConfigFilePath()
	}
	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", filePath)
		}
	}

	// Only variables that are actually set override the file and defaults
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}

// getConfigFilePath returns the first existing default config file, or ""
func getConfigFilePath() string {
	for _, location := range configFileLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
		}
		return apperrors.NewConfigError("config validation failed", err).
			WithContext("fields", strings.Join(fields, ", "))
	}
	return nil
}

// newValidator reports field names by their YAML keys
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Comparison: DefaultComparisonConfig(),
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFilePath,
		},
		Telemetry: TelemetryConfig{
			TracingEnabled: false,
			TraceExporter:  "stdout",
			MetricsEnabled: false,
			ServiceName:    AppName,
			Environment:    "development",
			SampleRatio:    1.0,
		},
		Service: ServiceConfig{
			Timeout:      DefaultValidationTimeout,
			PreviewRows:  DefaultPreviewRows,
			BatchWorkers: DefaultBatchWorkers,
		},
	}
}

// DefaultComparisonConfig returns the comparison settings used when nothing
// is configured: 0.01 absolute tolerance, both validations enabled
func DefaultComparisonConfig() ComparisonConfig {
	return ComparisonConfig{
		Tolerance:                   DefaultTolerance,
		EnableStructureValidation:   true,
		EnableCalculationValidation: true,
		HighValueThreshold:          DefaultHighValueThreshold,
		MediumPercentageError:       DefaultMediumPercentageError,
	}
}
