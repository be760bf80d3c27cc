package config

import "time"

// Application constants
const (
	AppName = "reportqa"

	// EnvPrefix namespaces every environment variable, e.g. REPORTQA_COMPARISON_TOLERANCE
	EnvPrefix = "REPORTQA"

	// Comparison defaults
	DefaultTolerance             = 0.01
	DefaultHighValueThreshold    = 1000.0
	DefaultMediumPercentageError = 1.0

	// Service defaults
	DefaultValidationTimeout = 300 * time.Second
	DefaultPreviewRows       = 10
	DefaultBatchWorkers      = 2

	// Logging defaults
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogOutput   = "console"
	DefaultLogFilePath = "logs/reportqa.log"
)

// configFileLocations are searched in order when no explicit file is given
var configFileLocations = []string{
	"reportqa.yaml",
	"configs/reportqa.yaml",
	"../configs/reportqa.yaml",
}
