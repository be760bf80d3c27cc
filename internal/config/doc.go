// Package config provides configuration management for reportqa.
//
// # Configuration Sources
//
// Configuration is resolved from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern REPORTQA_<SECTION>_<FIELD>:
//
//	REPORTQA_COMPARISON_TOLERANCE=0.01
//	REPORTQA_COMPARISON_ENABLE_CALCULATION_VALIDATION=false
//	REPORTQA_LOGGING_LEVEL=debug
//	REPORTQA_SERVICE_TIMEOUT=2m
//
// # Validation
//
// The resolved configuration is checked with validator struct tags. Invalid
// values are reported as CONFIG errors naming the offending YAML key.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use config.Default() which needs no environment or files.
package config
