package comparison

import (
	"math"

	"reportqa/internal/config"
	"reportqa/pkg/contracts/domain"
)

// Thresholds decide how severe a numeric mismatch is
type Thresholds struct {
	// HighValue is the absolute difference above which a mismatch is critical
	HighValue float64
	// Medium is the absolute difference above which a mismatch is high
	Medium float64
}

// ThresholdsFromConfig extracts the severity thresholds of cfg
func ThresholdsFromConfig(cfg config.ComparisonConfig) Thresholds {
	return Thresholds{HighValue: cfg.HighValueThreshold, Medium: cfg.MediumPercentageError}
}

// DetermineSeverity ranks a result from its status and difference.
func DetermineSeverity(r domain.ComparisonResult, t Thresholds) domain.Severity {
	switch {
	case r.Status == domain.StatusCalculationError:
		return domain.SeverityCritical
	case r.Status.IsMissing():
		return domain.SeverityHigh
	case r.Status == domain.StatusMismatch:
		if r.Difference == nil {
			return domain.SeverityMedium
		}
		d := math.Abs(*r.Difference)
		switch {
		case d > t.HighValue:
			return domain.SeverityCritical
		case d > t.Medium:
			return domain.SeverityHigh
		default:
			return domain.SeverityMedium
		}
	default:
		return domain.SeverityLow
	}
}
