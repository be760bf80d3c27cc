package dataprocessing

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"reportqa/internal/grid"
	"reportqa/pkg/contracts/domain"
)

// NormalizeCell converts a raw grid value into the tagged value used by the
// extractor and the comparators. Native numbers become Number directly; text
// is classified by domain.ParseText. Normalizing an already normalized value's
// display text yields the same value.
func NormalizeCell(raw any) domain.Value {
	switch v := raw.(type) {
	case nil:
		return domain.Null()
	case domain.Value:
		return v
	case float64:
		return numberOrNull(v)
	case float32:
		return numberOrNull(float64(v))
	case int:
		return domain.Number(float64(v))
	case int64:
		return domain.Number(float64(v))
	case int32:
		return domain.Number(float64(v))
	case uint:
		return domain.Number(float64(v))
	case uint64:
		return domain.Number(float64(v))
	case string:
		return domain.ParseText(v)
	default:
		return domain.ParseText(grid.FormatValue(v))
	}
}

func numberOrNull(f float64) domain.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.Null()
	}
	return domain.Number(f)
}

// keywordText folds cell text for keyword matching: compatibility forms
// (full-width letters, ligatures, non-breaking spaces) are unified, then the
// text is lower-cased and trimmed.
func keywordText(s string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFKC.String(s)))
}

// containsAny reports whether text contains one of the keywords
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
