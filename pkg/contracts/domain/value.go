package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the normalized form of a cell value.
type ValueKind int

const (
	// KindNull is an empty or missing cell.
	KindNull ValueKind = iota
	// KindNumber is a plain numeric value.
	KindNumber
	// KindPercent is a percentage such as "12.5%"; Num holds the magnitude.
	KindPercent
	// KindNegativeParen is an accounting negative such as "(250)"; Num holds the magnitude.
	KindNegativeParen
	// KindText is any other non-empty text.
	KindText
)

// String returns the kind name used in logs and diagnostics.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindPercent:
		return "percent"
	case KindNegativeParen:
		return "negative_paren"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is a normalized cell value. The zero Value is Null.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

// Null returns the empty value.
func Null() Value { return Value{} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Percent returns a percent-tagged value of the given magnitude.
func Percent(f float64) Value { return Value{Kind: KindPercent, Num: f} }

// NegativeParen returns a parenthesis-negative value of the given magnitude.
func NegativeParen(f float64) Value { return Value{Kind: KindNegativeParen, Num: f} }

// Text returns a plain text value. Empty text after trimming is Null.
func Text(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null()
	}
	return Value{Kind: KindText, Text: s}
}

// IsNull reports whether v is empty.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsNumber reports whether v is a plain number. Percent and parenthesis
// values are text in the source sheet and do not count.
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// Float coerces v to a number. Percent yields its magnitude, a parenthesis
// value yields the negated magnitude and text is parsed after dropping
// thousands separators. Null and unparsable text report false.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber, KindPercent:
		return v.Num, true
	case KindNegativeParen:
		return -v.Num, true
	case KindText:
		return ParseFloat(strings.ReplaceAll(v.Text, ",", ""))
	default:
		return 0, false
	}
}

// String renders v the way it is displayed in reports.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindPercent:
		return formatNumber(v.Num) + "%"
	case KindNegativeParen:
		return "(" + formatNumber(v.Num) + ")"
	case KindText:
		return v.Text
	default:
		return ""
	}
}

// Equal reports whether two values are identical in kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindText:
		return v.Text == o.Text
	default:
		return v.Num == o.Num
	}
}

// MarshalJSON encodes numbers as JSON numbers, null as null and everything
// else as its display string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		return json.Marshal(v.Num)
	default:
		return json.Marshal(v.String())
	}
}

// UnmarshalJSON is the inverse of MarshalJSON. Strings are re-tagged so a
// serialized "12.5%" comes back as a percent value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Null()
	case float64:
		*v = Number(t)
	case string:
		*v = ParseText(t)
	default:
		*v = Text(string(data))
	}
	return nil
}

// ParseText classifies trimmed cell text. Numbers with thousands separators
// become Number, a trailing % becomes Percent, a parenthesised number becomes
// NegativeParen and anything else stays Text.
func ParseText(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null()
	}

	if f, ok := ParseFloat(strings.ReplaceAll(s, ",", "")); ok {
		return Number(f)
	}

	if strings.HasSuffix(s, "%") {
		if f, ok := ParseFloat(strings.ReplaceAll(s[:len(s)-1], ",", "")); ok {
			return Percent(f)
		}
		return Text(s)
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		if f, ok := ParseFloat(strings.ReplaceAll(s[1:len(s)-1], ",", "")); ok {
			return NegativeParen(f)
		}
	}

	return Text(s)
}

// ParseFloat parses a finite decimal number. Infinity and NaN spellings are
// rejected so they never leak into arithmetic or JSON output.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
