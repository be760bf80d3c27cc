package comparison

import (
	"github.com/shopspring/decimal"

	"reportqa/internal/config"
	"reportqa/pkg/contracts/domain"
)

// DefaultTolerance is the absolute difference up to which two numbers match
const DefaultTolerance = config.DefaultTolerance

// NumericalComparator compares cell values as numbers when both sides can be
// coerced, and as display strings otherwise.
type NumericalComparator struct {
	tolerance decimal.Decimal
}

// NewNumericalComparator returns a comparator with the given tolerance.
// A negative tolerance is treated as zero.
func NewNumericalComparator(tolerance float64) NumericalComparator {
	t := decimal.NewFromFloat(tolerance)
	if t.IsNegative() {
		t = decimal.Zero
	}
	return NumericalComparator{tolerance: t}
}

// Tolerance returns the configured tolerance
func (n NumericalComparator) Tolerance() decimal.Decimal {
	return n.tolerance
}

// Compare reports whether a and b match. When both coerce to numbers the
// difference a-b is returned; otherwise the display strings are compared
// and the difference is nil.
func (n NumericalComparator) Compare(a, b domain.Value) (bool, *float64) {
	af, aok := a.Float()
	bf, bok := b.Float()
	if !aok || !bok {
		return a.String() == b.String(), nil
	}

	diff := decimal.NewFromFloat(af).Sub(decimal.NewFromFloat(bf))
	d := diff.InexactFloat64()
	return n.Within(diff), &d
}

// Within reports whether |diff| is inside the tolerance
func (n NumericalComparator) Within(diff decimal.Decimal) bool {
	return diff.Abs().LessThanOrEqual(n.tolerance)
}

// ToDecimal coerces v for arithmetic. Null and non-numeric text report false.
func ToDecimal(v domain.Value) (decimal.Decimal, bool) {
	f, ok := v.Float()
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
