package calculator

import "github.com/shopspring/decimal"

// Places is the number of fractional digits kept for every amount.
const Places int32 = 2

// Epsilon is the smallest amount treated as non-zero (0.01 currency units).
var Epsilon = decimal.New(1, -Places)

// FromFloat converts a host float amount to a fixed-point decimal rounded to
// Places. Binary float noise (e.g. 0.1+0.2) disappears here.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(Places)
}

// isZero reports whether d is below Epsilon in magnitude.
func isZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(Epsilon)
}
