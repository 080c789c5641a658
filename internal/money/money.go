// Package money holds the fixed-point amount rules shared by every wallet
// mutation path: two decimal places, positive at the input boundary.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses raw user input into a positive amount quantized to two
// decimal places. The second return value is false for unparseable input and
// for any amount <= 0; such input must never reach a ledger posting.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	amount = Quantize(amount)
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// Quantize rounds to the storage precision of two decimal places.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidPositive reports whether an already-parsed amount is usable for a
// posting: strictly positive once quantized.
func ValidPositive(d decimal.Decimal) bool {
	return Quantize(d).IsPositive()
}
