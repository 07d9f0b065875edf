// Package money converts between decimal currency strings and integer minor units.
//
// Every amount inside the service is an int64 count of the currency's minor unit
// (cents for a two-decimal currency). Decimal text only exists at the API edges.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitDigits is the number of fractional digits of the configured currency.
const MinorUnitDigits = 2

var ErrInvalidAmount = errors.New("invalid amount")

// Parse converts a decimal string to minor units.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Extra fractional
// digits are rounded half away from zero, so "12.345" becomes 1235.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// FromDecimal rounds d to the minor unit and returns it as an integer.
func FromDecimal(d decimal.Decimal) (int64, error) {
	scaled := d.Shift(MinorUnitDigits).Round(0)
	if !scaled.IsInteger() || scaled.BigInt().BitLen() > 62 {
		return 0, ErrInvalidAmount
	}
	return scaled.IntPart(), nil
}

// ToDecimal returns cents as a decimal value in major units.
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -MinorUnitDigits)
}

// Format renders cents with exactly MinorUnitDigits fractional digits, e.g. 1234 -> "12.34".
func Format(cents int64) string {
	return ToDecimal(cents).StringFixed(MinorUnitDigits)
}
