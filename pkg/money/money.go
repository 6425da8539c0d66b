// Package money provides the decimal value type used for every monetary amount.
//
// Invariants:
//   - Amounts are kept at two fractional digits (cents).
//   - Storage uses the smallest unit (int64 cents) so database arithmetic is exact.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for every amount.
const Scale int32 = 2

var (
	// ErrInvalidAmount is returned when a string cannot be parsed as an amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNegativeAmount is returned when an amount must not be negative.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrAmountExceedsMaxSafeInt is returned when an amount does not fit in int64 cents.
	ErrAmountExceedsMaxSafeInt = errors.New("amount exceeds maximum safe integer value")

	minorFactor = decimal.New(1, Scale)
	maxMinor    = decimal.NewFromInt(1<<62 - 1)
)

// Zero is the zero amount.
var Zero = decimal.Zero

// Round rounds an amount half away from zero to two fractional digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// ToMinor converts an amount to int64 cents.
func ToMinor(d decimal.Decimal) (int64, error) {
	m := Round(d).Mul(minorFactor)
	if m.Abs().GreaterThan(maxMinor) {
		return 0, ErrAmountExceedsMaxSafeInt
	}
	return m.IntPart(), nil
}

// MustMinor is ToMinor for amounts already validated by the caller.
func MustMinor(d decimal.Decimal) int64 {
	m, err := ToMinor(d)
	if err != nil {
		panic(err)
	}
	return m
}

// FromMinor converts int64 cents to an amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// FromFloat converts a float to an amount rounded to cents.
func FromFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// Parse parses a human entered amount such as "1,250.50" or "-20".
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return Round(d), nil
}

// ParseOrZero parses s and returns zero for empty or malformed input.
func ParseOrZero(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NonNegative returns ErrNegativeAmount when d is below zero.
func NonNegative(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// String formats an amount with exactly two fractional digits.
func String(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
