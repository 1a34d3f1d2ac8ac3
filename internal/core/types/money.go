// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
//
// All stored amounts are kept at 2 decimal places; Round2 must be applied
// after every arithmetic step that can produce extra precision.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds to 2 decimal places, half away from zero.
// Matches NUMERIC(15,2) storage semantics.
func Round2(m Money) Money {
	return m.Round(2)
}

// Min2 returns the smaller of a and b, rounded to 2 decimals.
func Min2(a, b Money) Money {
	if a.LessThan(b) {
		return Round2(a)
	}
	return Round2(b)
}
