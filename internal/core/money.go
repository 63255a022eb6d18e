// Package core defines the ledger domain model.
//
// All monetary values are fixed-point integer cents. The ledger never does
// floating-point arithmetic on money; float64 appears only at the display
// boundary.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer cents.
type Money struct {
	Cents int64
}

var centsFactor = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to positive Money with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) separators. Zero, negative, and malformed input return
// ErrInvalidAmount.
func ParseAmount(s string) (Money, error) {
	m, err := parseCents(s)
	if err != nil {
		return Money{}, err
	}
	if m.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseSignedAmount is ParseAmount without the positivity requirement.
// Balance adjustments legitimately target negative or zero values.
func ParseSignedAmount(s string) (Money, error) {
	return parseCents(s)
}

func parseCents(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Mul(centsFactor).Round(0).IntPart()}, nil
}

// Add returns m+other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m-other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Units returns the major-unit value as a float64 for display purposes.
// Use cents for every calculation.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals, e.g. "1234.50".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}
