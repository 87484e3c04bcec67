// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Parsing and rendering go through
// decimal arithmetic so no float rounding leaks into stored values.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// MaxCents is the largest amount a single record may carry (10,000,000,000.00).
// Ledger sums stay far below the int64 range at this ceiling.
const MaxCents int64 = 1_000_000_000_000

var maxAmount = decimal.New(MaxCents, -2)

// ParseDecimalToCents converts a decimal string to cents with half-up rounding.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Zero is a valid
// amount; negative values, signs, exponents and anything else that is not a
// plain decimal number are rejected with ErrInvalidAmount. Amounts above
// MaxCents are rejected with ErrAmountTooLarge.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
//	ParseDecimalToCents("0")      -> 0, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	// decimal accepts signs and exponents; a till amount is digits and one dot.
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	if strings.Count(s, ".") > 1 || s == "." {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	d = d.Round(2)
	if d.GreaterThan(maxAmount) {
		return 0, ErrAmountTooLarge
	}
	return d.Shift(2).IntPart(), nil
}

// ParseMoney is ParseDecimalToCents returning Money.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxCents {
		return ErrAmountTooLarge
	}
	return nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two fraction digits, e.g. "25.50" or "-3.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float64 returns the major-unit value for spreadsheet cells.
// Use Cents for arithmetic.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// Add returns m+n, or ErrAmountOverflow when the sum leaves the int64 range.
func (m Money) Add(n Money) (Money, error) {
	if (n.Cents > 0 && m.Cents > math.MaxInt64-n.Cents) ||
		(n.Cents < 0 && m.Cents < math.MinInt64-n.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: m.Cents + n.Cents}, nil
}

// Sub returns m-n, or ErrAmountOverflow when the difference leaves the int64 range.
func (m Money) Sub(n Money) (Money, error) {
	if (n.Cents < 0 && m.Cents > math.MaxInt64+n.Cents) ||
		(n.Cents > 0 && m.Cents < math.MinInt64+n.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: m.Cents - n.Cents}, nil
}
