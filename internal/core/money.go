// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed into the
// expense form and for rendering cents back as currency text.
package core

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern accepts whole units with at most two decimal places.
var amountPattern = regexp.MustCompile(`^\d+(\.\d{0,2})?$`)

// IsAmountInput reports whether s is acceptable as (partial) amount input.
// The empty string is accepted so the field can be cleared.
func IsAmountInput(s string) bool {
	return s == "" || amountPattern.MatchString(s)
}

// ParseAmount converts a decimal string to cents.
//
// Only non-negative values with up to two decimal places are accepted:
//
//	ParseAmount("23.50") -> 2350, nil
//	ParseAmount("23.")   -> 2300, nil
//	ParseAmount("13.555") -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || !amountPattern.MatchString(s) {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2)
	if !cents.IsInteger() || cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// maxCents is the largest amount that fits in Money.Cents.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// FormatAmount renders cents as "$1,234.56".
func FormatAmount(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	fixed := decimal.New(cents, -2).StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// Input renders cents the way the amount field shows them ("23.50").
func (m Money) Input() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

func (m Money) String() string {
	return FormatAmount(m.Cents)
}
