// Package core provides amount parsing and formatting utilities.
//
// Amounts are whole rupiah held in decimal.Decimal. User input accepts the
// usual chat shorthand: "10k" and "10rb" for thousands, "1jt" for millions,
// and "50.000" or "50,000" with grouping punctuation.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// MaxAmount is the largest single amount accepted. Ledger sums of up to
// about 9,000 maximal rows still fit an int64 column total.
var MaxAmount = decimal.NewFromInt(1_000_000_000_000_000)

// ParseAmount converts shorthand text into an amount.
//
// Suffixes are matched exactly: "k" or "rb" multiply by 1,000 and "jt" by
// 1,000,000. Dots and commas are grouping separators and are stripped, so
// fractional amounts cannot be expressed.
//
// Examples:
//
//	ParseAmount("10k")    -> 10000
//	ParseAmount("1jt")    -> 1000000
//	ParseAmount("50.000") -> 50000
//	ParseAmount("abc")    -> ErrInvalidFormat
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	multiplier := decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(s, "k"):
		multiplier = thousand
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "rb"):
		multiplier = thousand
		s = strings.TrimSuffix(s, "rb")
	case strings.HasSuffix(s, "jt"):
		multiplier = million
		s = strings.TrimSuffix(s, "jt")
	}

	s = strings.NewReplacer(",", "", ".", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
		}
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	return v.Mul(multiplier), nil
}

// ValidateAmount rejects amounts that are not positive or do not fit the ledger.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidValue)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %w", ErrInvalidValue, ErrAmountTooLarge)
	}
	return nil
}

// FormatRupiah renders an amount as "Rp 1.250.000". Negative amounts keep their sign.
func FormatRupiah(amount decimal.Decimal) string {
	digits := amount.Abs().Round(0).String()

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if amount.IsNegative() && !amount.Round(0).IsZero() {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
