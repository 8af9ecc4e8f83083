// Package money holds the rounding and summing rules for monetary amounts.
//
// Amounts carry two fractional digits. Rounding is half-up (half away from zero)
// and is applied once per computed line; totals are sums of rounded lines.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const Places = 2

var ErrInvalidAmount = errors.New("invalid amount")

var (
	Zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Sum rounds each value before adding it.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(Round(v))
	}
	return total
}

func Validate(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d.String())
	}
	return nil
}

func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d, nil
}

func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Cents returns the rounded amount as an integer number of cents.
func Cents(d decimal.Decimal) int64 {
	return Round(d).Mul(hundred).IntPart()
}
