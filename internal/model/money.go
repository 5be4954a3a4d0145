package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (paise, cents).
type Money int64

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders the amount with two decimal places, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Times returns m × n. ok is false when the product does not fit in Money.
func (m Money) Times(n int) (Money, bool) {
	if m == 0 || n == 0 {
		return 0, true
	}
	r := m * Money(n)
	if r/Money(n) != m || (m == -1 && int64(n) == math.MinInt64) || (n == -1 && m == math.MinInt64) {
		return 0, false
	}
	return r, true
}

// Plus returns m + o. ok is false when the sum does not fit in Money.
func (m Money) Plus(o Money) (Money, bool) {
	r := m + o
	if (o > 0 && r < m) || (o < 0 && r > m) {
		return 0, false
	}
	return r, true
}

// MoneyPtr is a convenience for optional money fields.
func MoneyPtr(m Money) *Money {
	return &m
}
