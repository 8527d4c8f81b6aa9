// Package money implements fixed-scale decimal amounts. Every amount holds
// exactly two fractional digits; arithmetic is exact, never binary floating
// point.
package money

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/minishop/backend/pkg/apperr"
)

// Unsigned decimal with at most two fractional digits, e.g. "1299.99".
var format = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

type Money struct {
	amount decimal.Decimal
}

func Zero() Money {
	return Money{}
}

// Parse validates s against the wire format and returns the amount.
func Parse(s string) (Money, error) {
	if !format.MatchString(s) {
		return Money{}, apperr.InvalidArgument("must be a valid decimal with up to 2 decimals")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, apperr.InvalidArgument("must be a valid decimal with up to 2 decimals")
	}
	return Money{amount: d}, nil
}

// MustParse is for constants in wiring and tests; it panics on bad input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

func (m Money) MulInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n)))}
}

// Cmp returns -1, 0 or 1.
func (m Money) Cmp(o Money) int {
	return m.amount.Cmp(o.amount)
}

func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// String renders with exactly two fractional digits.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}
