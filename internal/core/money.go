// Package core holds the domain model of the ledger: entries, accounts,
// categories, money handling and the monthly summary aggregation.
package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer cents. All arithmetic happens on cents so
// totals never accumulate floating-point error; the decimal representation
// exists only at the JSON boundary.
type Money struct {
	Cents int64
}

var centsFactor = decimal.NewFromInt(100)

// ParseAmount converts a decimal string such as "12.34" or "12,34" to Money,
// rounding half-up past two decimal places. Only strictly positive amounts
// are accepted.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(normalizeDecimal(s))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(centsFactor).Round(0)
	if !cents.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

func normalizeDecimal(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ',':
			out = append(out, '.')
		case ' ', '\t':
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Cents).Div(centsFactor)
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o. The result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a plain decimal number, the shape the
// backup artifact and the summary consumers expect.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts numbers (12.34) and strings ("12.34" or "12,34"),
// applying the same comma normalization as ParseAmount.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" || s == "" {
		m.Cents = 0
		return nil
	}
	d, err := decimal.NewFromString(normalizeDecimal(s))
	if err != nil {
		return fmt.Errorf("parse money %q: %w", s, ErrInvalidAmount)
	}
	m.Cents = d.Mul(centsFactor).Round(0).IntPart()
	return nil
}
