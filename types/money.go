// Package types provides common types used across Khata.
package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in the ledger's single currency.
// All arithmetic is exact; there is no floating point anywhere in the
// pipeline. The zero value is 0.00.
//
// Examples:
//   - MustParseMoney("1000.00")
//   - Cents(4999) == MustParseMoney("49.99")
//
//nolint:recvcheck // Value receivers for arithmetic, pointer receivers for Scan/UnmarshalJSON.
type Money struct {
	d decimal.Decimal
}

// Scale is the number of decimal places used when displaying Money.
const Scale = 2

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money { return Money{d: d} }

// Cents creates Money from an integer number of hundredths.
func Cents(c int64) Money { return Money{d: decimal.New(c, -Scale)} }

// Units creates Money from a whole number of currency units.
func Units(u int64) Money { return Money{d: decimal.NewFromInt(u)} }

// Zero returns 0.00.
func Zero() Money { return Money{} }

// ParseMoney parses a decimal string such as "1000", "12.5" or "4999.99".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustParseMoney is like ParseMoney but panics on error. Use for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Arithmetic operations

// Add returns m + other.
func (m Money) Add(other Money) Money { return Money{d: m.d.Add(other.d)} }

// Sub returns m - other.
func (m Money) Sub(other Money) Money { return Money{d: m.d.Sub(other.d)} }

// MulInt multiplies by an integer quantity (bags, credit multiplier).
func (m Money) MulInt(qty int64) Money { return Money{d: m.d.Mul(decimal.NewFromInt(qty))} }

// Mul multiplies by a decimal quantity such as a weight in kg.
func (m Money) Mul(qty decimal.Decimal) Money { return Money{d: m.d.Mul(qty)} }

// Negate returns -m.
func (m Money) Negate() Money { return Money{d: m.d.Neg()} }

// Comparison methods

// Cmp compares m and other: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int { return m.d.Cmp(other.d) }

// Equal reports numeric equality ("10.5" equals "10.50").
func (m Money) Equal(other Money) bool { return m.d.Equal(other.d) }

// LessThan returns true if m < other.
func (m Money) LessThan(other Money) bool { return m.d.LessThan(other.d) }

// GreaterThan returns true if m > other.
func (m Money) GreaterThan(other Money) bool { return m.d.GreaterThan(other.d) }

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.d.IsZero() }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// HasScale reports whether m has at most places digits after the decimal point.
func (m Money) HasScale(places int32) bool { return m.d.Equal(m.d.Truncate(places)) }

// Formatting methods

// String renders the amount with two decimal places, or with its full exact
// precision when it carries more (e.g. a 4-place item price).
func (m Money) String() string {
	if m.HasScale(Scale) {
		return m.d.StringFixed(Scale)
	}
	return m.d.String()
}

// MarshalJSON encodes Money as a JSON string ("2030.00") so no precision is
// lost to float decoding on the client.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both quoted strings and bare JSON numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*m = Money{}
			return nil
		}
		parsed, err := ParseMoney(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	parsed, err := ParseMoney(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer. Money is stored as its exact decimal text.
func (m Money) Value() (driver.Value, error) {
	return m.d.String(), nil
}

// Scan implements sql.Scanner for NUMERIC and TEXT columns.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Money{}
		return nil
	case string:
		return m.scanString(v)
	case []byte:
		return m.scanString(string(v))
	case int64:
		*m = Units(v)
		return nil
	case float64:
		*m = Money{d: decimal.NewFromFloat(v)}
		return nil
	default:
		return fmt.Errorf("money: cannot scan %T into Money", src)
	}
}

func (m *Money) scanString(s string) error {
	if s == "" {
		*m = Money{}
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sum adds any number of Money values. Sum() is 0.00.
func Sum(values ...Money) Money {
	total := Zero()
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
