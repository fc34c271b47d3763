// Package types provides common types used across Tranche.
package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Amount represents a token quantity in the asset's smallest fractional
// unit. All arithmetic is arbitrary-precision integer — no floating point.
// The zero value is a valid zero amount.
//
// Amount is immutable: every operation returns a fresh value and never
// mutates its receiver or arguments.
type Amount struct {
	v *big.Int
}

// Zero returns the zero Amount.
func Zero() Amount { return Amount{} }

// NewAmount creates an Amount from an int64 base-unit count.
func NewAmount(units int64) Amount {
	return Amount{v: big.NewInt(units)}
}

// AmountFromBig creates an Amount from a big.Int. The value is copied.
func AmountFromBig(v *big.Int) Amount {
	if v == nil {
		return Amount{}
	}
	return Amount{v: new(big.Int).Set(v)}
}

// ParseAmount parses a base-10 string into an Amount.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, fmt.Errorf("amount: parse %q: empty string", s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("amount: parse %q: not a base-10 integer", s)
	}
	return Amount{v: v}, nil
}

// MustAmount is like ParseAmount but panics on error. Use for hardcoded values.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// big returns the underlying value, treating nil as zero. Never mutate
// the result of this method.
func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// BigInt returns a copy of the underlying big.Int value.
func (a Amount) BigInt() *big.Int { return new(big.Int).Set(a.big()) }

// Arithmetic operations

// Add returns a + other.
func (a Amount) Add(other Amount) Amount {
	return Amount{v: new(big.Int).Add(a.big(), other.big())}
}

// Sub returns a - other. The result may be negative.
func (a Amount) Sub(other Amount) Amount {
	return Amount{v: new(big.Int).Sub(a.big(), other.big())}
}

// MulUint64 returns a * n.
func (a Amount) MulUint64(n uint64) Amount {
	return Amount{v: new(big.Int).Mul(a.big(), new(big.Int).SetUint64(n))}
}

// Comparison methods

// Cmp compares a and other, returning -1, 0 or +1.
func (a Amount) Cmp(other Amount) int { return a.big().Cmp(other.big()) }

// Equal reports whether a == other.
func (a Amount) Equal(other Amount) bool { return a.Cmp(other) == 0 }

// LessThan reports whether a < other.
func (a Amount) LessThan(other Amount) bool { return a.Cmp(other) < 0 }

// GreaterThan reports whether a > other.
func (a Amount) GreaterThan(other Amount) bool { return a.Cmp(other) > 0 }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool { return a.big().Sign() > 0 }

// IsNegative reports whether the amount is less than zero.
func (a Amount) IsNegative() bool { return a.big().Sign() < 0 }

// Formatting methods

// String returns the base-unit value as a base-10 string.
func (a Amount) String() string { return a.big().String() }

// Decimal returns the amount as a decimal scaled down by the asset's
// fractional digits, e.g. Decimal(18) renders wei as whole tokens.
// Intended for display and metrics, never for ledger arithmetic.
func (a Amount) Decimal(fractionalDigits int32) decimal.Decimal {
	return decimal.NewFromBigInt(a.big(), -fractionalDigits)
}

// Format renders the amount as a human-readable token string, e.g.
// Format(18) of 1500000000000000000 is "1.5".
func (a Amount) Format(fractionalDigits int32) string {
	return a.Decimal(fractionalDigits).String()
}

// MarshalJSON implements json.Marshaler. Amounts serialize as base-10
// strings so that values above 2^53 survive JSON number handling.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		if v == "" {
			*a = Amount{}
			return nil
		}
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		return a.Scan(string(v))
	case int64:
		*a = NewAmount(v)
		return nil
	default:
		return fmt.Errorf("amount: cannot scan %T into Amount", src)
	}
}

// Min returns the smaller of two Amounts.
func Min(a, b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two Amounts.
func Max(a, b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Sum calculates the sum of multiple Amounts.
func Sum(values ...Amount) Amount {
	total := new(big.Int)
	for _, v := range values {
		total.Add(total, v.big())
	}
	return Amount{v: total}
}
