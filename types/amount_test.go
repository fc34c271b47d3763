package types

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestAmountConstructors(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   string
	}{
		{"Zero", Zero(), "0"},
		{"NewAmount", NewAmount(4900), "4900"},
		{"NewAmountNegative", NewAmount(-12), "-12"},
		{"FromBig", AmountFromBig(big.NewInt(1_000_000)), "1000000"},
		{"FromBigNil", AmountFromBig(nil), "0"},
		{"MustAmount", MustAmount("1000000000000000000000000"), "1000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.String(); got != tt.want {
				t.Errorf("String: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	if _, err := ParseAmount(""); err == nil {
		t.Error("expected error for empty string")
	}
	if _, err := ParseAmount("12.5"); err == nil {
		t.Error("expected error for non-integer")
	}
	a, err := ParseAmount("340282366920938463463374607431768211456") // 2^128
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.String() != "340282366920938463463374607431768211456" {
		t.Errorf("round trip mismatch: %s", a.String())
	}
}

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   func() Amount
		want string
	}{
		{"Add", func() Amount { return NewAmount(100).Add(NewAmount(200)) }, "300"},
		{"Sub", func() Amount { return NewAmount(500).Sub(NewAmount(200)) }, "300"},
		{"SubNegative", func() Amount { return NewAmount(100).Sub(NewAmount(200)) }, "-100"},
		{"MulUint64", func() Amount { return NewAmount(100).MulUint64(3) }, "300"},
		{"Sum", func() Amount { return Sum(NewAmount(1), NewAmount(2), NewAmount(3)) }, "6"},
		{"SumEmpty", func() Amount { return Sum() }, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op().String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAmountImmutability(t *testing.T) {
	a := NewAmount(100)
	_ = a.Add(NewAmount(50))
	_ = a.MulUint64(7)
	if a.String() != "100" {
		t.Errorf("receiver mutated: %s", a.String())
	}

	src := big.NewInt(42)
	b := AmountFromBig(src)
	src.SetInt64(99)
	if b.String() != "42" {
		t.Errorf("aliased source big.Int: %s", b.String())
	}
}

func TestAmountComparison(t *testing.T) {
	a, b := NewAmount(100), NewAmount(200)

	if !a.LessThan(b) || b.LessThan(a) {
		t.Error("LessThan")
	}
	if !b.GreaterThan(a) || a.GreaterThan(b) {
		t.Error("GreaterThan")
	}
	if !a.Equal(NewAmount(100)) {
		t.Error("Equal")
	}
	if !Zero().IsZero() || !a.IsPositive() || !NewAmount(-1).IsNegative() {
		t.Error("sign predicates")
	}
	if Min(a, b) != a || Max(a, b) != b {
		// Min/Max return one of the inputs unchanged, so direct
		// comparison of the struct values is valid here.
		t.Error("Min/Max")
	}
}

func TestAmountFormatting(t *testing.T) {
	a := MustAmount("1500000000000000000") // 1.5 tokens at 18 decimals

	if got := a.Format(18); got != "1.5" {
		t.Errorf("Format(18): got %s", got)
	}
	if got := a.Format(0); got != "1500000000000000000" {
		t.Errorf("Format(0): got %s", got)
	}
	if got := a.Decimal(18).String(); got != "1.5" {
		t.Errorf("Decimal(18): got %s", got)
	}
}

func TestAmountJSON(t *testing.T) {
	a := MustAmount("123456789012345678901234567890")

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"123456789012345678901234567890"` {
		t.Errorf("marshal: got %s", data)
	}

	var back Amount
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(a) {
		t.Errorf("round trip: got %s", back.String())
	}
}

func TestAmountScan(t *testing.T) {
	var a Amount

	if err := a.Scan("12345"); err != nil || a.String() != "12345" {
		t.Errorf("scan string: %v %s", err, a.String())
	}
	if err := a.Scan([]byte("678")); err != nil || a.String() != "678" {
		t.Errorf("scan bytes: %v %s", err, a.String())
	}
	if err := a.Scan(int64(42)); err != nil || a.String() != "42" {
		t.Errorf("scan int64: %v %s", err, a.String())
	}
	if err := a.Scan(nil); err != nil || !a.IsZero() {
		t.Errorf("scan nil: %v %s", err, a.String())
	}
	if err := a.Scan(3.14); err == nil {
		t.Error("expected error scanning float64")
	}
}

func TestAddressIsZero(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want bool
	}{
		{"Empty", ZeroAddress, true},
		{"EVMZero", Address("0x0000000000000000000000000000000000000000"), true},
		{"EVMZeroUpper", Address("0X0000000000000000000000000000000000000000"), true},
		{"Real", Address("0xab5801a7d398351b8be11c439e05c5b3259aec9b"), false},
		{"Opaque", Address("acct-7f3d"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.IsZero(); got != tt.want {
				t.Errorf("IsZero: got %v, want %v", got, tt.want)
			}
		})
	}
}
