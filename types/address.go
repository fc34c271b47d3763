package types

import "strings"

// Address identifies an account. It is treated as an opaque identifier:
// Tranche never interprets the contents beyond zero-checking, so any
// fixed-width address scheme of the surrounding system works.
type Address string

// ZeroAddress is the null account. Operations reject it everywhere an
// account is expected.
const ZeroAddress Address = ""

// evmZero is the all-zeroes form some asset services use for "no account".
const evmZero = "0x0000000000000000000000000000000000000000"

// IsZero reports whether the address is the null account.
func (a Address) IsZero() bool {
	return a == ZeroAddress || strings.EqualFold(string(a), evmZero)
}

// String returns the address as a plain string.
func (a Address) String() string { return string(a) }
