// Package reward holds the per-account reward allocation ledger.
package reward

import (
	"fmt"

	"github.com/xraph/tranche/types"
)

// Category is a reward category. Each (account, category) pair owns one
// Allocation record.
type Category uint8

const (
	// CategoryReferral accrues referral rewards as a running total.
	CategoryReferral Category = iota

	// CategorySwap accrues swap cashback as a running total. Crediting
	// and claiming both require an active subscription.
	CategorySwap

	// CategoryWallet is a one-shot fixed reward: accounts are marked
	// eligible and redeem the globally configured amount exactly once.
	CategoryWallet
)

// Kind distinguishes the two allocation variants so the claim path has a
// single code path instead of duplicated logic.
type Kind uint8

const (
	// KindRunning allocations carry allocated/claimed running totals.
	KindRunning Kind = iota

	// KindOneShot allocations carry an eligibility flag and a redeemed
	// flag; the amount is a global constant.
	KindOneShot
)

func (c Category) String() string {
	switch c {
	case CategoryReferral:
		return "referral"
	case CategorySwap:
		return "swap"
	case CategoryWallet:
		return "wallet"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// ParseCategory parses the string form produced by String.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "referral":
		return CategoryReferral, nil
	case "swap":
		return CategorySwap, nil
	case "wallet":
		return CategoryWallet, nil
	default:
		return 0, fmt.Errorf("reward: unknown category %q", s)
	}
}

// Valid reports whether c is a defined category.
func (c Category) Valid() bool { return c <= CategoryWallet }

// Kind returns the allocation variant for this category.
func (c Category) Kind() Kind {
	if c == CategoryWallet {
		return KindOneShot
	}
	return KindRunning
}

// SubscriptionGated reports whether credits and claims in this category
// require an active subscription.
func (c Category) SubscriptionGated() bool { return c == CategorySwap }

// Categories lists all defined categories in declaration order.
func Categories() []Category {
	return []Category{CategoryReferral, CategorySwap, CategoryWallet}
}

// Allocation is the ledger record for one (account, category) pair.
//
// For KindRunning categories, Allocated and Claimed carry the running
// totals and Claimed never exceeds Allocated. For KindOneShot, Eligible
// and Redeemed carry the state and the amounts stay zero until
// redemption, at which point Claimed records the paid fixed reward.
type Allocation struct {
	types.Entity
	Account   types.Address `json:"account"`
	Category  Category      `json:"category"`
	Allocated types.Amount  `json:"allocated"`
	Claimed   types.Amount  `json:"claimed"`
	Eligible  bool          `json:"eligible,omitempty"`
	Redeemed  bool          `json:"redeemed,omitempty"`
}

// Pending returns the amount currently claimable from this allocation.
// oneShotReward is the globally configured fixed reward used by
// KindOneShot categories; it is ignored for running categories.
func (a *Allocation) Pending(oneShotReward types.Amount) types.Amount {
	if a == nil {
		return types.Zero()
	}

	switch a.Category.Kind() {
	case KindOneShot:
		if a.Eligible && !a.Redeemed {
			return oneShotReward
		}
		return types.Zero()
	default:
		pending := a.Allocated.Sub(a.Claimed)
		if pending.IsNegative() {
			return types.Zero()
		}
		return pending
	}
}

// Clone returns a deep copy. Amount values are immutable, so a shallow
// struct copy is sufficient.
func (a *Allocation) Clone() *Allocation {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// Totals aggregates credited and claimed amounts across a category.
// Unredeemed counts eligibility grants not yet paid out; it is always
// zero for running categories.
type Totals struct {
	Credited   types.Amount `json:"credited"`
	Claimed    types.Amount `json:"claimed"`
	Unredeemed uint64       `json:"unredeemed,omitempty"`
}
