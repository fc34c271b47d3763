package tranche

import (
	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/types"
)

// Re-export common types for convenience so users don't have to import
// the sub-packages for everyday calls.

// Amount is re-exported from the types package.
type Amount = types.Amount

// Address is re-exported from the types package.
type Address = types.Address

// Category is re-exported from the reward package.
type Category = reward.Category

// Reward categories.
const (
	CategoryReferral = reward.CategoryReferral
	CategorySwap     = reward.CategorySwap
	CategoryWallet   = reward.CategoryWallet
)

// Re-export Amount constructors.
var (
	Zero          = types.Zero
	NewAmount     = types.NewAmount
	ParseAmount   = types.ParseAmount
	MustAmount    = types.MustAmount
	AmountFromBig = types.AmountFromBig
)

// ZeroAddress is re-exported from the types package.
const ZeroAddress = types.ZeroAddress
