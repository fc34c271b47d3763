// Package sale implements the presale ledger: lot purchases, the global
// sale terms, the launch timers and the vesting unlock schedule.
package sale

import (
	"errors"
	"time"

	"github.com/xraph/tranche/types"
)

// Terms are the fixed sale parameters. TotalLots and TokenCap bound the
// same issuance from two directions; both are checked on every purchase
// even though they are derived from the same constants, because
// decoupling them later must not silently change behavior.
type Terms struct {
	// TotalLots is the number of lots available for sale.
	TotalLots uint64 `json:"total_lots"`

	// TokensPerLot is the token amount one lot buys, already scaled to
	// the asset's fractional unit.
	TokensPerLot types.Amount `json:"tokens_per_lot"`

	// LotPrice is the payment-asset cost of one lot.
	LotPrice types.Amount `json:"lot_price"`

	// TokenCap bounds total token issuance. Normally equals
	// TotalLots * TokensPerLot.
	TokenCap types.Amount `json:"token_cap"`
}

// Validate checks the terms are internally usable.
func (t Terms) Validate() error {
	switch {
	case t.TotalLots == 0:
		return errors.New("sale: terms: total lots must be positive")
	case !t.TokensPerLot.IsPositive():
		return errors.New("sale: terms: tokens per lot must be positive")
	case !t.LotPrice.IsPositive():
		return errors.New("sale: terms: lot price must be positive")
	case !t.TokenCap.IsPositive():
		return errors.New("sale: terms: token cap must be positive")
	}
	return nil
}

// Cost returns the payment-asset cost of buying lots.
func (t Terms) Cost(lots uint64) types.Amount {
	return t.LotPrice.MulUint64(lots)
}

// Tokens returns the token amount bought by lots.
func (t Terms) Tokens(lots uint64) types.Amount {
	return t.TokensPerLot.MulUint64(lots)
}

// PurchaseRecord is the per-account presale position. TotalTokens only
// grows (via purchases) and ClaimedTokens only grows (via claims), with
// ClaimedTokens never exceeding TotalTokens.
type PurchaseRecord struct {
	types.Entity
	Account       types.Address `json:"account"`
	Lots          uint64        `json:"lots"`
	TotalTokens   types.Amount  `json:"total_tokens"`
	ClaimedTokens types.Amount  `json:"claimed_tokens"`
}

// Clone returns a deep copy.
func (r *PurchaseRecord) Clone() *PurchaseRecord {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// LaunchParams are the global vesting timers. Scheduled flips true
// exactly once; afterwards LaunchAt may only be pushed further into the
// future, and only while the current LaunchAt has not yet passed.
type LaunchParams struct {
	LaunchAt      time.Time `json:"launch_at"`
	ClaimEnableAt time.Time `json:"claim_enable_at"`
	Scheduled     bool      `json:"scheduled"`
}

// ClaimsOpen reports whether vested-token claims are accepted at now.
func (p LaunchParams) ClaimsOpen(now time.Time) bool {
	return p.Scheduled && !now.Before(p.ClaimEnableAt)
}

// Totals aggregates the presale ledger across all accounts.
type Totals struct {
	TokensSold    types.Amount `json:"tokens_sold"`
	TokensClaimed types.Amount `json:"tokens_claimed"`
}
