// Package asset defines the boundary to external fungible-asset services.
//
// Tranche never implements token bookkeeping itself: minting, burning,
// balances and transfers live in an external service (an on-chain token
// contract, a custodial ledger, a test double). The engine only consumes
// this interface, always after its own state is committed.
//
// Implementations may invoke arbitrary counter-logic before a transfer
// call returns. They must propagate the provided context into any
// callback they make: the engine's reentrancy guard travels in the
// context, and dropping it converts a rejected reentrant call into a
// deadlock.
package asset

import (
	"context"

	"github.com/xraph/tranche/types"
)

// Service is the external fungible-asset boundary.
type Service interface {
	// BalanceOf reports the balance held by an account.
	BalanceOf(ctx context.Context, holder types.Address) (types.Amount, error)

	// Transfer moves amount from the service's bound authority (the
	// custody account, for Tranche's purposes) to another account.
	// A nil error means the transfer fully succeeded.
	Transfer(ctx context.Context, to types.Address, amount types.Amount) error

	// TransferFrom moves amount between two accounts using a prior
	// approval granted to the bound authority. Used to pull payment
	// for subscriptions and lot purchases.
	TransferFrom(ctx context.Context, from, to types.Address, amount types.Amount) error
}
