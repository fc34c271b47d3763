package sale

import (
	"context"

	"github.com/xraph/tranche/types"
)

// Store is the persistence interface for presale purchase records.
type Store interface {
	// Get returns the purchase record for an account, or a not-found
	// error when the account never purchased.
	Get(ctx context.Context, account types.Address) (*PurchaseRecord, error)

	// Put creates or replaces a purchase record.
	Put(ctx context.Context, r *PurchaseRecord) error

	// Totals aggregates sold and claimed tokens across all accounts.
	Totals(ctx context.Context) (Totals, error)
}
