package reward

import (
	"context"

	"github.com/xraph/tranche/types"
)

// Store is the persistence interface for allocation records.
type Store interface {
	// Get returns the allocation for (account, category), or a
	// not-found error when none has been created yet.
	Get(ctx context.Context, account types.Address, category Category) (*Allocation, error)

	// Put creates or replaces an allocation record.
	Put(ctx context.Context, a *Allocation) error

	// PutBatch atomically creates or replaces a set of allocation
	// records: either every record is applied or none is.
	PutBatch(ctx context.Context, allocations []*Allocation) error

	// List returns all allocation records for an account.
	List(ctx context.Context, account types.Address) ([]*Allocation, error)

	// Totals aggregates credited and claimed amounts for a category.
	Totals(ctx context.Context, category Category) (Totals, error)
}
