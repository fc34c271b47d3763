package subscription

import (
	"context"

	"github.com/xraph/tranche/types"
)

// Store is the persistence interface for subscription records.
type Store interface {
	// Get returns the subscription for an account, or a not-found
	// error when the account never subscribed.
	Get(ctx context.Context, account types.Address) (*Subscription, error)

	// Put creates or replaces a subscription record.
	Put(ctx context.Context, s *Subscription) error
}
