// Package store defines the unified persistence interface consumed by
// the engine, plus the global parameter block that rides alongside the
// per-account records.
package store

import (
	"context"

	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/sale"
	"github.com/xraph/tranche/subscription"
	"github.com/xraph/tranche/types"
)

// Params is the single global parameter block. It is loaded once at
// startup and rewritten whenever an admin operation changes a global.
type Params struct {
	// Subscription holds the current fee and duration. Zero-valued
	// until the owner configures them.
	Subscription subscription.Terms `json:"subscription"`

	// WalletReward is the fixed one-shot reward paid to eligible
	// wallet-category accounts.
	WalletReward types.Amount `json:"wallet_reward"`

	// Launch holds the distribution launch schedule, if one has been
	// set.
	Launch sale.LaunchParams `json:"launch"`

	// LotsSold is the number of presale lots sold so far.
	LotsSold uint64 `json:"lots_sold"`

	// Paused reports whether fund-moving operations are suspended.
	Paused bool `json:"paused"`
}

// Clone returns a deep copy of the parameter block.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// Store is the unified storage interface for all engine entities.
// Instead of embedding the sub-interfaces, we explicitly declare all
// methods to avoid naming conflicts.
type Store interface {
	// Allocation methods
	GetAllocation(ctx context.Context, account types.Address, category reward.Category) (*reward.Allocation, error)
	PutAllocation(ctx context.Context, a *reward.Allocation) error
	PutAllocations(ctx context.Context, allocations []*reward.Allocation) error
	ListAllocations(ctx context.Context, account types.Address) ([]*reward.Allocation, error)
	RewardTotals(ctx context.Context, category reward.Category) (reward.Totals, error)

	// Subscription methods
	GetSubscription(ctx context.Context, account types.Address) (*subscription.Subscription, error)
	PutSubscription(ctx context.Context, s *subscription.Subscription) error

	// Purchase methods
	GetPurchase(ctx context.Context, account types.Address) (*sale.PurchaseRecord, error)
	PutPurchase(ctx context.Context, r *sale.PurchaseRecord) error
	PurchaseTotals(ctx context.Context) (sale.Totals, error)

	// Global parameter methods
	GetParams(ctx context.Context) (*Params, error)
	PutParams(ctx context.Context, p *Params) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Allocations adapts a Store to the reward.Store sub-interface.
func Allocations(s Store) reward.Store { return allocationStore{s} }

type allocationStore struct{ s Store }

func (a allocationStore) Get(ctx context.Context, account types.Address, category reward.Category) (*reward.Allocation, error) {
	return a.s.GetAllocation(ctx, account, category)
}

func (a allocationStore) Put(ctx context.Context, rec *reward.Allocation) error {
	return a.s.PutAllocation(ctx, rec)
}

func (a allocationStore) PutBatch(ctx context.Context, recs []*reward.Allocation) error {
	return a.s.PutAllocations(ctx, recs)
}

func (a allocationStore) List(ctx context.Context, account types.Address) ([]*reward.Allocation, error) {
	return a.s.ListAllocations(ctx, account)
}

func (a allocationStore) Totals(ctx context.Context, category reward.Category) (reward.Totals, error) {
	return a.s.RewardTotals(ctx, category)
}

// Subscriptions adapts a Store to the subscription.Store sub-interface.
func Subscriptions(s Store) subscription.Store { return subscriptionStore{s} }

type subscriptionStore struct{ s Store }

func (a subscriptionStore) Get(ctx context.Context, account types.Address) (*subscription.Subscription, error) {
	return a.s.GetSubscription(ctx, account)
}

func (a subscriptionStore) Put(ctx context.Context, sub *subscription.Subscription) error {
	return a.s.PutSubscription(ctx, sub)
}

// Purchases adapts a Store to the sale.Store sub-interface.
func Purchases(s Store) sale.Store { return purchaseStore{s} }

type purchaseStore struct{ s Store }

func (a purchaseStore) Get(ctx context.Context, account types.Address) (*sale.PurchaseRecord, error) {
	return a.s.GetPurchase(ctx, account)
}

func (a purchaseStore) Put(ctx context.Context, rec *sale.PurchaseRecord) error {
	return a.s.PutPurchase(ctx, rec)
}

func (a purchaseStore) Totals(ctx context.Context) (sale.Totals, error) {
	return a.s.PurchaseTotals(ctx)
}
