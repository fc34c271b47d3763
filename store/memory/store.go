// Package memory provides an in-memory Store for tests and embedded
// use. All records are cloned on the way in and out so callers can
// never alias internal state.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/tranche"
	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/sale"
	"github.com/xraph/tranche/store"
	"github.com/xraph/tranche/subscription"
	"github.com/xraph/tranche/types"
)

type allocationKey struct {
	account  types.Address
	category reward.Category
}

type Store struct {
	mu sync.RWMutex

	allocations   map[allocationKey]*reward.Allocation
	subscriptions map[types.Address]*subscription.Subscription
	purchases     map[types.Address]*sale.PurchaseRecord
	params        *store.Params
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		allocations:   make(map[allocationKey]*reward.Allocation),
		subscriptions: make(map[types.Address]*subscription.Subscription),
		purchases:     make(map[types.Address]*sale.PurchaseRecord),
	}
}

// Allocation methods

func (s *Store) GetAllocation(_ context.Context, account types.Address, category reward.Category) (*reward.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.allocations[allocationKey{account, category}]; ok {
		return a.Clone(), nil
	}
	return nil, tranche.ErrNotFound
}

func (s *Store) PutAllocation(_ context.Context, a *reward.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allocations[allocationKey{a.Account, a.Category}] = a.Clone()
	return nil
}

func (s *Store) PutAllocations(_ context.Context, allocations []*reward.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Single map under one lock, so the batch is atomic by
	// construction.
	for _, a := range allocations {
		s.allocations[allocationKey{a.Account, a.Category}] = a.Clone()
	}
	return nil
}

func (s *Store) ListAllocations(_ context.Context, account types.Address) ([]*reward.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*reward.Allocation, 0)
	for key, a := range s.allocations {
		if key.account == account {
			result = append(result, a.Clone())
		}
	}
	return result, nil
}

func (s *Store) RewardTotals(_ context.Context, category reward.Category) (reward.Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := reward.Totals{Credited: types.Zero(), Claimed: types.Zero()}
	for key, a := range s.allocations {
		if key.category == category {
			totals.Credited = totals.Credited.Add(a.Allocated)
			totals.Claimed = totals.Claimed.Add(a.Claimed)
			if a.Eligible && !a.Redeemed {
				totals.Unredeemed++
			}
		}
	}
	return totals, nil
}

// Subscription methods

func (s *Store) GetSubscription(_ context.Context, account types.Address) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sub, ok := s.subscriptions[account]; ok {
		return sub.Clone(), nil
	}
	return nil, tranche.ErrNotFound
}

func (s *Store) PutSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscriptions[sub.Account] = sub.Clone()
	return nil
}

// Purchase methods

func (s *Store) GetPurchase(_ context.Context, account types.Address) (*sale.PurchaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.purchases[account]; ok {
		return r.Clone(), nil
	}
	return nil, tranche.ErrNotFound
}

func (s *Store) PutPurchase(_ context.Context, r *sale.PurchaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purchases[r.Account] = r.Clone()
	return nil
}

func (s *Store) PurchaseTotals(_ context.Context) (sale.Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := sale.Totals{TokensSold: types.Zero(), TokensClaimed: types.Zero()}
	for _, r := range s.purchases {
		totals.TokensSold = totals.TokensSold.Add(r.TotalTokens)
		totals.TokensClaimed = totals.TokensClaimed.Add(r.ClaimedTokens)
	}
	return totals, nil
}

// Global parameter methods

func (s *Store) GetParams(_ context.Context) (*store.Params, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.params == nil {
		return nil, tranche.ErrNotFound
	}
	return s.params.Clone(), nil
}

func (s *Store) PutParams(_ context.Context, p *store.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = p.Clone()
	return nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
