package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xraph/tranche"
	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/sale"
	"github.com/xraph/tranche/store"
	"github.com/xraph/tranche/subscription"
	"github.com/xraph/tranche/types"
)

var now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestAllocationRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	_, err := s.GetAllocation(ctx, "acct", reward.CategoryReferral)
	require.ErrorIs(t, err, tranche.ErrNotFound)

	a := &reward.Allocation{
		Entity:    types.NewEntity(now),
		Account:   "acct",
		Category:  reward.CategoryReferral,
		Allocated: types.NewAmount(100),
		Claimed:   types.NewAmount(40),
	}
	require.NoError(t, s.PutAllocation(ctx, a))

	got, err := s.GetAllocation(ctx, "acct", reward.CategoryReferral)
	require.NoError(t, err)
	require.Equal(t, a.Allocated.String(), got.Allocated.String())
	require.Equal(t, a.Claimed.String(), got.Claimed.String())

	// Mutating the returned record must not leak into the store.
	got.Allocated = types.NewAmount(999)
	again, err := s.GetAllocation(ctx, "acct", reward.CategoryReferral)
	require.NoError(t, err)
	require.Equal(t, "100", again.Allocated.String())
}

func TestListAndTotals(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	require.NoError(t, s.PutAllocations(ctx, []*reward.Allocation{
		{Entity: types.NewEntity(now), Account: "a", Category: reward.CategoryReferral, Allocated: types.NewAmount(100), Claimed: types.NewAmount(10)},
		{Entity: types.NewEntity(now), Account: "a", Category: reward.CategorySwap, Allocated: types.NewAmount(50), Claimed: types.Zero()},
		{Entity: types.NewEntity(now), Account: "b", Category: reward.CategoryReferral, Allocated: types.NewAmount(200), Claimed: types.NewAmount(200)},
		{Entity: types.NewEntity(now), Account: "a", Category: reward.CategoryWallet, Allocated: types.Zero(), Claimed: types.Zero(), Eligible: true},
		{Entity: types.NewEntity(now), Account: "b", Category: reward.CategoryWallet, Allocated: types.Zero(), Claimed: types.NewAmount(50), Eligible: true, Redeemed: true},
	}))

	list, err := s.ListAllocations(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 3)

	totals, err := s.RewardTotals(ctx, reward.CategoryReferral)
	require.NoError(t, err)
	require.Equal(t, "300", totals.Credited.String())
	require.Equal(t, "210", totals.Claimed.String())
	require.Equal(t, uint64(0), totals.Unredeemed)

	// Only grants not yet redeemed count as unredeemed.
	totals, err = s.RewardTotals(ctx, reward.CategoryWallet)
	require.NoError(t, err)
	require.Equal(t, uint64(1), totals.Unredeemed)
}

func TestSubscriptionRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	_, err := s.GetSubscription(ctx, "acct")
	require.ErrorIs(t, err, tranche.ErrNotFound)

	sub := &subscription.Subscription{
		Entity:    types.NewEntity(now),
		Account:   "acct",
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, s.PutSubscription(ctx, sub))

	got, err := s.GetSubscription(ctx, "acct")
	require.NoError(t, err)
	require.True(t, got.ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestPurchaseRoundTripAndTotals(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	_, err := s.GetPurchase(ctx, "acct")
	require.ErrorIs(t, err, tranche.ErrNotFound)

	require.NoError(t, s.PutPurchase(ctx, &sale.PurchaseRecord{
		Entity:        types.NewEntity(now),
		Account:       "a",
		Lots:          2,
		TotalTokens:   types.NewAmount(500),
		ClaimedTokens: types.NewAmount(100),
	}))
	require.NoError(t, s.PutPurchase(ctx, &sale.PurchaseRecord{
		Entity:        types.NewEntity(now),
		Account:       "b",
		Lots:          1,
		TotalTokens:   types.NewAmount(250),
		ClaimedTokens: types.Zero(),
	}))

	totals, err := s.PurchaseTotals(ctx)
	require.NoError(t, err)
	require.Equal(t, "750", totals.TokensSold.String())
	require.Equal(t, "100", totals.TokensClaimed.String())
}

func TestParamsRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	_, err := s.GetParams(ctx)
	require.ErrorIs(t, err, tranche.ErrNotFound)

	p := &store.Params{
		Subscription: subscription.Terms{Fee: types.NewAmount(10), Duration: time.Hour},
		WalletReward: types.NewAmount(5000),
		Launch:       sale.LaunchParams{LaunchAt: now, ClaimEnableAt: now, Scheduled: true},
		LotsSold:     7,
		Paused:       true,
	}
	require.NoError(t, s.PutParams(ctx, p))

	got, err := s.GetParams(ctx)
	require.NoError(t, err)
	require.Equal(t, p.WalletReward.String(), got.WalletReward.String())
	require.Equal(t, uint64(7), got.LotsSold)
	require.True(t, got.Paused)
	require.True(t, got.Launch.Scheduled)
}
