package sqlite

import (
	"context"
	"path/filepath"
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

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "tranche.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrateIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestAllocationRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetAllocation(ctx, "acct", reward.CategoryWallet)
	require.ErrorIs(t, err, tranche.ErrNotFound)

	a := &reward.Allocation{
		Entity:    types.NewEntity(now),
		Account:   "acct",
		Category:  reward.CategoryWallet,
		Allocated: types.Zero(),
		Claimed:   types.NewAmount(5000),
		Eligible:  true,
		Redeemed:  true,
	}
	require.NoError(t, s.PutAllocation(ctx, a))

	got, err := s.GetAllocation(ctx, "acct", reward.CategoryWallet)
	require.NoError(t, err)
	require.Equal(t, reward.CategoryWallet, got.Category)
	require.Equal(t, "5000", got.Claimed.String())
	require.True(t, got.Eligible)
	require.True(t, got.Redeemed)
	require.True(t, got.CreatedAt.Equal(now))

	// Upsert replaces in place.
	a.Claimed = types.NewAmount(6000)
	require.NoError(t, s.PutAllocation(ctx, a))
	got, err = s.GetAllocation(ctx, "acct", reward.CategoryWallet)
	require.NoError(t, err)
	require.Equal(t, "6000", got.Claimed.String())
}

func TestBatchAndTotals(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	// Amounts beyond int64 survive the decimal-string round trip.
	big := types.MustAmount("123456789012345678901234567890")

	require.NoError(t, s.PutAllocations(ctx, []*reward.Allocation{
		{Entity: types.NewEntity(now), Account: "a", Category: reward.CategoryReferral, Allocated: big, Claimed: types.Zero()},
		{Entity: types.NewEntity(now), Account: "b", Category: reward.CategoryReferral, Allocated: types.NewAmount(1), Claimed: types.NewAmount(1)},
		{Entity: types.NewEntity(now), Account: "a", Category: reward.CategorySwap, Allocated: types.NewAmount(9), Claimed: types.Zero()},
		{Entity: types.NewEntity(now), Account: "a", Category: reward.CategoryWallet, Allocated: types.Zero(), Claimed: types.Zero(), Eligible: true},
	}))

	list, err := s.ListAllocations(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 3)

	totals, err := s.RewardTotals(ctx, reward.CategoryReferral)
	require.NoError(t, err)
	require.Equal(t, big.Add(types.NewAmount(1)).String(), totals.Credited.String())
	require.Equal(t, "1", totals.Claimed.String())
	require.Equal(t, uint64(0), totals.Unredeemed)

	totals, err = s.RewardTotals(ctx, reward.CategoryWallet)
	require.NoError(t, err)
	require.Equal(t, uint64(1), totals.Unredeemed)
}

func TestSubscriptionRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetSubscription(ctx, "acct")
	require.ErrorIs(t, err, tranche.ErrNotFound)

	sub := &subscription.Subscription{
		Entity:    types.NewEntity(now),
		Account:   "acct",
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	}
	require.NoError(t, s.PutSubscription(ctx, sub))

	got, err := s.GetSubscription(ctx, "acct")
	require.NoError(t, err)
	require.True(t, got.ExpiresAt.Equal(sub.ExpiresAt))
	require.True(t, got.Active(now))
}

func TestPurchaseRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetPurchase(ctx, "acct")
	require.ErrorIs(t, err, tranche.ErrNotFound)

	require.NoError(t, s.PutPurchase(ctx, &sale.PurchaseRecord{
		Entity:        types.NewEntity(now),
		Account:       "a",
		Lots:          3,
		TotalTokens:   types.NewAmount(750_000),
		ClaimedTokens: types.NewAmount(75_000),
	}))

	got, err := s.GetPurchase(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, uint64(3), got.Lots)
	require.Equal(t, "750000", got.TotalTokens.String())

	totals, err := s.PurchaseTotals(ctx)
	require.NoError(t, err)
	require.Equal(t, "750000", totals.TokensSold.String())
	require.Equal(t, "75000", totals.TokensClaimed.String())
}

func TestParamsRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetParams(ctx)
	require.ErrorIs(t, err, tranche.ErrNotFound)

	p := &store.Params{
		Subscription: subscription.Terms{Fee: types.NewAmount(10), Duration: 90 * 24 * time.Hour},
		WalletReward: types.NewAmount(5000),
		Launch: sale.LaunchParams{
			LaunchAt:      now.Add(48 * time.Hour),
			ClaimEnableAt: now.Add(24 * time.Hour),
			Scheduled:     true,
		},
		LotsSold: 42,
		Paused:   true,
	}
	require.NoError(t, s.PutParams(ctx, p))

	got, err := s.GetParams(ctx)
	require.NoError(t, err)
	require.Equal(t, p.Subscription.Duration, got.Subscription.Duration)
	require.Equal(t, "5000", got.WalletReward.String())
	require.True(t, got.Launch.LaunchAt.Equal(p.Launch.LaunchAt))
	require.True(t, got.Launch.Scheduled)
	require.Equal(t, uint64(42), got.LotsSold)
	require.True(t, got.Paused)

	// Rewrites land on the same singleton row.
	p.Paused = false
	require.NoError(t, s.PutParams(ctx, p))
	got, err = s.GetParams(ctx)
	require.NoError(t, err)
	require.False(t, got.Paused)
}
