package tranche_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xraph/tranche"
	"github.com/xraph/tranche/sale"
	"github.com/xraph/tranche/store/memory"
	"github.com/xraph/tranche/types"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and run end to end.
func TestDocumentationExamples(t *testing.T) {
	// Quick Start example from doc.go, on the memory store.
	t.Run("QuickStartExample", func(t *testing.T) {
		store := memory.New()

		token := newFakeAsset(custody)
		payment := newFakeAsset(custody)
		token.set(custody, types.NewAmount(2_000_000))
		payment.set(alice, types.NewAmount(100_000))

		clock := clockwork.NewFakeClockAt(start)

		engine := tranche.New(store,
			tranche.WithLogger(slog.Default()),
			tranche.WithOwner(owner),
			tranche.WithToken(token, custody),
			tranche.WithPaymentToken(payment),
			tranche.WithSaleTerms(sale.Terms{
				TotalLots:    10,
				TokensPerLot: types.NewAmount(100_000),
				LotPrice:     types.NewAmount(1000),
				TokenCap:     types.NewAmount(1_000_000),
			}),
			tranche.WithClock(clock),
		)

		ctx := context.Background()
		if err := engine.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer engine.Stop()

		// Credit a referral reward and let the account claim it.
		if err := engine.Credit(ctx, owner, alice, tranche.CategoryReferral, tranche.NewAmount(2500)); err != nil {
			t.Fatal(err)
		}
		if err := engine.ClaimReward(ctx, alice, tranche.CategoryReferral); err != nil {
			t.Fatal(err)
		}
		if got := token.balance(alice); got.String() != "2500" {
			t.Fatalf("claimed balance = %s, want 2500", got)
		}

		// Sell the whole sale and schedule the launch.
		if err := engine.Purchase(ctx, alice, 10); err != nil {
			t.Fatal(err)
		}
		launchAt := clock.Now().Add(24 * time.Hour)
		if err := engine.ScheduleLaunch(ctx, owner, launchAt, launchAt); err != nil {
			t.Fatal(err)
		}

		// At launch 10% of the position unlocks.
		clock.Advance(24 * time.Hour)
		claimable, err := engine.ClaimableTokens(ctx, alice)
		if err != nil {
			t.Fatal(err)
		}
		if claimable.String() != "100000" {
			t.Fatalf("claimable = %s, want 100000", claimable)
		}
		if err := engine.ClaimTokens(ctx, alice); err != nil {
			t.Fatal(err)
		}
	})
}
