package tranche

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/tranche/plugin"
	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/sale"
	"github.com/xraph/tranche/subscription"
	"github.com/xraph/tranche/types"
)

// Account-facing entry points. Every operation here follows the same
// discipline: reject reentry, serialize on the engine mutex, commit all
// store state, release the mutex, then issue at most one external
// transfer with the reentry marker attached. A failed transfer triggers
// a compensating store write restoring the pre-call state.

// ClaimReward drains the pending amount of one category to the account.
// Running categories pay out allocated minus claimed; the one-shot
// wallet category pays the configured fixed reward exactly once.
func (e *Engine) ClaimReward(ctx context.Context, account types.Address, category reward.Category) error {
	if err := e.enter(ctx); err != nil {
		return err
	}

	if e.params.Paused {
		e.mu.Unlock()
		return ErrPaused
	}
	if account.IsZero() {
		e.mu.Unlock()
		return ErrZeroAddress
	}
	if !category.Valid() {
		e.mu.Unlock()
		return fmt.Errorf("%w: category %s", ErrInvalidInput, category)
	}

	if category.SubscriptionGated() {
		active, err := e.subscribedLocked(ctx, account)
		if err != nil {
			e.mu.Unlock()
			return err
		}
		if !active {
			e.mu.Unlock()
			return ErrNotSubscribed
		}
	}

	alloc, err := e.store.GetAllocation(ctx, account, category)
	if err != nil {
		e.mu.Unlock()
		if IsNotFound(err) {
			return ErrNoAllocation
		}
		return err
	}

	payout := alloc.Pending(e.params.WalletReward)
	if !payout.IsPositive() {
		e.mu.Unlock()
		if category.Kind() == reward.KindOneShot && alloc.Redeemed {
			return ErrAlreadyClaimed
		}
		return ErrNoAllocation
	}

	if err := e.checkCustody(ctx, payout); err != nil {
		e.mu.Unlock()
		return err
	}

	// Commit the drained state before any external call.
	prev := alloc.Clone()
	switch category.Kind() {
	case reward.KindOneShot:
		alloc.Redeemed = true
		alloc.Claimed = alloc.Claimed.Add(payout)
	default:
		alloc.Claimed = alloc.Claimed.Add(payout)
	}
	alloc.Touch(e.clock.Now())
	if err := e.store.PutAllocation(ctx, alloc); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	if err := e.token.Transfer(markReentry(ctx), account, payout); err != nil {
		e.compensate(ctx, func(ctx context.Context) error {
			return e.store.PutAllocation(ctx, prev)
		})
		return fmt.Errorf("%w: reward claim %s/%s: %v", ErrTransferFailed, account, category, err)
	}

	ev := plugin.RewardClaimEvent{
		Event:    plugin.NewEvent(e.clock.Now()),
		Account:  account,
		Category: category,
		Amount:   payout,
	}
	e.plugins.EmitRewardClaimed(ctx, ev)

	e.logger.Info("reward claimed",
		"account", account,
		"category", category,
		"amount", payout,
	)
	return nil
}

// Subscribe purchases or renews a subscription for the account. Renewal
// extends from the later of now and the current expiry, so stacked
// renewals never lose paid-for time.
func (e *Engine) Subscribe(ctx context.Context, account types.Address) error {
	if err := e.enter(ctx); err != nil {
		return err
	}

	if e.params.Paused {
		e.mu.Unlock()
		return ErrPaused
	}
	if account.IsZero() {
		e.mu.Unlock()
		return ErrZeroAddress
	}

	terms := e.params.Subscription
	if !terms.Configured() {
		e.mu.Unlock()
		return fmt.Errorf("%w: subscription terms", ErrNotConfigured)
	}

	sub, err := e.store.GetSubscription(ctx, account)
	if err != nil && !IsNotFound(err) {
		e.mu.Unlock()
		return err
	}

	now := e.clock.Now()
	prev := sub.Clone()
	if sub == nil {
		sub = &subscription.Subscription{
			Entity:  types.NewEntity(now),
			Account: account,
		}
	}
	sub.ExpiresAt = sub.ExtendFrom(now, terms.Duration)
	sub.Touch(now)

	if err := e.store.PutSubscription(ctx, sub); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	if err := e.payment.TransferFrom(markReentry(ctx), account, e.custody, terms.Fee); err != nil {
		e.compensate(ctx, func(ctx context.Context) error {
			if prev == nil {
				// First-time subscription: void the record.
				sub.ExpiresAt = time.Time{}
				return e.store.PutSubscription(ctx, sub)
			}
			return e.store.PutSubscription(ctx, prev)
		})
		return fmt.Errorf("%w: subscription fee %s: %v", ErrTransferFailed, account, err)
	}

	ev := plugin.SubscribeEvent{
		Event:     plugin.NewEvent(e.clock.Now()),
		Account:   account,
		Fee:       terms.Fee,
		ExpiresAt: sub.ExpiresAt,
	}
	e.plugins.EmitSubscribed(ctx, ev)

	e.logger.Info("subscription extended",
		"account", account,
		"fee", terms.Fee,
		"expires_at", sub.ExpiresAt,
	)
	return nil
}

// Purchase buys presale lots for the account, pulling the cost in the
// payment asset. Both the lot cap and the token cap are enforced.
func (e *Engine) Purchase(ctx context.Context, account types.Address, lots uint64) error {
	if err := e.enter(ctx); err != nil {
		return err
	}

	if e.params.Paused {
		e.mu.Unlock()
		return ErrPaused
	}
	if account.IsZero() {
		e.mu.Unlock()
		return ErrZeroAddress
	}
	if lots == 0 {
		e.mu.Unlock()
		return ErrZeroAmount
	}

	sold := e.params.LotsSold
	if sold+lots > e.terms.TotalLots || sold+lots < sold {
		e.mu.Unlock()
		return ErrCapacityExceeded
	}
	tokens := e.terms.Tokens(lots)
	if e.terms.Tokens(sold).Add(tokens).GreaterThan(e.terms.TokenCap) {
		e.mu.Unlock()
		return ErrCapacityExceeded
	}

	rec, err := e.store.GetPurchase(ctx, account)
	if err != nil && !IsNotFound(err) {
		e.mu.Unlock()
		return err
	}

	now := e.clock.Now()
	prevRec := rec.Clone()
	prevParams := e.params.Clone()
	if rec == nil {
		rec = &sale.PurchaseRecord{
			Entity:        types.NewEntity(now),
			Account:       account,
			TotalTokens:   types.Zero(),
			ClaimedTokens: types.Zero(),
		}
	}
	rec.Lots += lots
	rec.TotalTokens = rec.TotalTokens.Add(tokens)
	rec.Touch(now)

	params := e.params.Clone()
	params.LotsSold = sold + lots

	if err := e.store.PutPurchase(ctx, rec); err != nil {
		e.mu.Unlock()
		return err
	}
	if err := e.putParams(ctx, params); err != nil {
		// Keep the record and counter consistent.
		if prevRec != nil {
			_ = e.store.PutPurchase(ctx, prevRec) //nolint:errcheck // restoring pre-call state
		} else {
			rec.Lots = 0
			rec.TotalTokens = types.Zero()
			_ = e.store.PutPurchase(ctx, rec) //nolint:errcheck // restoring pre-call state
		}
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	cost := e.terms.Cost(lots)
	if err := e.payment.TransferFrom(markReentry(ctx), account, e.custody, cost); err != nil {
		e.compensate(ctx, func(ctx context.Context) error {
			if prevRec != nil {
				if err := e.store.PutPurchase(ctx, prevRec); err != nil {
					return err
				}
			} else {
				rec.Lots = 0
				rec.TotalTokens = types.Zero()
				if err := e.store.PutPurchase(ctx, rec); err != nil {
					return err
				}
			}
			return e.putParams(ctx, prevParams)
		})
		return fmt.Errorf("%w: purchase payment %s: %v", ErrTransferFailed, account, err)
	}

	ev := plugin.PurchaseEvent{
		Event:   plugin.NewEvent(e.clock.Now()),
		Account: account,
		Lots:    lots,
		Tokens:  tokens,
		Cost:    cost,
	}
	e.plugins.EmitLotsPurchased(ctx, ev)

	e.logger.Info("lots purchased",
		"account", account,
		"lots", lots,
		"tokens", tokens,
		"cost", cost,
	)
	return nil
}

// ClaimTokens transfers the vested, unclaimed presale tokens to the
// account. Requires a finalized launch schedule with claims enabled.
func (e *Engine) ClaimTokens(ctx context.Context, account types.Address) error {
	if err := e.enter(ctx); err != nil {
		return err
	}

	if e.params.Paused {
		e.mu.Unlock()
		return ErrPaused
	}
	if account.IsZero() {
		e.mu.Unlock()
		return ErrZeroAddress
	}

	now := e.clock.Now()
	launch := e.params.Launch
	if !launch.ClaimsOpen(now) {
		e.mu.Unlock()
		return ErrClaimsNotEnabled
	}

	rec, err := e.store.GetPurchase(ctx, account)
	if err != nil {
		e.mu.Unlock()
		if IsNotFound(err) {
			return ErrNoAllocation
		}
		return err
	}

	payout := sale.Claimable(rec, launch, now)
	if !payout.IsPositive() {
		e.mu.Unlock()
		return ErrNoAllocation
	}

	if err := e.checkCustody(ctx, payout); err != nil {
		e.mu.Unlock()
		return err
	}

	prev := rec.Clone()
	rec.ClaimedTokens = rec.ClaimedTokens.Add(payout)
	rec.Touch(now)
	if err := e.store.PutPurchase(ctx, rec); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	if err := e.token.Transfer(markReentry(ctx), account, payout); err != nil {
		e.compensate(ctx, func(ctx context.Context) error {
			return e.store.PutPurchase(ctx, prev)
		})
		return fmt.Errorf("%w: token claim %s: %v", ErrTransferFailed, account, err)
	}

	ev := plugin.TokenClaimEvent{
		Event:   plugin.NewEvent(e.clock.Now()),
		Account: account,
		Amount:  payout,
	}
	e.plugins.EmitTokensClaimed(ctx, ev)

	e.logger.Info("tokens claimed",
		"account", account,
		"amount", payout,
	)
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// subscribedLocked reports whether account is actively subscribed.
// Callers hold e.mu.
func (e *Engine) subscribedLocked(ctx context.Context, account types.Address) (bool, error) {
	sub, err := e.store.GetSubscription(ctx, account)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub.Active(e.clock.Now()), nil
}

// checkCustody verifies the custody balance covers an imminent payout.
// Callers hold e.mu; the balance read carries the reentry marker like
// every other external call.
func (e *Engine) checkCustody(ctx context.Context, payout types.Amount) error {
	balance, err := e.token.BalanceOf(markReentry(ctx), e.custody)
	if err != nil {
		return err
	}
	if balance.LessThan(payout) {
		return ErrInsufficientCustody
	}
	return nil
}

// compensate re-acquires the mutex and runs a store rollback after a
// failed external transfer. The transfer has returned, so no reentrant
// call can be in flight.
func (e *Engine) compensate(ctx context.Context, fn func(context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(ctx); err != nil {
		e.logger.Error("compensating write failed, ledger state diverged from settlement",
			"error", err,
		)
	}
}
