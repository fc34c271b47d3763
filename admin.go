package tranche

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/tranche/asset"
	"github.com/xraph/tranche/id"
	"github.com/xraph/tranche/plugin"
	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/types"
)

// Owner-gated entry points. Every operation rejects callers other than
// the configured owner and, except for Unpause and EmergencyWithdraw,
// is unavailable while paused.

// CreditEntry is one element of a batch credit.
type CreditEntry struct {
	Account types.Address `json:"account"`
	Amount  types.Amount  `json:"amount"`
}

// Credit increases the allocated running total for (account, category).
// The custody balance must cover all outstanding promises including the
// new credit, so a successful credit is always claimable.
func (e *Engine) Credit(ctx context.Context, caller, account types.Address, category reward.Category, amount types.Amount) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if err := e.validateCreditLocked(ctx, account, category, amount); err != nil {
		return err
	}
	if err := e.checkBackingLocked(ctx, amount); err != nil {
		return err
	}

	alloc, err := e.allocationLocked(ctx, account, category)
	if err != nil {
		return err
	}
	alloc.Allocated = alloc.Allocated.Add(amount)
	alloc.Touch(e.clock.Now())
	if err := e.store.PutAllocation(ctx, alloc); err != nil {
		return err
	}

	ev := plugin.CreditEvent{
		Event:    plugin.NewEvent(e.clock.Now()),
		Account:  account,
		Category: category,
		Amount:   amount,
	}
	e.plugins.EmitCredited(ctx, ev)

	e.logger.Info("allocation credited",
		"account", account,
		"category", category,
		"amount", amount,
	)
	return nil
}

// CreditBatch credits many accounts in one category atomically: the
// whole batch commits or none of it does. Returns the batch ID stamped
// on the summary event.
func (e *Engine) CreditBatch(ctx context.Context, caller types.Address, category reward.Category, entries []CreditEntry) (id.ID, error) {
	if err := e.enterOwner(ctx, caller); err != nil {
		return id.Nil, err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return id.Nil, ErrPaused
	}
	if len(entries) == 0 {
		return id.Nil, ErrEmptyBatch
	}

	// Validate every entry before touching any state.
	total := types.Zero()
	for i, entry := range entries {
		if err := e.validateCreditLocked(ctx, entry.Account, category, entry.Amount); err != nil {
			return id.Nil, fmt.Errorf("batch entry %d: %w", i, err)
		}
		total = total.Add(entry.Amount)
	}
	if err := e.checkBackingLocked(ctx, total); err != nil {
		return id.Nil, err
	}

	now := e.clock.Now()
	allocations := make([]*reward.Allocation, 0, len(entries))
	for _, entry := range entries {
		alloc, err := e.allocationLocked(ctx, entry.Account, category)
		if err != nil {
			return id.Nil, err
		}
		alloc.Allocated = alloc.Allocated.Add(entry.Amount)
		alloc.Touch(now)
		allocations = append(allocations, alloc)
	}

	if err := e.store.PutAllocations(ctx, allocations); err != nil {
		return id.Nil, err
	}

	batchID := id.NewBatchID()
	for _, entry := range entries {
		e.plugins.EmitCredited(ctx, plugin.CreditEvent{
			Event:    plugin.NewEvent(now),
			Account:  entry.Account,
			Category: category,
			Amount:   entry.Amount,
		})
	}
	e.plugins.EmitBatchCredited(ctx, plugin.BatchCreditEvent{
		Event:    plugin.NewEvent(now),
		BatchID:  batchID,
		Category: category,
		Entries:  len(entries),
		Total:    total,
	})

	e.logger.Info("batch credited",
		"batch_id", batchID,
		"category", category,
		"entries", len(entries),
		"total", total,
	)
	return batchID, nil
}

// Debit reduces the allocated running total for (account, category).
// The allocation can never drop below what was already claimed.
func (e *Engine) Debit(ctx context.Context, caller, account types.Address, category reward.Category, amount types.Amount) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if account.IsZero() {
		return ErrZeroAddress
	}
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	if category.Kind() != reward.KindRunning {
		return fmt.Errorf("%w: category %s is not debitable", ErrInvalidInput, category)
	}

	alloc, err := e.store.GetAllocation(ctx, account, category)
	if err != nil {
		if IsNotFound(err) {
			return ErrNoAllocation
		}
		return err
	}

	remaining := alloc.Allocated.Sub(amount)
	if remaining.LessThan(alloc.Claimed) {
		return fmt.Errorf("%w: debit would take allocation below claimed", ErrInvalidInput)
	}
	alloc.Allocated = remaining
	alloc.Touch(e.clock.Now())
	if err := e.store.PutAllocation(ctx, alloc); err != nil {
		return err
	}

	ev := plugin.DebitEvent{
		Event:    plugin.NewEvent(e.clock.Now()),
		Account:  account,
		Category: category,
		Amount:   amount,
	}
	e.plugins.EmitDebited(ctx, ev)

	e.logger.Info("allocation debited",
		"account", account,
		"category", category,
		"amount", amount,
	)
	return nil
}

// MarkWalletEligible flags an account for the one-shot wallet reward.
// Requires a configured reward and custody backing for it.
func (e *Engine) MarkWalletEligible(ctx context.Context, caller, account types.Address) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if account.IsZero() {
		return ErrZeroAddress
	}
	if !e.params.WalletReward.IsPositive() {
		return fmt.Errorf("%w: wallet reward", ErrNotConfigured)
	}

	alloc, err := e.allocationLocked(ctx, account, reward.CategoryWallet)
	if err != nil {
		return err
	}
	if alloc.Redeemed {
		return ErrAlreadyClaimed
	}
	if alloc.Eligible {
		return nil
	}
	if err := e.checkBackingLocked(ctx, e.params.WalletReward); err != nil {
		return err
	}
	alloc.Eligible = true
	alloc.Touch(e.clock.Now())
	return e.store.PutAllocation(ctx, alloc)
}

// RevokeWalletEligibility clears an unredeemed eligibility flag.
func (e *Engine) RevokeWalletEligibility(ctx context.Context, caller, account types.Address) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if account.IsZero() {
		return ErrZeroAddress
	}

	alloc, err := e.store.GetAllocation(ctx, account, reward.CategoryWallet)
	if err != nil {
		if IsNotFound(err) {
			return ErrNoAllocation
		}
		return err
	}
	if alloc.Redeemed {
		return ErrAlreadyClaimed
	}
	alloc.Eligible = false
	alloc.Touch(e.clock.Now())
	return e.store.PutAllocation(ctx, alloc)
}

// SetWalletReward sets the fixed one-shot wallet reward.
func (e *Engine) SetWalletReward(ctx context.Context, caller types.Address, amount types.Amount) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if !amount.IsPositive() {
		return ErrZeroAmount
	}

	params := e.params.Clone()
	params.WalletReward = amount
	return e.putParams(ctx, params)
}

// SetSubscriptionTerms sets the subscription fee and duration. Both
// must be positive; the pair is validated and applied atomically.
func (e *Engine) SetSubscriptionTerms(ctx context.Context, caller types.Address, fee types.Amount, duration time.Duration) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if !fee.IsPositive() {
		return ErrZeroAmount
	}
	if duration <= 0 {
		return fmt.Errorf("%w: non-positive subscription duration", ErrInvalidInput)
	}

	params := e.params.Clone()
	params.Subscription.Fee = fee
	params.Subscription.Duration = duration
	return e.putParams(ctx, params)
}

// CancelSubscription voids an account's subscription immediately. The
// fee is not refunded.
func (e *Engine) CancelSubscription(ctx context.Context, caller, account types.Address) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if account.IsZero() {
		return ErrZeroAddress
	}

	sub, err := e.store.GetSubscription(ctx, account)
	if err != nil {
		return err
	}

	now := e.clock.Now()
	sub.ExpiresAt = time.Time{}
	sub.Touch(now)
	if err := e.store.PutSubscription(ctx, sub); err != nil {
		return err
	}

	e.plugins.EmitSubscriptionCanceled(ctx, plugin.SubscriptionCancelEvent{
		Event:   plugin.NewEvent(now),
		Account: account,
	})

	e.logger.Info("subscription canceled", "account", account)
	return nil
}

// ScheduleLaunch finalizes the distribution launch. Only possible once,
// only after every lot is sold, with a strictly future launch and a
// claim-enable instant no later than the launch.
func (e *Engine) ScheduleLaunch(ctx context.Context, caller types.Address, launchAt, claimEnableAt time.Time) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if e.params.Launch.Scheduled {
		return fmt.Errorf("%w: launch already scheduled", ErrInvalidTiming)
	}
	if e.params.LotsSold < e.terms.TotalLots {
		return ErrSaleOpen
	}

	now := e.clock.Now()
	if err := validateLaunchTimes(now, launchAt, claimEnableAt); err != nil {
		return err
	}

	params := e.params.Clone()
	params.Launch.LaunchAt = launchAt.UTC()
	params.Launch.ClaimEnableAt = claimEnableAt.UTC()
	params.Launch.Scheduled = true
	if err := e.putParams(ctx, params); err != nil {
		return err
	}

	e.plugins.EmitLaunchScheduled(ctx, plugin.LaunchEvent{
		Event:         plugin.NewEvent(now),
		LaunchAt:      params.Launch.LaunchAt,
		ClaimEnableAt: params.Launch.ClaimEnableAt,
	})

	e.logger.Info("launch scheduled",
		"launch_at", params.Launch.LaunchAt,
		"claim_enable_at", params.Launch.ClaimEnableAt,
	)
	return nil
}

// PostponeLaunch pushes a scheduled launch further into the future.
// Only allowed while the current launch instant has not yet passed.
func (e *Engine) PostponeLaunch(ctx context.Context, caller types.Address, launchAt, claimEnableAt time.Time) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}
	if !e.params.Launch.Scheduled {
		return fmt.Errorf("%w: launch not scheduled", ErrInvalidTiming)
	}

	now := e.clock.Now()
	if !now.Before(e.params.Launch.LaunchAt) {
		return fmt.Errorf("%w: launch already started", ErrInvalidTiming)
	}
	if !launchAt.After(e.params.Launch.LaunchAt) {
		return fmt.Errorf("%w: launch can only move later", ErrInvalidTiming)
	}
	if err := validateLaunchTimes(now, launchAt, claimEnableAt); err != nil {
		return err
	}

	params := e.params.Clone()
	params.Launch.LaunchAt = launchAt.UTC()
	params.Launch.ClaimEnableAt = claimEnableAt.UTC()
	if err := e.putParams(ctx, params); err != nil {
		return err
	}

	e.plugins.EmitLaunchScheduled(ctx, plugin.LaunchEvent{
		Event:         plugin.NewEvent(now),
		LaunchAt:      params.Launch.LaunchAt,
		ClaimEnableAt: params.Launch.ClaimEnableAt,
		Postponed:     true,
	})

	e.logger.Info("launch postponed",
		"launch_at", params.Launch.LaunchAt,
		"claim_enable_at", params.Launch.ClaimEnableAt,
	)
	return nil
}

// Pause suspends all fund-moving operations.
func (e *Engine) Pause(ctx context.Context, caller types.Address) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.params.Paused {
		return ErrPaused
	}

	params := e.params.Clone()
	params.Paused = true
	if err := e.putParams(ctx, params); err != nil {
		return err
	}

	e.plugins.EmitPaused(ctx, plugin.PauseEvent{
		Event:  plugin.NewEvent(e.clock.Now()),
		Paused: true,
	})
	e.logger.Warn("engine paused", "caller", caller)
	return nil
}

// Unpause resumes fund-moving operations.
func (e *Engine) Unpause(ctx context.Context, caller types.Address) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}
	defer e.mu.Unlock()

	if !e.params.Paused {
		return ErrNotPaused
	}

	params := e.params.Clone()
	params.Paused = false
	if err := e.putParams(ctx, params); err != nil {
		return err
	}

	e.plugins.EmitUnpaused(ctx, plugin.PauseEvent{
		Event:  plugin.NewEvent(e.clock.Now()),
		Paused: false,
	})
	e.logger.Info("engine unpaused", "caller", caller)
	return nil
}

// EmergencyWithdraw sweeps the full custody token balance to a
// destination. Only available while paused; user-facing movement is
// blocked during an incident and this path is blocked outside one.
func (e *Engine) EmergencyWithdraw(ctx context.Context, caller, to types.Address) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}

	if !e.params.Paused {
		e.mu.Unlock()
		return ErrNotPaused
	}
	if to.IsZero() {
		e.mu.Unlock()
		return ErrZeroAddress
	}
	e.mu.Unlock()

	return e.sweep(ctx, e.token, to, plugin.WithdrawalEmergency)
}

// RecoverAsset sweeps the custody balance of an arbitrary asset to a
// destination. Safety valve for assets sent to custody by mistake.
func (e *Engine) RecoverAsset(ctx context.Context, caller types.Address, svc asset.Service, to types.Address) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}

	if e.params.Paused {
		e.mu.Unlock()
		return ErrPaused
	}
	if svc == nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: nil asset service", ErrInvalidInput)
	}
	if to.IsZero() {
		e.mu.Unlock()
		return ErrZeroAddress
	}
	e.mu.Unlock()

	return e.sweep(ctx, svc, to, plugin.WithdrawalRecovery)
}

// WithdrawPayment transfers part of the accumulated payment-asset
// balance to a destination.
func (e *Engine) WithdrawPayment(ctx context.Context, caller, to types.Address, amount types.Amount) error {
	if err := e.enterOwner(ctx, caller); err != nil {
		return err
	}

	if e.params.Paused {
		e.mu.Unlock()
		return ErrPaused
	}
	if to.IsZero() {
		e.mu.Unlock()
		return ErrZeroAddress
	}
	if !amount.IsPositive() {
		e.mu.Unlock()
		return ErrZeroAmount
	}
	e.mu.Unlock()

	balance, err := e.payment.BalanceOf(markReentry(ctx), e.custody)
	if err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return ErrInsufficientCustody
	}
	if err := e.payment.Transfer(markReentry(ctx), to, amount); err != nil {
		return fmt.Errorf("%w: payment withdrawal: %v", ErrTransferFailed, err)
	}

	e.plugins.EmitWithdrawal(ctx, plugin.WithdrawalEvent{
		Event:  plugin.NewEvent(e.clock.Now()),
		Kind:   plugin.WithdrawalPayment,
		To:     to,
		Amount: amount,
	})
	e.logger.Warn("payment withdrawn", "to", to, "amount", amount)
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// enterOwner is the prologue shared by all admin operations: guard,
// mutex, then authorization. Callers own e.mu on nil return.
func (e *Engine) enterOwner(ctx context.Context, caller types.Address) error {
	if err := e.enter(ctx); err != nil {
		return err
	}
	if caller != e.owner {
		e.mu.Unlock()
		return ErrUnauthorized
	}
	return nil
}

// validateCreditLocked checks one credit's inputs, including the
// subscription gate where the category requires it. Callers hold e.mu.
func (e *Engine) validateCreditLocked(ctx context.Context, account types.Address, category reward.Category, amount types.Amount) error {
	if account.IsZero() {
		return ErrZeroAddress
	}
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	if category.Kind() != reward.KindRunning {
		return fmt.Errorf("%w: category %s is not creditable", ErrInvalidInput, category)
	}

	if category.SubscriptionGated() {
		active, err := e.subscribedLocked(ctx, account)
		if err != nil {
			return err
		}
		if !active {
			return ErrNotSubscribed
		}
	}
	return nil
}

// checkBackingLocked verifies the custody balance covers all
// outstanding promises plus an additional amount: unclaimed running
// totals and unredeemed eligibility grants at the configured reward.
// Callers hold e.mu.
func (e *Engine) checkBackingLocked(ctx context.Context, additional types.Amount) error {
	outstanding := types.Zero()
	for _, category := range reward.Categories() {
		totals, err := e.store.RewardTotals(ctx, category)
		if err != nil {
			return err
		}
		if category.Kind() == reward.KindRunning {
			outstanding = outstanding.Add(totals.Credited.Sub(totals.Claimed))
			continue
		}
		outstanding = outstanding.Add(e.params.WalletReward.MulUint64(totals.Unredeemed))
	}

	balance, err := e.token.BalanceOf(markReentry(ctx), e.custody)
	if err != nil {
		return err
	}
	if balance.LessThan(outstanding.Add(additional)) {
		return ErrInsufficientCustody
	}
	return nil
}

// allocationLocked loads the allocation for (account, category) or
// builds a fresh zeroed record. Callers hold e.mu.
func (e *Engine) allocationLocked(ctx context.Context, account types.Address, category reward.Category) (*reward.Allocation, error) {
	alloc, err := e.store.GetAllocation(ctx, account, category)
	if IsNotFound(err) {
		return &reward.Allocation{
			Entity:    types.NewEntity(e.clock.Now()),
			Account:   account,
			Category:  category,
			Allocated: types.Zero(),
			Claimed:   types.Zero(),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return alloc, nil
}

// validateLaunchTimes checks the schedule invariants shared by
// ScheduleLaunch and PostponeLaunch: both instants strictly future,
// claims enabled no later than launch.
func validateLaunchTimes(now, launchAt, claimEnableAt time.Time) error {
	if !launchAt.After(now) {
		return fmt.Errorf("%w: launch must be in the future", ErrInvalidTiming)
	}
	if !claimEnableAt.After(now) {
		return fmt.Errorf("%w: claim enable must be in the future", ErrInvalidTiming)
	}
	if claimEnableAt.After(launchAt) {
		return fmt.Errorf("%w: claim enable must not follow launch", ErrInvalidTiming)
	}
	return nil
}

// sweep transfers the full custody balance of an asset to a
// destination, emitting a withdrawal event.
func (e *Engine) sweep(ctx context.Context, svc asset.Service, to types.Address, kind string) error {
	balance, err := svc.BalanceOf(markReentry(ctx), e.custody)
	if err != nil {
		return err
	}
	if !balance.IsPositive() {
		return ErrZeroAmount
	}
	if err := svc.Transfer(markReentry(ctx), to, balance); err != nil {
		return fmt.Errorf("%w: %s sweep: %v", ErrTransferFailed, kind, err)
	}

	e.plugins.EmitWithdrawal(ctx, plugin.WithdrawalEvent{
		Event:  plugin.NewEvent(e.clock.Now()),
		Kind:   kind,
		To:     to,
		Amount: balance,
	})
	e.logger.Warn("custody swept", "kind", kind, "to", to, "amount", balance)
	return nil
}
