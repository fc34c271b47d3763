// Package plugin provides an extensible hook system for the engine.
// Plugins can hook into lifecycle events to extend functionality:
// audit trails, metrics, notification fan-out.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/tranche/id"
	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// Event carries the fields shared by every hook payload.
type Event struct {
	ID id.ID     `json:"id"`
	At time.Time `json:"at"`
}

// NewEvent stamps a fresh event at t.
func NewEvent(t time.Time) Event {
	return Event{ID: id.NewEventID(), At: t.UTC()}
}

// ──────────────────────────────────────────────────
// Event payloads
// ──────────────────────────────────────────────────

// CreditEvent is emitted after an allocation credit commits.
type CreditEvent struct {
	Event
	Account  types.Address   `json:"account"`
	Category reward.Category `json:"category"`
	Amount   types.Amount    `json:"amount"`
}

// BatchCreditEvent summarizes a committed batch credit.
type BatchCreditEvent struct {
	Event
	BatchID  id.ID           `json:"batch_id"`
	Category reward.Category `json:"category"`
	Entries  int             `json:"entries"`
	Total    types.Amount    `json:"total"`
}

// DebitEvent is emitted after an allocation debit commits.
type DebitEvent struct {
	Event
	Account  types.Address   `json:"account"`
	Category reward.Category `json:"category"`
	Amount   types.Amount    `json:"amount"`
}

// RewardClaimEvent is emitted after a reward payout succeeds.
type RewardClaimEvent struct {
	Event
	Account  types.Address   `json:"account"`
	Category reward.Category `json:"category"`
	Amount   types.Amount    `json:"amount"`
}

// SubscribeEvent is emitted after a subscription purchase or renewal.
type SubscribeEvent struct {
	Event
	Account   types.Address `json:"account"`
	Fee       types.Amount  `json:"fee"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// SubscriptionCancelEvent is emitted when an admin voids a subscription.
type SubscriptionCancelEvent struct {
	Event
	Account types.Address `json:"account"`
}

// PurchaseEvent is emitted after a presale purchase commits.
type PurchaseEvent struct {
	Event
	Account types.Address `json:"account"`
	Lots    uint64        `json:"lots"`
	Tokens  types.Amount  `json:"tokens"`
	Cost    types.Amount  `json:"cost"`
}

// TokenClaimEvent is emitted after a vested-token payout succeeds.
type TokenClaimEvent struct {
	Event
	Account types.Address `json:"account"`
	Amount  types.Amount  `json:"amount"`
}

// LaunchEvent is emitted when the launch schedule is set or postponed.
type LaunchEvent struct {
	Event
	LaunchAt      time.Time `json:"launch_at"`
	ClaimEnableAt time.Time `json:"claim_enable_at"`
	Postponed     bool      `json:"postponed"`
}

// PauseEvent is emitted on pause and unpause transitions.
type PauseEvent struct {
	Event
	Paused bool `json:"paused"`
}

// WithdrawalEvent is emitted after an owner withdrawal succeeds.
type WithdrawalEvent struct {
	Event
	Kind   string        `json:"kind"`
	To     types.Address `json:"to"`
	Amount types.Amount  `json:"amount"`
}

// Withdrawal kinds.
const (
	WithdrawalEmergency = "emergency"
	WithdrawalRecovery  = "recovery"
	WithdrawalPayment   = "payment"
)

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Ledger hooks
// ──────────────────────────────────────────────────

// OnCredited is called after an allocation credit commits.
type OnCredited interface {
	Plugin
	OnCredited(ctx context.Context, ev CreditEvent) error
}

// OnBatchCredited is called after a batch credit commits.
type OnBatchCredited interface {
	Plugin
	OnBatchCredited(ctx context.Context, ev BatchCreditEvent) error
}

// OnDebited is called after an allocation debit commits.
type OnDebited interface {
	Plugin
	OnDebited(ctx context.Context, ev DebitEvent) error
}

// OnRewardClaimed is called after a reward payout succeeds.
type OnRewardClaimed interface {
	Plugin
	OnRewardClaimed(ctx context.Context, ev RewardClaimEvent) error
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnSubscribed is called after a subscription purchase or renewal.
type OnSubscribed interface {
	Plugin
	OnSubscribed(ctx context.Context, ev SubscribeEvent) error
}

// OnSubscriptionCanceled is called when an admin voids a subscription.
type OnSubscriptionCanceled interface {
	Plugin
	OnSubscriptionCanceled(ctx context.Context, ev SubscriptionCancelEvent) error
}

// ──────────────────────────────────────────────────
// Presale hooks
// ──────────────────────────────────────────────────

// OnLotsPurchased is called after a presale purchase commits.
type OnLotsPurchased interface {
	Plugin
	OnLotsPurchased(ctx context.Context, ev PurchaseEvent) error
}

// OnTokensClaimed is called after a vested-token payout succeeds.
type OnTokensClaimed interface {
	Plugin
	OnTokensClaimed(ctx context.Context, ev TokenClaimEvent) error
}

// OnLaunchScheduled is called when the launch schedule is set or moved.
type OnLaunchScheduled interface {
	Plugin
	OnLaunchScheduled(ctx context.Context, ev LaunchEvent) error
}

// ──────────────────────────────────────────────────
// Control hooks
// ──────────────────────────────────────────────────

// OnPaused is called when fund movement is suspended.
type OnPaused interface {
	Plugin
	OnPaused(ctx context.Context, ev PauseEvent) error
}

// OnUnpaused is called when fund movement resumes.
type OnUnpaused interface {
	Plugin
	OnUnpaused(ctx context.Context, ev PauseEvent) error
}

// OnWithdrawal is called after an owner withdrawal succeeds.
type OnWithdrawal interface {
	Plugin
	OnWithdrawal(ctx context.Context, ev WithdrawalEvent) error
}
