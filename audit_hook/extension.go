// Package audithook bridges engine lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package carries no
// dependency on any particular audit store. Callers inject a
// RecorderFunc adapter that bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/tranche/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnCredited             = (*Extension)(nil)
	_ plugin.OnBatchCredited        = (*Extension)(nil)
	_ plugin.OnDebited              = (*Extension)(nil)
	_ plugin.OnRewardClaimed        = (*Extension)(nil)
	_ plugin.OnSubscribed           = (*Extension)(nil)
	_ plugin.OnSubscriptionCanceled = (*Extension)(nil)
	_ plugin.OnLotsPurchased        = (*Extension)(nil)
	_ plugin.OnTokensClaimed        = (*Extension)(nil)
	_ plugin.OnLaunchScheduled      = (*Extension)(nil)
	_ plugin.OnPaused               = (*Extension)(nil)
	_ plugin.OnUnpaused             = (*Extension)(nil)
	_ plugin.OnWithdrawal           = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// Defined locally so the package does not depend on one backend;
// callers inject the concrete recorder at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a backend-neutral audit record.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges engine lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided
// Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Allocation hooks
// ──────────────────────────────────────────────────

// OnCredited implements plugin.OnCredited.
func (e *Extension) OnCredited(ctx context.Context, ev plugin.CreditEvent) error {
	return e.record(ctx, ActionCredited, SeverityInfo, OutcomeSuccess,
		ResourceAllocation, ev.ID.String(), CategoryLedger,
		"account", ev.Account.String(),
		"category", ev.Category.String(),
		"amount", ev.Amount.String(),
	)
}

// OnBatchCredited implements plugin.OnBatchCredited.
func (e *Extension) OnBatchCredited(ctx context.Context, ev plugin.BatchCreditEvent) error {
	return e.record(ctx, ActionBatchCredited, SeverityInfo, OutcomeSuccess,
		ResourceAllocation, ev.BatchID.String(), CategoryLedger,
		"category", ev.Category.String(),
		"entries", ev.Entries,
		"total", ev.Total.String(),
	)
}

// OnDebited implements plugin.OnDebited.
func (e *Extension) OnDebited(ctx context.Context, ev plugin.DebitEvent) error {
	return e.record(ctx, ActionDebited, SeverityWarning, OutcomeSuccess,
		ResourceAllocation, ev.ID.String(), CategoryLedger,
		"account", ev.Account.String(),
		"category", ev.Category.String(),
		"amount", ev.Amount.String(),
	)
}

// OnRewardClaimed implements plugin.OnRewardClaimed.
func (e *Extension) OnRewardClaimed(ctx context.Context, ev plugin.RewardClaimEvent) error {
	return e.record(ctx, ActionRewardClaimed, SeverityInfo, OutcomeSuccess,
		ResourceAllocation, ev.ID.String(), CategoryLedger,
		"account", ev.Account.String(),
		"category", ev.Category.String(),
		"amount", ev.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnSubscribed implements plugin.OnSubscribed.
func (e *Extension) OnSubscribed(ctx context.Context, ev plugin.SubscribeEvent) error {
	return e.record(ctx, ActionSubscribed, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, ev.ID.String(), CategorySubscription,
		"account", ev.Account.String(),
		"fee", ev.Fee.String(),
		"expires_at", ev.ExpiresAt,
	)
}

// OnSubscriptionCanceled implements plugin.OnSubscriptionCanceled.
func (e *Extension) OnSubscriptionCanceled(ctx context.Context, ev plugin.SubscriptionCancelEvent) error {
	return e.record(ctx, ActionSubscriptionCanceled, SeverityWarning, OutcomeSuccess,
		ResourceSubscription, ev.ID.String(), CategorySubscription,
		"account", ev.Account.String(),
	)
}

// ──────────────────────────────────────────────────
// Sale hooks
// ──────────────────────────────────────────────────

// OnLotsPurchased implements plugin.OnLotsPurchased.
func (e *Extension) OnLotsPurchased(ctx context.Context, ev plugin.PurchaseEvent) error {
	return e.record(ctx, ActionLotsPurchased, SeverityInfo, OutcomeSuccess,
		ResourceSale, ev.ID.String(), CategorySale,
		"account", ev.Account.String(),
		"lots", ev.Lots,
		"tokens", ev.Tokens.String(),
		"cost", ev.Cost.String(),
	)
}

// OnTokensClaimed implements plugin.OnTokensClaimed.
func (e *Extension) OnTokensClaimed(ctx context.Context, ev plugin.TokenClaimEvent) error {
	return e.record(ctx, ActionTokensClaimed, SeverityInfo, OutcomeSuccess,
		ResourceSale, ev.ID.String(), CategorySale,
		"account", ev.Account.String(),
		"amount", ev.Amount.String(),
	)
}

// OnLaunchScheduled implements plugin.OnLaunchScheduled.
func (e *Extension) OnLaunchScheduled(ctx context.Context, ev plugin.LaunchEvent) error {
	return e.record(ctx, ActionLaunchScheduled, SeverityInfo, OutcomeSuccess,
		ResourceSale, ev.ID.String(), CategorySale,
		"launch_at", ev.LaunchAt,
		"claim_enable_at", ev.ClaimEnableAt,
		"postponed", ev.Postponed,
	)
}

// ──────────────────────────────────────────────────
// Control hooks
// ──────────────────────────────────────────────────

// OnPaused implements plugin.OnPaused.
func (e *Extension) OnPaused(ctx context.Context, ev plugin.PauseEvent) error {
	return e.record(ctx, ActionPaused, SeverityCritical, OutcomeSuccess,
		ResourceControl, ev.ID.String(), CategoryControl,
	)
}

// OnUnpaused implements plugin.OnUnpaused.
func (e *Extension) OnUnpaused(ctx context.Context, ev plugin.PauseEvent) error {
	return e.record(ctx, ActionUnpaused, SeverityWarning, OutcomeSuccess,
		ResourceControl, ev.ID.String(), CategoryControl,
	)
}

// OnWithdrawal implements plugin.OnWithdrawal.
func (e *Extension) OnWithdrawal(ctx context.Context, ev plugin.WithdrawalEvent) error {
	return e.record(ctx, ActionWithdrawal, SeverityCritical, OutcomeSuccess,
		ResourceControl, ev.ID.String(), CategoryControl,
		"kind", ev.Kind,
		"to", ev.To.String(),
		"amount", ev.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
