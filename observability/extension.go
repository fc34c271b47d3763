// Package observability provides a metrics extension that records
// engine lifecycle event counts via Prometheus.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xraph/tranche/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnCredited             = (*MetricsExtension)(nil)
	_ plugin.OnBatchCredited        = (*MetricsExtension)(nil)
	_ plugin.OnDebited              = (*MetricsExtension)(nil)
	_ plugin.OnRewardClaimed        = (*MetricsExtension)(nil)
	_ plugin.OnSubscribed           = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionCanceled = (*MetricsExtension)(nil)
	_ plugin.OnLotsPurchased        = (*MetricsExtension)(nil)
	_ plugin.OnTokensClaimed        = (*MetricsExtension)(nil)
	_ plugin.OnLaunchScheduled      = (*MetricsExtension)(nil)
	_ plugin.OnPaused               = (*MetricsExtension)(nil)
	_ plugin.OnUnpaused             = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawal           = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle metrics. Register it
// as an engine plugin to automatically track ledger activity.
type MetricsExtension struct {
	// Allocation metrics
	Credits       *prometheus.CounterVec
	CreditBatches prometheus.Counter
	Debits        *prometheus.CounterVec
	RewardClaims  *prometheus.CounterVec
	BatchSize     prometheus.Histogram

	// Subscription metrics
	Subscriptions       prometheus.Counter
	SubscriptionCancels prometheus.Counter

	// Sale metrics
	LotsPurchased prometheus.Counter
	TokenClaims   prometheus.Counter
	LaunchChanges prometheus.Counter

	// Control metrics
	Pauses      prometheus.Counter
	Unpauses    prometheus.Counter
	Withdrawals *prometheus.CounterVec
}

// NewMetricsExtension creates a MetricsExtension registering its
// collectors with reg. Pass prometheus.DefaultRegisterer for the
// default registry.
func NewMetricsExtension(reg prometheus.Registerer) *MetricsExtension {
	factory := promauto.With(reg)

	return &MetricsExtension{
		Credits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tranche_credits_total",
			Help: "Total number of allocation credits",
		}, []string{"category"}),
		CreditBatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "tranche_credit_batches_total",
			Help: "Total number of batch credit operations",
		}),
		Debits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tranche_debits_total",
			Help: "Total number of allocation debits",
		}, []string{"category"}),
		RewardClaims: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tranche_reward_claims_total",
			Help: "Total number of reward claims paid out",
		}, []string{"category"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tranche_credit_batch_size",
			Help:    "Number of entries per batch credit",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		Subscriptions: factory.NewCounter(prometheus.CounterOpts{
			Name: "tranche_subscriptions_total",
			Help: "Total number of subscription purchases and renewals",
		}),
		SubscriptionCancels: factory.NewCounter(prometheus.CounterOpts{
			Name: "tranche_subscription_cancels_total",
			Help: "Total number of admin subscription cancellations",
		}),
		LotsPurchased: factory.NewCounter(prometheus.CounterOpts{
			Name: "tranche_lots_purchased_total",
			Help: "Total number of presale lots sold",
		}),
		TokenClaims: factory.NewCounter(prometheus.CounterOpts{
			Name: "tranche_token_claims_total",
			Help: "Total number of vested token claims paid out",
		}),
		LaunchChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "tranche_launch_changes_total",
			Help: "Total number of launch schedule changes",
		}),
		Pauses: factory.NewCounter(prometheus.CounterOpts{
			Name: "tranche_pauses_total",
			Help: "Total number of pause transitions",
		}),
		Unpauses: factory.NewCounter(prometheus.CounterOpts{
			Name: "tranche_unpauses_total",
			Help: "Total number of unpause transitions",
		}),
		Withdrawals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tranche_withdrawals_total",
			Help: "Total number of owner withdrawals",
		}, []string{"kind"}),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ──────────────────────────────────────────────────
// Allocation hooks
// ──────────────────────────────────────────────────

// OnCredited implements plugin.OnCredited.
func (m *MetricsExtension) OnCredited(_ context.Context, ev plugin.CreditEvent) error {
	m.Credits.WithLabelValues(ev.Category.String()).Inc()
	return nil
}

// OnBatchCredited implements plugin.OnBatchCredited.
func (m *MetricsExtension) OnBatchCredited(_ context.Context, ev plugin.BatchCreditEvent) error {
	m.CreditBatches.Inc()
	m.BatchSize.Observe(float64(ev.Entries))
	return nil
}

// OnDebited implements plugin.OnDebited.
func (m *MetricsExtension) OnDebited(_ context.Context, ev plugin.DebitEvent) error {
	m.Debits.WithLabelValues(ev.Category.String()).Inc()
	return nil
}

// OnRewardClaimed implements plugin.OnRewardClaimed.
func (m *MetricsExtension) OnRewardClaimed(_ context.Context, ev plugin.RewardClaimEvent) error {
	m.RewardClaims.WithLabelValues(ev.Category.String()).Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnSubscribed implements plugin.OnSubscribed.
func (m *MetricsExtension) OnSubscribed(_ context.Context, _ plugin.SubscribeEvent) error {
	m.Subscriptions.Inc()
	return nil
}

// OnSubscriptionCanceled implements plugin.OnSubscriptionCanceled.
func (m *MetricsExtension) OnSubscriptionCanceled(_ context.Context, _ plugin.SubscriptionCancelEvent) error {
	m.SubscriptionCancels.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Sale hooks
// ──────────────────────────────────────────────────

// OnLotsPurchased implements plugin.OnLotsPurchased.
func (m *MetricsExtension) OnLotsPurchased(_ context.Context, ev plugin.PurchaseEvent) error {
	m.LotsPurchased.Add(float64(ev.Lots))
	return nil
}

// OnTokensClaimed implements plugin.OnTokensClaimed.
func (m *MetricsExtension) OnTokensClaimed(_ context.Context, _ plugin.TokenClaimEvent) error {
	m.TokenClaims.Inc()
	return nil
}

// OnLaunchScheduled implements plugin.OnLaunchScheduled.
func (m *MetricsExtension) OnLaunchScheduled(_ context.Context, _ plugin.LaunchEvent) error {
	m.LaunchChanges.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Control hooks
// ──────────────────────────────────────────────────

// OnPaused implements plugin.OnPaused.
func (m *MetricsExtension) OnPaused(_ context.Context, _ plugin.PauseEvent) error {
	m.Pauses.Inc()
	return nil
}

// OnUnpaused implements plugin.OnUnpaused.
func (m *MetricsExtension) OnUnpaused(_ context.Context, _ plugin.PauseEvent) error {
	m.Unpauses.Inc()
	return nil
}

// OnWithdrawal implements plugin.OnWithdrawal.
func (m *MetricsExtension) OnWithdrawal(_ context.Context, ev plugin.WithdrawalEvent) error {
	m.Withdrawals.WithLabelValues(ev.Kind).Inc()
	return nil
}
