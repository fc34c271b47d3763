package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient
// dispatch. It uses type-cached discovery so emitting an event touches
// only the plugins that handle it.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onCredited             []OnCredited
	onBatchCredited        []OnBatchCredited
	onDebited              []OnDebited
	onRewardClaimed        []OnRewardClaimed
	onSubscribed           []OnSubscribed
	onSubscriptionCanceled []OnSubscriptionCanceled
	onLotsPurchased        []OnLotsPurchased
	onTokensClaimed        []OnTokensClaimed
	onLaunchScheduled      []OnLaunchScheduled
	onPaused               []OnPaused
	onUnpaused             []OnUnpaused
	onWithdrawal           []OnWithdrawal
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCredited); ok {
		r.onCredited = append(r.onCredited, v)
	}
	if v, ok := p.(OnBatchCredited); ok {
		r.onBatchCredited = append(r.onBatchCredited, v)
	}
	if v, ok := p.(OnDebited); ok {
		r.onDebited = append(r.onDebited, v)
	}
	if v, ok := p.(OnRewardClaimed); ok {
		r.onRewardClaimed = append(r.onRewardClaimed, v)
	}
	if v, ok := p.(OnSubscribed); ok {
		r.onSubscribed = append(r.onSubscribed, v)
	}
	if v, ok := p.(OnSubscriptionCanceled); ok {
		r.onSubscriptionCanceled = append(r.onSubscriptionCanceled, v)
	}
	if v, ok := p.(OnLotsPurchased); ok {
		r.onLotsPurchased = append(r.onLotsPurchased, v)
	}
	if v, ok := p.(OnTokensClaimed); ok {
		r.onTokensClaimed = append(r.onTokensClaimed, v)
	}
	if v, ok := p.(OnLaunchScheduled); ok {
		r.onLaunchScheduled = append(r.onLaunchScheduled, v)
	}
	if v, ok := p.(OnPaused); ok {
		r.onPaused = append(r.onPaused, v)
	}
	if v, ok := p.(OnUnpaused); ok {
		r.onUnpaused = append(r.onUnpaused, v)
	}
	if v, ok := p.(OnWithdrawal); ok {
		r.onWithdrawal = append(r.onWithdrawal, v)
	}

	r.logger.Info("plugin registered", "name", p.Name())
	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitCredited emits a credit event.
func (r *Registry) EmitCredited(ctx context.Context, ev CreditEvent) {
	r.mu.RLock()
	plugins := r.onCredited
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCredited(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnCredited failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitBatchCredited emits a batch credit summary event.
func (r *Registry) EmitBatchCredited(ctx context.Context, ev BatchCreditEvent) {
	r.mu.RLock()
	plugins := r.onBatchCredited
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBatchCredited(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnBatchCredited failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitDebited emits a debit event.
func (r *Registry) EmitDebited(ctx context.Context, ev DebitEvent) {
	r.mu.RLock()
	plugins := r.onDebited
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDebited(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnDebited failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitRewardClaimed emits a reward claim event.
func (r *Registry) EmitRewardClaimed(ctx context.Context, ev RewardClaimEvent) {
	r.mu.RLock()
	plugins := r.onRewardClaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRewardClaimed(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnRewardClaimed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSubscribed emits a subscription event.
func (r *Registry) EmitSubscribed(ctx context.Context, ev SubscribeEvent) {
	r.mu.RLock()
	plugins := r.onSubscribed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSubscribed(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnSubscribed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitSubscriptionCanceled emits a subscription cancel event.
func (r *Registry) EmitSubscriptionCanceled(ctx context.Context, ev SubscriptionCancelEvent) {
	r.mu.RLock()
	plugins := r.onSubscriptionCanceled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSubscriptionCanceled(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnSubscriptionCanceled failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitLotsPurchased emits a purchase event.
func (r *Registry) EmitLotsPurchased(ctx context.Context, ev PurchaseEvent) {
	r.mu.RLock()
	plugins := r.onLotsPurchased
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLotsPurchased(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnLotsPurchased failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitTokensClaimed emits a token claim event.
func (r *Registry) EmitTokensClaimed(ctx context.Context, ev TokenClaimEvent) {
	r.mu.RLock()
	plugins := r.onTokensClaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTokensClaimed(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnTokensClaimed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitLaunchScheduled emits a launch schedule event.
func (r *Registry) EmitLaunchScheduled(ctx context.Context, ev LaunchEvent) {
	r.mu.RLock()
	plugins := r.onLaunchScheduled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnLaunchScheduled(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnLaunchScheduled failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPaused emits a pause event.
func (r *Registry) EmitPaused(ctx context.Context, ev PauseEvent) {
	r.mu.RLock()
	plugins := r.onPaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaused(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnPaused failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitUnpaused emits an unpause event.
func (r *Registry) EmitUnpaused(ctx context.Context, ev PauseEvent) {
	r.mu.RLock()
	plugins := r.onUnpaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnUnpaused(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnUnpaused failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitWithdrawal emits a withdrawal event.
func (r *Registry) EmitWithdrawal(ctx context.Context, ev WithdrawalEvent) {
	r.mu.RLock()
	plugins := r.onWithdrawal
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWithdrawal(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnWithdrawal failed", "plugin", p.Name(), "error", err)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must never block the ledger pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
