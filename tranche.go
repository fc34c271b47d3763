package tranche

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/xraph/tranche/asset"
	"github.com/xraph/tranche/plugin"
	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/sale"
	"github.com/xraph/tranche/store"
	"github.com/xraph/tranche/subscription"
	"github.com/xraph/tranche/types"
)

// Engine is the distribution and vesting ledger. It tracks reward
// allocations, subscriptions and presale positions in the injected
// store, and settles payouts against external asset services.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   clockwork.Clock

	owner   types.Address
	token   asset.Service
	custody types.Address
	payment asset.Service
	terms   sale.Terms

	// initialWalletReward seeds the params block on first start only;
	// afterwards the persisted value wins.
	initialWalletReward types.Amount

	// mu serializes all mutations. params is the cached copy of the
	// persisted global parameter block and is only touched under mu.
	mu     sync.Mutex
	params *store.Params
}

// New creates a new Engine instance. Call Start before use.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		clock:   clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithClock sets the time source. Tests inject a fake clock here.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithHook registers a plugin.
func WithHook(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithOwner sets the authorized admin principal.
func WithOwner(owner types.Address) Option {
	return func(e *Engine) {
		e.owner = owner
	}
}

// WithToken sets the distributed token service and the custody address
// that holds the backing balance.
func WithToken(svc asset.Service, custody types.Address) Option {
	return func(e *Engine) {
		e.token = svc
		e.custody = custody
	}
}

// WithPaymentToken sets the asset used for subscription fees and
// presale payments.
func WithPaymentToken(svc asset.Service) Option {
	return func(e *Engine) {
		e.payment = svc
	}
}

// WithSaleTerms sets the presale capacity and pricing.
func WithSaleTerms(terms sale.Terms) Option {
	return func(e *Engine) {
		e.terms = terms
	}
}

// WithWalletReward sets the initial one-shot wallet reward. Only used
// when the store has no persisted parameter block yet.
func WithWalletReward(amount types.Amount) Option {
	return func(e *Engine) {
		e.initialWalletReward = amount
	}
}

// Start validates the wiring, migrates the store, loads the persisted
// parameter block and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if e.store == nil {
		return fmt.Errorf("%w: store", ErrNotConfigured)
	}
	if e.owner.IsZero() {
		return fmt.Errorf("%w: owner", ErrNotConfigured)
	}
	if e.token == nil || e.custody.IsZero() {
		return fmt.Errorf("%w: token service and custody address", ErrNotConfigured)
	}
	if e.payment == nil {
		return fmt.Errorf("%w: payment token service", ErrNotConfigured)
	}
	if err := e.terms.Validate(); err != nil {
		return err
	}

	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	params, err := e.store.GetParams(ctx)
	switch {
	case IsNotFound(err):
		params = &store.Params{WalletReward: e.initialWalletReward}
		if err := e.store.PutParams(ctx, params); err != nil {
			e.mu.Unlock()
			return err
		}
	case err != nil:
		e.mu.Unlock()
		return err
	}
	e.params = params
	e.mu.Unlock()

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("engine started",
		"owner", e.owner,
		"custody", e.custody,
		"total_lots", e.terms.TotalLots,
		"paused", params.Paused,
	)

	return nil
}

// Stop shuts down the engine.
func (e *Engine) Stop() error {
	e.plugins.EmitShutdown(context.Background())
	return e.store.Close()
}

// putParams writes the parameter block through to the store and updates
// the cached copy. Callers hold e.mu.
func (e *Engine) putParams(ctx context.Context, p *store.Params) error {
	if err := e.store.PutParams(ctx, p); err != nil {
		return err
	}
	e.params = p
	return nil
}

// ──────────────────────────────────────────────────
// Read-only views
// ──────────────────────────────────────────────────

// PendingReward returns the amount currently claimable by account in a
// category. Accounts with no allocation report zero.
func (e *Engine) PendingReward(ctx context.Context, account types.Address, category reward.Category) (types.Amount, error) {
	if !category.Valid() {
		return types.Zero(), fmt.Errorf("%w: category %s", ErrInvalidInput, category)
	}

	walletReward, err := e.WalletReward()
	if err != nil {
		return types.Zero(), err
	}

	alloc, err := e.store.GetAllocation(ctx, account, category)
	if IsNotFound(err) {
		return types.Zero(), nil
	}
	if err != nil {
		return types.Zero(), err
	}
	return alloc.Pending(walletReward), nil
}

// WalletEligibility reports the one-shot wallet reward state for an
// account.
func (e *Engine) WalletEligibility(ctx context.Context, account types.Address) (eligible, redeemed bool, err error) {
	alloc, err := e.store.GetAllocation(ctx, account, reward.CategoryWallet)
	if IsNotFound(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return alloc.Eligible, alloc.Redeemed, nil
}

// IsSubscribed reports whether account holds an active subscription.
func (e *Engine) IsSubscribed(ctx context.Context, account types.Address) (bool, error) {
	sub, err := e.store.GetSubscription(ctx, account)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub.Active(e.clock.Now()), nil
}

// SubscriptionOf returns the subscription record for an account.
func (e *Engine) SubscriptionOf(ctx context.Context, account types.Address) (*subscription.Subscription, error) {
	return e.store.GetSubscription(ctx, account)
}

// PurchaseOf returns the presale position for an account.
func (e *Engine) PurchaseOf(ctx context.Context, account types.Address) (*sale.PurchaseRecord, error) {
	return e.store.GetPurchase(ctx, account)
}

// ClaimableTokens returns the vested, not yet claimed token amount for
// an account. Zero before claims are enabled.
func (e *Engine) ClaimableTokens(ctx context.Context, account types.Address) (types.Amount, error) {
	launch, err := e.LaunchParams()
	if err != nil {
		return types.Zero(), err
	}
	if !launch.ClaimsOpen(e.clock.Now()) {
		return types.Zero(), nil
	}

	rec, err := e.store.GetPurchase(ctx, account)
	if IsNotFound(err) {
		return types.Zero(), nil
	}
	if err != nil {
		return types.Zero(), err
	}
	return sale.Claimable(rec, launch, e.clock.Now()), nil
}

// SaleStatus summarizes the presale ledger.
type SaleStatus struct {
	LotsSold      uint64       `json:"lots_sold"`
	LotsTotal     uint64       `json:"lots_total"`
	SoldOut       bool         `json:"sold_out"`
	TokensSold    types.Amount `json:"tokens_sold"`
	TokensClaimed types.Amount `json:"tokens_claimed"`
}

// SaleStatus returns the current presale counters.
func (e *Engine) SaleStatus(ctx context.Context) (SaleStatus, error) {
	e.mu.Lock()
	if e.params == nil {
		e.mu.Unlock()
		return SaleStatus{}, ErrNotConfigured
	}
	lotsSold := e.params.LotsSold
	e.mu.Unlock()

	totals, err := e.store.PurchaseTotals(ctx)
	if err != nil {
		return SaleStatus{}, err
	}

	return SaleStatus{
		LotsSold:      lotsSold,
		LotsTotal:     e.terms.TotalLots,
		SoldOut:       lotsSold >= e.terms.TotalLots,
		TokensSold:    totals.TokensSold,
		TokensClaimed: totals.TokensClaimed,
	}, nil
}

// RewardTotals returns aggregate credited and claimed amounts for a
// category.
func (e *Engine) RewardTotals(ctx context.Context, category reward.Category) (reward.Totals, error) {
	if !category.Valid() {
		return reward.Totals{}, fmt.Errorf("%w: category %s", ErrInvalidInput, category)
	}
	return e.store.RewardTotals(ctx, category)
}

// LaunchParams returns the current launch schedule.
func (e *Engine) LaunchParams() (sale.LaunchParams, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.params == nil {
		return sale.LaunchParams{}, ErrNotConfigured
	}
	return e.params.Launch, nil
}

// SubscriptionTerms returns the current subscription fee and duration.
func (e *Engine) SubscriptionTerms() (subscription.Terms, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.params == nil {
		return subscription.Terms{}, ErrNotConfigured
	}
	return e.params.Subscription, nil
}

// WalletReward returns the configured one-shot wallet reward.
func (e *Engine) WalletReward() (types.Amount, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.params == nil {
		return types.Zero(), ErrNotConfigured
	}
	return e.params.WalletReward, nil
}

// CustodyBalance returns the distributed-token balance backing the
// ledger.
func (e *Engine) CustodyBalance(ctx context.Context) (types.Amount, error) {
	return e.token.BalanceOf(markReentry(ctx), e.custody)
}

// PaymentBalance returns the payment-asset balance held at custody.
func (e *Engine) PaymentBalance(ctx context.Context) (types.Amount, error) {
	return e.payment.BalanceOf(markReentry(ctx), e.custody)
}

// Paused reports whether fund movement is suspended.
func (e *Engine) Paused() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.params == nil {
		return false, ErrNotConfigured
	}
	return e.params.Paused, nil
}
