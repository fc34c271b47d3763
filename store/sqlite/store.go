// Package sqlite implements store.Store on a SQLite database. Amounts
// are stored as decimal strings so arbitrary-precision values survive
// the round trip; timestamps are stored as unix seconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xraph/tranche"
	"github.com/xraph/tranche/reward"
	"github.com/xraph/tranche/sale"
	"github.com/xraph/tranche/store"
	"github.com/xraph/tranche/subscription"
	"github.com/xraph/tranche/types"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store using SQLite via database/sql.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store backed by the file at path. Use ":memory:"
// for an ephemeral database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("tranche/sqlite: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

// DB returns the underlying handle for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, q := range Migrations {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("tranche/sqlite: migration failed: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Allocation methods

const allocationCols = `account, category, allocated, claimed, eligible, redeemed, created_at, updated_at`

func (s *Store) GetAllocation(ctx context.Context, account types.Address, category reward.Category) (*reward.Allocation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+allocationCols+` FROM tranche_allocations WHERE account = ? AND category = ?`,
		string(account), category.String(),
	)
	return scanAllocation(row)
}

func (s *Store) PutAllocation(ctx context.Context, a *reward.Allocation) error {
	_, err := s.db.ExecContext(ctx, upsertAllocationSQL, allocationArgs(a)...)
	if err != nil {
		return fmt.Errorf("tranche/sqlite: put allocation: %w", err)
	}
	return nil
}

func (s *Store) PutAllocations(ctx context.Context, allocations []*reward.Allocation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("tranche/sqlite: begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, a := range allocations {
		if _, err := tx.ExecContext(ctx, upsertAllocationSQL, allocationArgs(a)...); err != nil {
			return fmt.Errorf("tranche/sqlite: put allocation %s/%s: %w", a.Account, a.Category, err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListAllocations(ctx context.Context, account types.Address) ([]*reward.Allocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+allocationCols+` FROM tranche_allocations WHERE account = ? ORDER BY category`,
		string(account),
	)
	if err != nil {
		return nil, fmt.Errorf("tranche/sqlite: list allocations: %w", err)
	}
	defer rows.Close()

	result := make([]*reward.Allocation, 0)
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) RewardTotals(ctx context.Context, category reward.Category) (reward.Totals, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT allocated, claimed, eligible, redeemed FROM tranche_allocations WHERE category = ?`,
		category.String(),
	)
	if err != nil {
		return reward.Totals{}, fmt.Errorf("tranche/sqlite: reward totals: %w", err)
	}
	defer rows.Close()

	// Summed in Go rather than SQL: SQLite would do float arithmetic
	// on the decimal strings and lose precision.
	totals := reward.Totals{Credited: types.Zero(), Claimed: types.Zero()}
	for rows.Next() {
		var (
			allocated, claimed types.Amount
			eligible, redeemed bool
		)
		if err := rows.Scan(&allocated, &claimed, &eligible, &redeemed); err != nil {
			return reward.Totals{}, fmt.Errorf("tranche/sqlite: scan totals: %w", err)
		}
		totals.Credited = totals.Credited.Add(allocated)
		totals.Claimed = totals.Claimed.Add(claimed)
		if eligible && !redeemed {
			totals.Unredeemed++
		}
	}
	return totals, rows.Err()
}

const upsertAllocationSQL = `
	INSERT INTO tranche_allocations (account, category, allocated, claimed, eligible, redeemed, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(account, category) DO UPDATE SET
		allocated  = excluded.allocated,
		claimed    = excluded.claimed,
		eligible   = excluded.eligible,
		redeemed   = excluded.redeemed,
		updated_at = excluded.updated_at`

func allocationArgs(a *reward.Allocation) []any {
	return []any{
		string(a.Account), a.Category.String(),
		a.Allocated.String(), a.Claimed.String(),
		a.Eligible, a.Redeemed,
		a.CreatedAt.Unix(), a.UpdatedAt.Unix(),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAllocation(row rowScanner) (*reward.Allocation, error) {
	var (
		a                    reward.Allocation
		account, category    string
		createdAt, updatedAt int64
	)
	err := row.Scan(&account, &category, &a.Allocated, &a.Claimed, &a.Eligible, &a.Redeemed, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tranche.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tranche/sqlite: scan allocation: %w", err)
	}

	a.Account = types.Address(account)
	a.Category, err = reward.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("tranche/sqlite: scan allocation: %w", err)
	}
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &a, nil
}

// Subscription methods

func (s *Store) GetSubscription(ctx context.Context, account types.Address) (*subscription.Subscription, error) {
	var (
		sub                             subscription.Subscription
		expiresAt, createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at, created_at, updated_at FROM tranche_subscriptions WHERE account = ?`,
		string(account),
	).Scan(&expiresAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tranche.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tranche/sqlite: get subscription: %w", err)
	}

	sub.Account = account
	sub.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	sub.CreatedAt = time.Unix(createdAt, 0).UTC()
	sub.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &sub, nil
}

func (s *Store) PutSubscription(ctx context.Context, sub *subscription.Subscription) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tranche_subscriptions (account, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		string(sub.Account), sub.ExpiresAt.Unix(), sub.CreatedAt.Unix(), sub.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("tranche/sqlite: put subscription: %w", err)
	}
	return nil
}

// Purchase methods

func (s *Store) GetPurchase(ctx context.Context, account types.Address) (*sale.PurchaseRecord, error) {
	var (
		r                    sale.PurchaseRecord
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT lots, total_tokens, claimed_tokens, created_at, updated_at
		 FROM tranche_purchases WHERE account = ?`,
		string(account),
	).Scan(&r.Lots, &r.TotalTokens, &r.ClaimedTokens, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tranche.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tranche/sqlite: get purchase: %w", err)
	}

	r.Account = account
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	r.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &r, nil
}

func (s *Store) PutPurchase(ctx context.Context, r *sale.PurchaseRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tranche_purchases (account, lots, total_tokens, claimed_tokens, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			lots           = excluded.lots,
			total_tokens   = excluded.total_tokens,
			claimed_tokens = excluded.claimed_tokens,
			updated_at     = excluded.updated_at`,
		string(r.Account), r.Lots, r.TotalTokens.String(), r.ClaimedTokens.String(),
		r.CreatedAt.Unix(), r.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("tranche/sqlite: put purchase: %w", err)
	}
	return nil
}

func (s *Store) PurchaseTotals(ctx context.Context) (sale.Totals, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT total_tokens, claimed_tokens FROM tranche_purchases`)
	if err != nil {
		return sale.Totals{}, fmt.Errorf("tranche/sqlite: purchase totals: %w", err)
	}
	defer rows.Close()

	totals := sale.Totals{TokensSold: types.Zero(), TokensClaimed: types.Zero()}
	for rows.Next() {
		var sold, claimed types.Amount
		if err := rows.Scan(&sold, &claimed); err != nil {
			return sale.Totals{}, fmt.Errorf("tranche/sqlite: scan totals: %w", err)
		}
		totals.TokensSold = totals.TokensSold.Add(sold)
		totals.TokensClaimed = totals.TokensClaimed.Add(claimed)
	}
	return totals, rows.Err()
}

// Global parameter methods

func (s *Store) GetParams(ctx context.Context) (*store.Params, error) {
	var (
		p                       store.Params
		subDuration             int64
		launchAt, claimEnableAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT sub_fee, sub_duration, wallet_reward, launch_at, claim_enable_at, scheduled, lots_sold, paused
		FROM tranche_params WHERE id = 1`,
	).Scan(
		&p.Subscription.Fee, &subDuration, &p.WalletReward,
		&launchAt, &claimEnableAt, &p.Launch.Scheduled,
		&p.LotsSold, &p.Paused,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tranche.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tranche/sqlite: get params: %w", err)
	}

	p.Subscription.Duration = time.Duration(subDuration) * time.Second
	p.Launch.LaunchAt = time.Unix(launchAt, 0).UTC()
	p.Launch.ClaimEnableAt = time.Unix(claimEnableAt, 0).UTC()
	return &p, nil
}

func (s *Store) PutParams(ctx context.Context, p *store.Params) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tranche_params (id, sub_fee, sub_duration, wallet_reward, launch_at, claim_enable_at, scheduled, lots_sold, paused)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sub_fee         = excluded.sub_fee,
			sub_duration    = excluded.sub_duration,
			wallet_reward   = excluded.wallet_reward,
			launch_at       = excluded.launch_at,
			claim_enable_at = excluded.claim_enable_at,
			scheduled       = excluded.scheduled,
			lots_sold       = excluded.lots_sold,
			paused          = excluded.paused`,
		p.Subscription.Fee.String(), int64(p.Subscription.Duration/time.Second),
		p.WalletReward.String(),
		p.Launch.LaunchAt.Unix(), p.Launch.ClaimEnableAt.Unix(), p.Launch.Scheduled,
		p.LotsSold, p.Paused,
	)
	if err != nil {
		return fmt.Errorf("tranche/sqlite: put params: %w", err)
	}
	return nil
}
