package sqlite

// Migrations are applied in order by Migrate. Each statement must be
// idempotent so repeated startups are safe.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS tranche_allocations (
		account    TEXT    NOT NULL,
		category   TEXT    NOT NULL,
		allocated  TEXT    NOT NULL DEFAULT '0',
		claimed    TEXT    NOT NULL DEFAULT '0',
		eligible   INTEGER NOT NULL DEFAULT 0,
		redeemed   INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (account, category)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tranche_allocations_category
		ON tranche_allocations(category)`,

	`CREATE TABLE IF NOT EXISTS tranche_subscriptions (
		account    TEXT    PRIMARY KEY,
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tranche_purchases (
		account        TEXT    PRIMARY KEY,
		lots           INTEGER NOT NULL DEFAULT 0,
		total_tokens   TEXT    NOT NULL DEFAULT '0',
		claimed_tokens TEXT    NOT NULL DEFAULT '0',
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tranche_params (
		id              INTEGER PRIMARY KEY CHECK (id = 1),
		sub_fee         TEXT    NOT NULL DEFAULT '0',
		sub_duration    INTEGER NOT NULL DEFAULT 0,
		wallet_reward   TEXT    NOT NULL DEFAULT '0',
		launch_at       INTEGER NOT NULL DEFAULT 0,
		claim_enable_at INTEGER NOT NULL DEFAULT 0,
		scheduled       INTEGER NOT NULL DEFAULT 0,
		lots_sold       INTEGER NOT NULL DEFAULT 0,
		paused          INTEGER NOT NULL DEFAULT 0
	)`,
}
