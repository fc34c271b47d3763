package audithook

// Action constants for audit events.
const (
	// Allocation actions
	ActionCredited      = "allocation.credited"
	ActionBatchCredited = "allocation.batch_credited"
	ActionDebited       = "allocation.debited"
	ActionRewardClaimed = "allocation.claimed"

	// Subscription actions
	ActionSubscribed           = "subscription.extended"
	ActionSubscriptionCanceled = "subscription.canceled"

	// Sale actions
	ActionLotsPurchased   = "sale.lots_purchased"
	ActionTokensClaimed   = "sale.tokens_claimed"
	ActionLaunchScheduled = "sale.launch_scheduled"

	// Control actions
	ActionPaused     = "control.paused"
	ActionUnpaused   = "control.unpaused"
	ActionWithdrawal = "control.withdrawal"
)

// Resource constants for audit events.
const (
	ResourceAllocation   = "allocation"
	ResourceSubscription = "subscription"
	ResourceSale         = "sale"
	ResourceControl      = "control"
)

// Category constants for audit events.
const (
	CategoryLedger       = "ledger"
	CategorySubscription = "subscription"
	CategorySale         = "sale"
	CategoryControl      = "control"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
