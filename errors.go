package tranche

import "errors"

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("tranche: not found")
	ErrInvalidInput  = errors.New("tranche: invalid input")
	ErrUnauthorized  = errors.New("tranche: unauthorized")
	ErrNotConfigured = errors.New("tranche: not configured")

	// Pause state errors
	ErrPaused    = errors.New("tranche: operation unavailable while paused")
	ErrNotPaused = errors.New("tranche: operation requires paused state")

	// Input errors
	ErrZeroAddress = errors.New("tranche: zero address")
	ErrZeroAmount  = errors.New("tranche: zero amount")
	ErrEmptyBatch  = errors.New("tranche: empty batch")

	// Ledger errors
	ErrNoAllocation        = errors.New("tranche: nothing owed")
	ErrAlreadyClaimed      = errors.New("tranche: already claimed")
	ErrNotSubscribed       = errors.New("tranche: active subscription required")
	ErrInsufficientCustody = errors.New("tranche: custody balance below ledger promises")

	// Sale errors
	ErrCapacityExceeded = errors.New("tranche: sale capacity exceeded")
	ErrSaleOpen         = errors.New("tranche: sale has unsold lots")

	// Timing errors
	ErrInvalidTiming    = errors.New("tranche: launch timing constraint violated")
	ErrClaimsNotEnabled = errors.New("tranche: token claims not enabled")

	// Executor errors
	ErrReentrancyDetected = errors.New("tranche: reentrant call detected")
	ErrTransferFailed     = errors.New("tranche: external transfer failed")
)

// IsNotFound returns true if the error reports an absent record.
// ErrNoAllocation is deliberately excluded: an account with nothing
// owed is not a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPauseError returns true if the operation failed because of the
// current pause state.
func IsPauseError(err error) bool {
	return errors.Is(err, ErrPaused) || errors.Is(err, ErrNotPaused)
}

// IsTimingError returns true if the operation failed a schedule
// precondition and may succeed later or with corrected inputs.
func IsTimingError(err error) bool {
	return errors.Is(err, ErrInvalidTiming) ||
		errors.Is(err, ErrClaimsNotEnabled) ||
		errors.Is(err, ErrSaleOpen)
}

// IsFundsError returns true if the operation was rejected to protect
// custody backing or sale capacity.
func IsFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientCustody) ||
		errors.Is(err, ErrCapacityExceeded)
}
