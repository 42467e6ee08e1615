package leave

import "errors"

var (
	// ErrLeaveTypeNotConfigured means no ledger exists for the requested
	// (user, label) pair: missing administrative setup, not a user fault.
	ErrLeaveTypeNotConfigured = errors.New("leave type not configured for user")

	// ErrNoBucketForYear means the ledger has no bucket covering the
	// requested year.
	ErrNoBucketForYear = errors.New("no leave bucket for year")

	// ErrInsufficientBalance is a routine business rejection, not a server
	// fault.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrVersionConflict is returned by the store when a compare-and-swap
	// write loses the race. The workflow retries a bounded number of times.
	ErrVersionConflict = errors.New("ledger version conflict")

	// ErrServerBusy surfaces after CAS retries are exhausted.
	ErrServerBusy = errors.New("ledger busy, retry later")

	ErrRecordNotFound = errors.New("attendance record not found")
	ErrInvalidRange   = errors.New("invalid date range")

	// ErrAlreadyDecided rejects a second approve/reject on a record that
	// already carries a decision. Without this guard a repeated rejection
	// would restore the same day twice.
	ErrAlreadyDecided = errors.New("record already decided")
)
