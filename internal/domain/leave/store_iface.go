package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	// GetLedger loads the ledger with all its buckets, or
	// ErrLeaveTypeNotConfigured.
	GetLedger(ctx context.Context, userID string, label Label) (*Ledger, error)
	ListLedgers(ctx context.Context, userID string) ([]*Ledger, error)
	CreateLedgers(ctx context.Context, ledgers []Ledger) error

	// SaveLedger persists value and buckets iff the stored version still
	// matches ledger.Version, bumping it on success; otherwise
	// ErrVersionConflict.
	SaveLedger(ctx context.Context, ledger *Ledger) error

	ListActivePolicies(ctx context.Context, roleName string) ([]Policy, error)
	InsertPolicies(ctx context.Context, policies []Policy) error
}

// DayRecord is the workflow's view of one attendance day.
type DayRecord struct {
	ID       string
	UserID   string
	Date     time.Time
	Type     string
	Approved *bool
}

// AttendanceAPI is the narrow slice of the attendance store the leave
// workflow needs: create-if-absent day records and approval updates.
type AttendanceAPI interface {
	HasRecord(ctx context.Context, userID string, date time.Time) (bool, error)
	CreateLeaveRecord(ctx context.Context, userID string, date time.Time, label Label, reason string) (string, error)
	GetRecord(ctx context.Context, recordID string) (DayRecord, error)
	SetApproval(ctx context.Context, recordID string, approved bool, remarks string) error
}

// Notifier dispatches the post-decision side effect. Implementations are
// best-effort: they log failures and never report them back, so a broken
// mail relay cannot roll back an approval.
type Notifier interface {
	LeaveDecision(ctx context.Context, userID string, label Label, date time.Time, approved bool)
}
