package core

import (
	"context"
	"time"

	"hrms/internal/domain/access"
	"hrms/internal/domain/leave"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByMobile(ctx context.Context, mobile string) (User, error)
	GetByEmpID(ctx context.Context, empID string) (User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	MobileExists(ctx context.Context, mobile string) (bool, error)
	Create(ctx context.Context, u User) (User, error)
	List(ctx context.Context, userIDs []string) ([]User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	SetStatus(ctx context.Context, userID string, active bool) error
	UpdateProfile(ctx context.Context, u User) error
}

// AccessAPI is the slice of the role-graph service user management needs:
// resolving placement targets and wiring new accounts into the hierarchy.
type AccessAPI interface {
	Role(ctx context.Context, id string) (access.Role, error)
	Roles(ctx context.Context) ([]access.Role, error)
	RootRole(ctx context.Context) (access.Role, error)
	PlaceMember(ctx context.Context, roleID, userID string) error
	DuplicateRole(ctx context.Context, templateRoleID, designation, parentRoleID string) (string, error)
}

// LedgerSeeder opens the year's leave buckets for a freshly created account.
type LedgerSeeder interface {
	SeedLedgers(ctx context.Context, userID, roleName string, doj time.Time) ([]leave.Ledger, error)
}

// Visibility resolves which user IDs an actor may see and manage.
type Visibility interface {
	VisibleList(ctx context.Context, userID string) ([]string, error)
}
