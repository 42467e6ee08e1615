package access

import (
	"context"
	"encoding/json"
)

type StoreAPI interface {
	GetRole(ctx context.Context, id string) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	FindRolesWithParent(ctx context.Context, parentID string) ([]Role, error)
	CreateRole(ctx context.Context, name string, menu json.RawMessage, parents []string) (string, error)
	AddMember(ctx context.Context, roleID, userID string) error
	RemoveMemberEverywhereExcept(ctx context.Context, userID, keepRoleID string) error

	// GraphVersion increases on every role-graph mutation and drives cache
	// invalidation in the resolver.
	GraphVersion(ctx context.Context) (int64, error)

	UserRoleID(ctx context.Context, userID string) (string, error)
	AllUserIDs(ctx context.Context) ([]string, error)
	UserIDsByRole(ctx context.Context, roleIDs []string) ([]string, error)
}
