package access

import (
	"context"
	"encoding/json"
	"fmt"
)

// Service wraps the role-graph store with the administrative operations the
// user-management flows need. All mutations flow through the store so the
// graph version moves and resolver caches refresh.
type Service struct {
	Store    StoreAPI
	Resolver *Resolver
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Resolver: NewResolver(store)}
}

func (s *Service) Role(ctx context.Context, id string) (Role, error) {
	return s.Store.GetRole(ctx, id)
}

func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	return s.Store.ListRoles(ctx)
}

// ChildRoles lists the roles directly parented under roleID, one level of
// the hierarchy. The root's self-parent edge is excluded by the store.
func (s *Service) ChildRoles(ctx context.Context, roleID string) ([]Role, error) {
	return s.Store.FindRolesWithParent(ctx, roleID)
}

// AddMember places a user as a direct report under a role. Set semantics:
// adding twice is a no-op.
func (s *Service) AddMember(ctx context.Context, roleID, userID string) error {
	return s.Store.AddMember(ctx, roleID, userID)
}

// PlaceMember moves a user's direct-report placement to roleID, enforcing
// the at-most-one-role membership invariant.
func (s *Service) PlaceMember(ctx context.Context, roleID, userID string) error {
	if err := s.Store.AddMember(ctx, roleID, userID); err != nil {
		return err
	}
	return s.Store.RemoveMemberEverywhereExcept(ctx, userID, roleID)
}

func (s *Service) RemoveMemberEverywhereExcept(ctx context.Context, userID, keepRoleID string) error {
	return s.Store.RemoveMemberEverywhereExcept(ctx, userID, keepRoleID)
}

func (s *Service) CreateRole(ctx context.Context, name string, menu json.RawMessage, parents []string) (string, error) {
	return s.Store.CreateRole(ctx, name, menu, parents)
}

// DuplicateRole clones a template role's menu into a new role named after a
// designation, parented under the given role. Used when promoting a user to
// a new designation.
func (s *Service) DuplicateRole(ctx context.Context, templateRoleID, designation, parentRoleID string) (string, error) {
	template, err := s.Store.GetRole(ctx, templateRoleID)
	if err != nil {
		return "", fmt.Errorf("load template role: %w", err)
	}
	return s.Store.CreateRole(ctx, designation, template.Menu, []string{parentRoleID})
}

// RootRole returns the single self-parented role, or ErrRoleNotFound when
// the graph is unhealthy.
func (s *Service) RootRole(ctx context.Context) (Role, error) {
	roles, err := s.Store.ListRoles(ctx)
	if err != nil {
		return Role{}, err
	}
	for _, role := range roles {
		if role.IsRoot() {
			return role, nil
		}
	}
	return Role{}, ErrRoleNotFound
}
