package access

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory StoreAPI used to exercise graph traversal
// without a database.
type fakeStore struct {
	roles      map[string]*Role
	userRoles  map[string]string
	version    int64
	listCalls  int
	nextRoleID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{roles: map[string]*Role{}, userRoles: map[string]string{}}
}

func (f *fakeStore) addRole(id string, parents ...string) *Role {
	role := &Role{ID: id, Name: id, Parents: parents}
	f.roles[id] = role
	f.version++
	return role
}

func (f *fakeStore) GetRole(_ context.Context, id string) (Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return *role, nil
}

func (f *fakeStore) ListRoles(context.Context) ([]Role, error) {
	f.listCalls++
	var out []Role
	for _, role := range f.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (f *fakeStore) FindRolesWithParent(_ context.Context, parentID string) ([]Role, error) {
	var out []Role
	for _, role := range f.roles {
		if role.ID == parentID {
			continue
		}
		for _, p := range role.Parents {
			if p == parentID {
				out = append(out, *role)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CreateRole(_ context.Context, name string, _ json.RawMessage, parents []string) (string, error) {
	f.nextRoleID++
	id := fmt.Sprintf("role-%d", f.nextRoleID)
	f.roles[id] = &Role{ID: id, Name: name, Parents: parents}
	f.version++
	return id, nil
}

func (f *fakeStore) AddMember(_ context.Context, roleID, userID string) error {
	role, ok := f.roles[roleID]
	if !ok {
		return ErrRoleNotFound
	}
	for _, m := range role.Members {
		if m == userID {
			return nil
		}
	}
	role.Members = append(role.Members, userID)
	f.version++
	return nil
}

func (f *fakeStore) RemoveMemberEverywhereExcept(_ context.Context, userID, keepRoleID string) error {
	for _, role := range f.roles {
		if role.ID == keepRoleID {
			continue
		}
		kept := role.Members[:0]
		for _, m := range role.Members {
			if m != userID {
				kept = append(kept, m)
			}
		}
		if len(kept) != len(role.Members) {
			role.Members = kept
			f.version++
		}
	}
	return nil
}

func (f *fakeStore) GraphVersion(context.Context) (int64, error) { return f.version, nil }

func (f *fakeStore) UserRoleID(_ context.Context, userID string) (string, error) {
	roleID, ok := f.userRoles[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	if roleID == "" {
		return "", ErrRoleNotFound
	}
	return roleID, nil
}

func (f *fakeStore) AllUserIDs(context.Context) ([]string, error) {
	var out []string
	for id := range f.userRoles {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeStore) UserIDsByRole(_ context.Context, roleIDs []string) ([]string, error) {
	wanted := map[string]struct{}{}
	for _, id := range roleIDs {
		wanted[id] = struct{}{}
	}
	var out []string
	for user, role := range f.userRoles {
		if _, ok := wanted[role]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

// buildOrg creates Root -> RoleA -> RoleB with an owner per role and user-x
// placed as a member of RoleB.
func buildOrg(t *testing.T, store *fakeStore) {
	t.Helper()
	store.addRole("root", "root")
	store.addRole("role-a", "root")
	store.addRole("role-b", "role-a")

	store.userRoles["super"] = "root"
	store.userRoles["owner-a"] = "role-a"
	store.userRoles["owner-b"] = "role-b"
	store.userRoles["user-x"] = "role-b"
	require.NoError(t, store.AddMember(context.Background(), "role-b", "user-x"))
}

func TestResolveVisibleIncludesSelf(t *testing.T) {
	store := newFakeStore()
	buildOrg(t, store)
	resolver := NewResolver(store)

	for _, user := range []string{"owner-a", "owner-b", "user-x"} {
		visible, err := resolver.ResolveVisible(context.Background(), user)
		require.NoError(t, err)
		assert.Contains(t, visible, user, "visibility must always include the acting user")
	}
}

func TestResolveVisibleRootSeesAll(t *testing.T) {
	store := newFakeStore()
	buildOrg(t, store)
	resolver := NewResolver(store)

	visible, err := resolver.ResolveVisible(context.Background(), "super")
	require.NoError(t, err)
	assert.Len(t, visible, len(store.userRoles))
}

func TestResolveVisibleDescendants(t *testing.T) {
	store := newFakeStore()
	buildOrg(t, store)
	resolver := NewResolver(store)

	// Acting as the RoleA owner: RoleB is a descendant, so its owner and its
	// member user-x must both be visible.
	visible, err := resolver.ResolveVisible(context.Background(), "owner-a")
	require.NoError(t, err)
	assert.Contains(t, visible, "user-x")
	assert.Contains(t, visible, "owner-b")
	assert.Contains(t, visible, "owner-a")
	assert.NotContains(t, visible, "super")
}

func TestResolveVisibleNoRoleFailsClosed(t *testing.T) {
	store := newFakeStore()
	buildOrg(t, store)
	store.userRoles["orphan"] = ""
	resolver := NewResolver(store)

	visible, err := resolver.ResolveVisible(context.Background(), "orphan")
	require.NoError(t, err)
	assert.Empty(t, visible)

	visible, err = resolver.ResolveVisible(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestResolveVisibleSurvivesCycles(t *testing.T) {
	store := newFakeStore()
	store.addRole("root", "root")
	// a and b parent each other: a corrupted graph must still terminate.
	store.addRole("cycle-a", "root", "cycle-b")
	store.addRole("cycle-b", "cycle-a")
	store.userRoles["worker"] = "cycle-a"
	store.userRoles["peer"] = "cycle-b"

	resolver := NewResolver(store)
	visible, err := resolver.ResolveVisible(context.Background(), "worker")
	require.NoError(t, err)
	assert.Contains(t, visible, "worker")
	assert.Contains(t, visible, "peer")
}

func TestResolverSnapshotCaching(t *testing.T) {
	store := newFakeStore()
	buildOrg(t, store)
	resolver := NewResolver(store)

	ctx := context.Background()
	_, err := resolver.ResolveVisible(ctx, "owner-a")
	require.NoError(t, err)
	_, err = resolver.ResolveVisible(ctx, "owner-b")
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls, "unchanged graph should be served from the snapshot")

	// A mutation bumps the version and forces a reload.
	require.NoError(t, store.AddMember(ctx, "role-a", "new-user"))
	_, err = resolver.ResolveVisible(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
}

func TestPlaceMemberKeepsSingleMembership(t *testing.T) {
	store := newFakeStore()
	buildOrg(t, store)
	svc := NewService(store)

	ctx := context.Background()
	require.NoError(t, svc.PlaceMember(ctx, "role-a", "user-x"))

	roleA, err := store.GetRole(ctx, "role-a")
	require.NoError(t, err)
	roleB, err := store.GetRole(ctx, "role-b")
	require.NoError(t, err)
	assert.Contains(t, roleA.Members, "user-x")
	assert.NotContains(t, roleB.Members, "user-x")
}

func TestChildRolesListsOneLevelOnly(t *testing.T) {
	store := newFakeStore()
	buildOrg(t, store)
	svc := NewService(store)

	children, err := svc.ChildRoles(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "role-a", children[0].ID, "grandchildren and the self-parent edge stay out")
}

func TestIsRoot(t *testing.T) {
	assert.True(t, Role{ID: "r", Parents: []string{"r"}}.IsRoot())
	assert.False(t, Role{ID: "r", Parents: []string{"p"}}.IsRoot())
	assert.False(t, Role{ID: "r", Parents: []string{"r", "p"}}.IsRoot())
	assert.False(t, Role{ID: "r"}.IsRoot())
}
