package core

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/access"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/leave"
)

type fakeUserStore struct {
	users  map[string]User
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]User{}}
}

func (f *fakeUserStore) Get(_ context.Context, id string) (User, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (f *fakeUserStore) GetByMobile(_ context.Context, mobile string) (User, error) {
	for _, u := range f.users {
		if u.MobileNo == mobile {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (f *fakeUserStore) GetByEmpID(_ context.Context, empID string) (User, error) {
	for _, u := range f.users {
		if u.EmpID == empID {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserStore) MobileExists(ctx context.Context, mobile string) (bool, error) {
	_, err := f.GetByMobile(ctx, mobile)
	return err == nil, nil
}

func (f *fakeUserStore) Create(_ context.Context, u User) (User, error) {
	f.nextID++
	u.ID = string(rune('a'-1+f.nextID)) + "1"
	u.EmpID = "OAID11011"
	u.Status = true
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) List(_ context.Context, ids []string) ([]User, error) {
	var out []User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID, hash string) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	f.users[userID] = u
	return nil
}

func (f *fakeUserStore) SetStatus(_ context.Context, userID string, active bool) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Status = active
	f.users[userID] = u
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, u User) error {
	cur, ok := f.users[u.ID]
	if !ok {
		return ErrUserNotFound
	}
	cur.Name = u.Name
	cur.KmsCharge = u.KmsCharge
	f.users[u.ID] = cur
	return nil
}

type fakeAccess struct {
	roles      map[string]access.Role
	placed     map[string]string // userID -> roleID
	duplicated []string          // designations passed to DuplicateRole
}

func newFakeAccess() *fakeAccess {
	root := access.Role{ID: "root", Name: RoleSuperAdmin, Parents: []string{"root"}}
	return &fakeAccess{
		roles: map[string]access.Role{
			"root":     root,
			"admin":    {ID: "admin", Name: RoleAdmin, Parents: []string{"root"}},
			"employee": {ID: "employee", Name: RoleEmployee, Parents: []string{"root"}},
			"intern":   {ID: "intern", Name: RoleIntern, Parents: []string{"root"}},
			"sales":    {ID: "sales", Name: "Sales", Parents: []string{"root"}},
		},
		placed: map[string]string{},
	}
}

func (f *fakeAccess) Role(_ context.Context, id string) (access.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return access.Role{}, access.ErrRoleNotFound
	}
	return r, nil
}

func (f *fakeAccess) Roles(_ context.Context) ([]access.Role, error) {
	var out []access.Role
	for _, r := range f.roles {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAccess) RootRole(_ context.Context) (access.Role, error) {
	return f.roles["root"], nil
}

func (f *fakeAccess) PlaceMember(_ context.Context, roleID, userID string) error {
	f.placed[userID] = roleID
	return nil
}

func (f *fakeAccess) DuplicateRole(_ context.Context, templateRoleID, designation, parentRoleID string) (string, error) {
	id := "dup-" + designation
	f.roles[id] = access.Role{ID: id, Name: designation, Parents: []string{parentRoleID}}
	f.duplicated = append(f.duplicated, templateRoleID+"/"+designation+"/"+parentRoleID)
	return id, nil
}

type fakeSeeder struct {
	seeded []string // userID/roleName
}

func (f *fakeSeeder) SeedLedgers(_ context.Context, userID, roleName string, _ time.Time) ([]leave.Ledger, error) {
	f.seeded = append(f.seeded, userID+"/"+roleName)
	return nil, nil
}

type fixedVisibility struct{ ids []string }

func (f fixedVisibility) VisibleList(context.Context, string) ([]string, error) {
	return f.ids, nil
}

func newTestCore(t *testing.T) (*Service, *fakeUserStore, *fakeAccess, *fakeSeeder) {
	t.Helper()
	store := newFakeUserStore()
	acc := newFakeAccess()
	seeder := &fakeSeeder{}
	svc := NewService(store, acc, seeder, fixedVisibility{}, slog.New(slog.NewTextHandler(io.Discard, nil)), "test-secret", time.Hour)
	svc.Now = func() time.Time { return time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC) }
	return svc, store, acc, seeder
}

const strongPassword = "Secret#123"

func TestCreateUserPlacedUnderCreatorRole(t *testing.T) {
	svc, _, acc, seeder := newTestCore(t)

	creator := auth.UserContext{UserID: "mgr", RoleID: "sales"}
	u, err := svc.CreateUser(context.Background(), creator, NewUser{
		Name: "Asha", MobileNo: "9000000001", Password: strongPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, "sales", u.RoleID)
	assert.Equal(t, "sales", acc.placed[u.ID])
	assert.Equal(t, []string{u.ID + "/Sales"}, seeder.seeded)
	assert.Equal(t, "OAID11011", u.EmpID)
}

func TestCreateUserRootCreatorNeedsExplicitRole(t *testing.T) {
	svc, _, acc, _ := newTestCore(t)

	creator := auth.UserContext{UserID: "boss", RoleID: "root"}
	_, err := svc.CreateUser(context.Background(), creator, NewUser{
		Name: "Ravi", MobileNo: "9000000002", Password: strongPassword,
	})
	assert.ErrorIs(t, err, ErrRoleRequired)

	u, err := svc.CreateUser(context.Background(), creator, NewUser{
		Name: "Ravi", MobileNo: "9000000002", Password: strongPassword,
		AssignRoleID: "sales",
	})
	require.NoError(t, err)
	assert.Equal(t, "sales", acc.placed[u.ID])
}

func TestCreateUserRejectsDuplicateContacts(t *testing.T) {
	svc, store, _, _ := newTestCore(t)
	store.users["x1"] = User{ID: "x1", MobileNo: "9000000003", Email: "asha@example.com"}

	creator := auth.UserContext{UserID: "mgr", RoleID: "sales"}
	_, err := svc.CreateUser(context.Background(), creator, NewUser{
		Name: "Dup", MobileNo: "9000000003", Password: strongPassword,
	})
	assert.ErrorIs(t, err, ErrMobileTaken)

	_, err = svc.CreateUser(context.Background(), creator, NewUser{
		Name: "Dup", MobileNo: "9000000004", Email: "asha@example.com", Password: strongPassword,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateByDesignationAdminGetsOwnRole(t *testing.T) {
	svc, _, acc, _ := newTestCore(t)

	creator := auth.UserContext{UserID: "boss", RoleID: "root"}
	u, err := svc.CreateByDesignation(context.Background(), creator, RoleAdmin, NewUser{
		Name: "Nila", MobileNo: "9000000005", Password: strongPassword,
		Designation: "HR Manager",
	})
	require.NoError(t, err)

	require.Len(t, acc.duplicated, 1)
	assert.Equal(t, "admin/HR Manager/root", acc.duplicated[0])
	assert.Equal(t, "dup-HR Manager", u.RoleID)
	assert.Equal(t, "HR Manager", u.Position)
	assert.Equal(t, "dup-HR Manager", acc.placed[u.ID])
}

func TestCreateByDesignationEmployeeUsesStandingRole(t *testing.T) {
	svc, _, acc, _ := newTestCore(t)

	creator := auth.UserContext{UserID: "boss", RoleID: "root"}
	u, err := svc.CreateByDesignation(context.Background(), creator, RoleEmployee, NewUser{
		Name: "Kiran", MobileNo: "9000000006", Password: strongPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "employee", acc.placed[u.ID])
}

func TestCreateByDesignationValidation(t *testing.T) {
	svc, _, _, _ := newTestCore(t)
	creator := auth.UserContext{UserID: "boss", RoleID: "root"}

	_, err := svc.CreateByDesignation(context.Background(), creator, "CEO", NewUser{
		Name: "X", MobileNo: "9000000007", Password: strongPassword,
	})
	assert.ErrorIs(t, err, ErrBadRole)

	_, err = svc.CreateByDesignation(context.Background(), creator, RoleAdmin, NewUser{
		Name: "X", MobileNo: "9000000008", Password: strongPassword,
	})
	assert.ErrorIs(t, err, ErrDesignationRequired)
}

func TestLoginRoutesByIdentifierShape(t *testing.T) {
	svc, store, _, _ := newTestCore(t)
	hash, err := auth.HashPassword(strongPassword)
	require.NoError(t, err)
	store.users["u1"] = User{
		ID: "u1", EmpID: "OAID11011", MobileNo: "9000000009",
		RoleID: "sales", RoleName: "Sales", Status: true, PasswordHash: hash,
	}

	u, token, err := svc.Login(context.Background(), "9000000009", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.NotEmpty(t, token)

	// Badge numbers work too, case-insensitively.
	_, _, err = svc.Login(context.Background(), "oaid11011", strongPassword)
	require.NoError(t, err)

	claims, err := auth.ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Sales", claims.RoleName)
}

func TestLoginFailures(t *testing.T) {
	svc, store, _, _ := newTestCore(t)
	hash, err := auth.HashPassword(strongPassword)
	require.NoError(t, err)
	store.users["u1"] = User{ID: "u1", MobileNo: "9000000010", Status: true, PasswordHash: hash}
	store.users["u2"] = User{ID: "u2", MobileNo: "9000000011", Status: false, PasswordHash: hash}

	_, _, err = svc.Login(context.Background(), "9999999999", strongPassword)
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = svc.Login(context.Background(), "9000000010", "Wrong#1234")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = svc.Login(context.Background(), "9000000011", strongPassword)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestChangePassword(t *testing.T) {
	svc, store, _, _ := newTestCore(t)
	hash, err := auth.HashPassword(strongPassword)
	require.NoError(t, err)
	store.users["u1"] = User{ID: "u1", PasswordHash: hash}

	err = svc.ChangePassword(context.Background(), "u1", "Wrong#1234", "Another#456")
	assert.ErrorIs(t, err, ErrBadCredentials)

	err = svc.ChangePassword(context.Background(), "u1", strongPassword, strongPassword)
	assert.ErrorIs(t, err, ErrPasswordReuse)

	err = svc.ChangePassword(context.Background(), "u1", strongPassword, "weak")
	assert.Error(t, err)

	err = svc.ChangePassword(context.Background(), "u1", strongPassword, "Another#456")
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(store.users["u1"].PasswordHash, "Another#456"))
}

func TestResetPasswordSkipsCurrentCheckButNotReuse(t *testing.T) {
	svc, store, _, _ := newTestCore(t)
	hash, err := auth.HashPassword(strongPassword)
	require.NoError(t, err)
	store.users["u1"] = User{ID: "u1", PasswordHash: hash}

	err = svc.ResetPassword(context.Background(), "u1", "u1", strongPassword)
	assert.ErrorIs(t, err, ErrPasswordReuse)

	// An admin without visibility of the target cannot reset it.
	err = svc.ResetPassword(context.Background(), "admin", "u1", "Fresh#7890")
	assert.ErrorIs(t, err, ErrUserNotFound)

	svc.Visibility = fixedVisibility{ids: []string{"u1"}}
	err = svc.ResetPassword(context.Background(), "admin", "u1", "Fresh#7890")
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(store.users["u1"].PasswordHash, "Fresh#7890"))
}

func TestListVisibleScopesToResolver(t *testing.T) {
	svc, store, _, _ := newTestCore(t)
	store.users["u1"] = User{ID: "u1", Name: "A"}
	store.users["u2"] = User{ID: "u2", Name: "B"}
	store.users["u3"] = User{ID: "u3", Name: "C"}
	svc.Visibility = fixedVisibility{ids: []string{"u1", "u3"}}

	users, err := svc.ListVisible(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, users, 2)
}
