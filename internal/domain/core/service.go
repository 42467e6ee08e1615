package core

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hrms/internal/domain/auth"
)

type Service struct {
	Store      StoreAPI
	Access     AccessAPI
	Leave      LedgerSeeder
	Visibility Visibility
	Logger     *slog.Logger

	JWTSecret string
	TokenTTL  time.Duration

	Now func() time.Time
}

func NewService(store StoreAPI, acc AccessAPI, seeder LedgerSeeder, vis Visibility, logger *slog.Logger, jwtSecret string, ttl time.Duration) *Service {
	return &Service{
		Store:      store,
		Access:     acc,
		Leave:      seeder,
		Visibility: vis,
		Logger:     logger,
		JWTSecret:  jwtSecret,
		TokenTTL:   ttl,
		Now:        time.Now,
	}
}

// CreateUser registers an account under the creator's own role. A root
// creator has no single role of their own to inherit, so the request must
// name the target role explicitly.
func (s *Service) CreateUser(ctx context.Context, creator auth.UserContext, in NewUser) (User, error) {
	if err := s.checkUnique(ctx, in); err != nil {
		return User{}, err
	}
	if err := auth.ValidatePasswordStrength(in.Password); err != nil {
		return User{}, err
	}

	creatorRole, err := s.Access.Role(ctx, creator.RoleID)
	if err != nil {
		return User{}, err
	}
	targetRoleID := creatorRole.ID
	if creatorRole.IsRoot() {
		if in.AssignRoleID == "" {
			return User{}, ErrRoleRequired
		}
		assigned, err := s.Access.Role(ctx, in.AssignRoleID)
		if err != nil {
			return User{}, err
		}
		targetRoleID = assigned.ID
	}

	return s.create(ctx, creator.UserID, in, targetRoleID, in.Position)
}

// CreateByDesignation is the top-level onboarding flow. Employees and
// interns go into the standing roles of those names. Admins get a role of
// their own: the Admin template is duplicated as a new role named after the
// designation and parented under the root, so the new admin starts with the
// template's menu but an independent subtree.
func (s *Service) CreateByDesignation(ctx context.Context, creator auth.UserContext, roleName string, in NewUser) (User, error) {
	if err := s.checkUnique(ctx, in); err != nil {
		return User{}, err
	}
	if err := auth.ValidatePasswordStrength(in.Password); err != nil {
		return User{}, err
	}

	switch roleName {
	case RoleEmployee, RoleIntern:
		role, err := s.roleByName(ctx, roleName)
		if err != nil {
			return User{}, err
		}
		return s.create(ctx, creator.UserID, in, role.ID, in.Position)
	case RoleAdmin:
		if strings.TrimSpace(in.Designation) == "" {
			return User{}, ErrDesignationRequired
		}
		template, err := s.roleByName(ctx, RoleAdmin)
		if err != nil {
			return User{}, err
		}
		root, err := s.Access.RootRole(ctx)
		if err != nil {
			return User{}, err
		}
		roleID, err := s.Access.DuplicateRole(ctx, template.ID, in.Designation, root.ID)
		if err != nil {
			return User{}, err
		}
		return s.create(ctx, creator.UserID, in, roleID, in.Designation)
	default:
		return User{}, ErrBadRole
	}
}

func (s *Service) create(ctx context.Context, creatorID string, in NewUser, roleID, position string) (User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	doj := in.DOJ
	if doj.IsZero() {
		doj = s.Now().UTC().Truncate(24 * time.Hour)
	}
	u, err := s.Store.Create(ctx, User{
		Name:         in.Name,
		Email:        in.Email,
		MobileNo:     in.MobileNo,
		PasswordHash: hash,
		RoleID:       roleID,
		Position:     position,
		Designation:  in.Designation,
		Department:   in.Department,
		DOJ:          doj,
		KmsCharge:    in.KmsCharge,
		CreatedBy:    creatorID,
	})
	if err != nil {
		return User{}, err
	}

	if err := s.Access.PlaceMember(ctx, roleID, u.ID); err != nil {
		return User{}, err
	}

	role, err := s.Access.Role(ctx, roleID)
	if err != nil {
		return User{}, err
	}
	u.RoleName = role.Name
	if _, err := s.Leave.SeedLedgers(ctx, u.ID, role.Name, doj); err != nil {
		// The account exists and is placed; a ledger seeding failure is
		// recoverable by the yearly accrual, so log instead of unwinding.
		s.Logger.Error("seed leave ledgers", slog.String("userId", u.ID), slog.Any("error", err))
	}
	return u, nil
}

func (s *Service) checkUnique(ctx context.Context, in NewUser) error {
	if in.MobileNo != "" {
		taken, err := s.Store.MobileExists(ctx, in.MobileNo)
		if err != nil {
			return err
		}
		if taken {
			return ErrMobileTaken
		}
	}
	if in.Email != "" {
		taken, err := s.Store.EmailExists(ctx, in.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
	}
	return nil
}

func (s *Service) roleByName(ctx context.Context, name string) (roleRef, error) {
	roles, err := s.Access.Roles(ctx)
	if err != nil {
		return roleRef{}, err
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return roleRef{ID: r.ID, Name: r.Name}, nil
		}
	}
	return roleRef{}, ErrBadRole
}

type roleRef struct {
	ID   string
	Name string
}

// Login authenticates by mobile number or badge number. Identifiers
// starting with the badge prefix are looked up as emp_ids, everything else
// as a mobile number.
func (s *Service) Login(ctx context.Context, identifier, password string) (User, string, error) {
	var (
		u   User
		err error
	)
	if isEmpID(identifier) {
		u, err = s.Store.GetByEmpID(ctx, strings.ToUpper(identifier))
	} else {
		u, err = s.Store.GetByMobile(ctx, identifier)
	}
	if errors.Is(err, ErrUserNotFound) {
		return User{}, "", ErrBadCredentials
	}
	if err != nil {
		return User{}, "", err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return User{}, "", ErrBadCredentials
	}
	if !u.Status {
		return User{}, "", ErrUserInactive
	}
	token, err := auth.GenerateToken(s.JWTSecret, auth.Claims{
		UserID:   u.ID,
		RoleID:   u.RoleID,
		RoleName: u.RoleName,
	}, s.TokenTTL)
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

func isEmpID(identifier string) bool {
	return strings.HasPrefix(strings.ToUpper(identifier), "OA")
}

// ChangePassword is the self-service flow: the current password must check
// out, and the new one must be strong and different from the old.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(u.PasswordHash, current); err != nil {
		return ErrBadCredentials
	}
	return s.setPassword(ctx, u, next)
}

// ResetPassword is the administrative flow: no current password required,
// but strength and no-reuse still apply, and the target must sit inside the
// actor's visibility cone.
func (s *Service) ResetPassword(ctx context.Context, actorID, userID, next string) error {
	if actorID != userID {
		ok, err := s.canManage(ctx, actorID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
	}
	u, err := s.Store.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, u, next)
}

func (s *Service) setPassword(ctx context.Context, u User, next string) error {
	if err := auth.ValidatePasswordStrength(next); err != nil {
		return err
	}
	if auth.CheckPassword(u.PasswordHash, next) == nil {
		return ErrPasswordReuse
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Store.UpdatePassword(ctx, u.ID, hash)
}

// ListVisible returns the users inside the actor's visibility cone,
// actor included.
func (s *Service) ListVisible(ctx context.Context, actorID string) ([]User, error) {
	ids, err := s.Visibility.VisibleList(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.Store.List(ctx, ids)
}

func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	return s.Store.Get(ctx, userID)
}

func (s *Service) SetStatus(ctx context.Context, actorID, userID string, active bool) error {
	ok, err := s.canManage(ctx, actorID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return s.Store.SetStatus(ctx, userID, active)
}

func (s *Service) UpdateProfile(ctx context.Context, actorID string, u User) error {
	if actorID != u.ID {
		ok, err := s.canManage(ctx, actorID, u.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
	}
	return s.Store.UpdateProfile(ctx, u)
}

func (s *Service) canManage(ctx context.Context, actorID, userID string) (bool, error) {
	ids, err := s.Visibility.VisibleList(ctx, actorID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
