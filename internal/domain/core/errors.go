package core

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")

	ErrEmailTaken  = errors.New("email already exists")
	ErrMobileTaken = errors.New("mobile number already exists")

	ErrUserInactive = errors.New("user is inactive")

	// ErrBadCredentials covers both unknown account and wrong password so
	// login responses do not leak which one failed.
	ErrBadCredentials = errors.New("account not found or password not matched")

	ErrPasswordReuse = errors.New("new password must differ from the current one")

	// ErrRoleRequired is returned when a root creator omits the target
	// role for a new user.
	ErrRoleRequired = errors.New("target role required for root creators")

	ErrBadRole = errors.New("role must be Admin, Employee or Intern")

	ErrDesignationRequired = errors.New("designation required for Admin role")
)
