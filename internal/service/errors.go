package service

import "errors"

// Service errors form the account-management failure taxonomy. Handlers
// branch on these with errors.Is; repository or hasher internals never
// escape past this package.
var (
	// ErrInvalidCredentials is returned for a failed sign-in. It is
	// deliberately the same for an unknown username and a wrong password so
	// callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken means the requested username is already registered.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrEmailTaken means the requested email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUserNotFound means no user matches the given reference.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoleNotFound means a known role name has no backing record.
	ErrRoleNotFound = errors.New("role not found")

	// ErrInvalidRole means a raw role name is not part of the closed set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrMissingFields means username, email, or password was absent from a
	// registration request.
	ErrMissingFields = errors.New("username, email and password are required")

	// ErrPasswordRequired means a password change carried a blank password.
	ErrPasswordRequired = errors.New("new password is required")
)
