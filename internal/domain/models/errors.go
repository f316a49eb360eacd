package models

import "errors"

// Domain failures shared across services. Handlers translate these into
// HTTP status codes; services wrap them with context via %w.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrProfileMissing       = errors.New("user profile not found")
	ErrForbidden            = errors.New("operation not permitted")
	ErrUserNotFound         = errors.New("user not found")
	ErrEntryNotFound        = errors.New("entry not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrCannotDeleteAdmin    = errors.New("admin accounts cannot be deleted")
	ErrConfirmationMismatch = errors.New("confirmation text does not match")
)
