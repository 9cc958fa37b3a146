package services

import "errors"

// Failure taxonomy of the credential lifecycle. Handlers translate these to
// transport status codes; the orchestrator never writes HTTP itself.
var (
	// ErrDuplicateEmail rejects registration with an email that is
	// already taken (case-insensitive).
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDeactivated rejects authentication for deactivated
	// accounts.
	ErrAccountDeactivated = errors.New("account is deactivated")

	// ErrMissingToken rejects logout without a token.
	ErrMissingToken = errors.New("no token provided")

	// ErrInvalidOrExpiredToken rejects a password reset whose token
	// matches no pending, unexpired reset.
	ErrInvalidOrExpiredToken = errors.New("token is invalid or has expired")

	// ErrNotificationFailed reports that the reset mail could not be
	// delivered; the pending reset has been rolled back.
	ErrNotificationFailed = errors.New("failed to send password reset notification")

	// ErrUnauthenticated is the uniform session-verification denial. It
	// covers missing, malformed, expired and revoked tokens as well as
	// missing or deactivated accounts; sub-reasons are only logged.
	ErrUnauthenticated = errors.New("unauthenticated")
)
