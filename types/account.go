package types

import "time"

// Roles an account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account represents a registered identity in the system.
// It contains the credential digest, role, activation flag, and any
// pending password-reset state.
type Account struct {
	// ID is the unique identifier of the account, assigned at creation.
	ID string `json:"id" db:"id"`

	// Email is the unique natural key, stored lowercase and trimmed.
	Email string `json:"email" db:"email"`

	// FirstName is the account holder's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the account holder's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Role indicates the account's authorization level
	// within the system ("user" or "admin").
	Role string `json:"role" db:"role"`

	// IsActive gates all authentication; deactivated accounts cannot
	// log in or request password resets.
	IsActive bool `json:"is_active" db:"is_active"`

	// CredentialDigest stores the bcrypt digest of the current password.
	// This field is never exposed in API responses.
	CredentialDigest string `json:"-" db:"credential_digest"`

	// PendingResetDigest holds the sha256 digest of an outstanding
	// password-reset token, or empty when none is pending.
	PendingResetDigest string `json:"-" db:"pending_reset_digest"`

	// PendingResetExpiry is the deadline of the outstanding reset token.
	// It is set iff PendingResetDigest is set.
	PendingResetExpiry *time.Time `json:"-" db:"pending_reset_expiry"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AccountView is the public projection of an Account. It omits the
// credential and reset fields by construction, so no serialization hook
// can leak them.
type AccountView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View returns the public projection of the account.
func (a Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// HasPendingReset reports whether a password-reset token is outstanding.
func (a Account) HasPendingReset() bool {
	return a.PendingResetDigest != "" && a.PendingResetExpiry != nil
}

// ClearPendingReset removes any outstanding reset state.
func (a *Account) ClearPendingReset() {
	a.PendingResetDigest = ""
	a.PendingResetExpiry = nil
}
