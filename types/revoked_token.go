package types

import "time"

// RevokedToken records a session token that must no longer be honored.
// ExpiresAt is copied from the token itself at revocation time; once it
// passes, the row is eligible for purging since the signer already
// rejects the token as expired.
type RevokedToken struct {
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	RevokedAt time.Time `json:"revoked_at" db:"revoked_at"`
}
