package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Reset token configuration.
const (
	// ResetTokenBytes is the entropy of a minted token; 32 bytes encode
	// to 64 hex characters.
	ResetTokenBytes = 32

	// DefaultResetTTL is the validity window applied when none is
	// configured.
	DefaultResetTTL = 10 * time.Minute
)

// MintResetToken returns a fresh random reset token. The plaintext is
// handed to the user exactly once; only its digest is ever stored.
func MintResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// DigestResetToken computes the deterministic sha256 digest of a token.
// The digest doubles as the lookup key for pending resets.
func DigestResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
