// Package auth provides the credential primitives used by the lifecycle
// orchestrator: password hashing, session token signing, and single-use
// password-reset tokens.
package auth

import "golang.org/x/crypto/bcrypt"

// DefaultHashCost is the bcrypt work factor applied when none is configured.
const DefaultHashCost = 12

// Hasher produces and verifies salted one-way digests of passwords.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to DefaultHashCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt digest of the password. The salt is random
// per call, so two hashes of the same password differ.
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether the password matches the stored digest.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
