package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the session token lifetime applied when none is
// configured.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenInvalid is returned for malformed tokens, bad signatures,
	// wrong signing methods, and missing claims.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when the signature is valid but the
	// token's lifetime has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Signer mints and verifies HS256 session tokens carrying a subject claim.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a Signer with the given secret and token lifetime.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session token lifetime.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Issue mints a signed token for the subject, expiring after the
// configured TTL.
func (s *Signer) Issue(subjectID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token's signature and lifetime and returns the subject
// id and expiry. Expiry and invalidity are reported distinctly so callers
// can log them apart, but both mean the caller is unauthenticated.
func (s *Signer) Verify(tokenString string) (string, time.Time, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", time.Time{}, ErrTokenExpired
		}
		return "", time.Time{}, ErrTokenInvalid
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" || claims.ExpiresAt == nil {
		return "", time.Time{}, ErrTokenInvalid
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}

// DecodeExpiry extracts the expiry claim without verifying the signature.
// Revocation needs the expiry of tokens it does not trust; decoding here
// never implies validity.
func (s *Signer) DecodeExpiry(tokenString string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenInvalid
	}
	return claims.ExpiresAt.Time, nil
}
