package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// signExpired mints a token whose lifetime already passed, signed with the
// given secret.
func signExpired(t *testing.T, secret string) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "acct-1",
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestSignerIssueAndVerify(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	token, err := s.Issue("acct-1")
	require.NoError(t, err)

	subject, expiresAt, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
}

func TestSignerVerifyExpired(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	_, _, err := s.Verify(signExpired(t, testSecret))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignerVerifyWrongSecret(t *testing.T) {
	other := NewSigner("other-secret", time.Hour)
	token, err := other.Issue("acct-1")
	require.NoError(t, err)

	s := NewSigner(testSecret, time.Hour)
	_, _, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSignerVerifyMalformed(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, _, err := s.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestSignerVerifyMissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	s := NewSigner(testSecret, time.Hour)
	_, _, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSignerDecodeExpiry(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	token, err := s.Issue("acct-1")
	require.NoError(t, err)

	expiresAt, err := s.DecodeExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
}

func TestSignerDecodeExpiryOnExpiredToken(t *testing.T) {
	// Revocation records expired tokens too; decoding must not require
	// current validity.
	s := NewSigner(testSecret, time.Hour)

	expiresAt, err := s.DecodeExpiry(signExpired(t, testSecret))
	require.NoError(t, err)
	assert.True(t, expiresAt.Before(time.Now()))
}

func TestSignerDecodeExpiryForeignSignature(t *testing.T) {
	// Decoding does not imply trust; a token signed elsewhere still
	// yields its expiry.
	s := NewSigner(testSecret, time.Hour)

	expiresAt, err := s.DecodeExpiry(signExpired(t, "other-secret"))
	require.NoError(t, err)
	assert.True(t, expiresAt.Before(time.Now()))
}

func TestSignerDecodeExpiryMalformed(t *testing.T) {
	s := NewSigner(testSecret, time.Hour)

	_, err := s.DecodeExpiry("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewSignerTTLFallback(t *testing.T) {
	s := NewSigner(testSecret, 0)
	assert.Equal(t, DefaultTokenTTL, s.TTL())
}
