package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/authgate/apiserver/internal/auth"
	"github.com/authgate/apiserver/internal/store"
	"github.com/authgate/apiserver/types"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (types.Account, error)
	GetByEmail(ctx context.Context, email string) (types.Account, error)
	Create(ctx context.Context, account types.Account) (types.Account, error)
	Update(ctx context.Context, account types.Account) (types.Account, error)
	ResetCredential(ctx context.Context, resetDigest, credentialDigest string, now time.Time) (types.Account, error)
}

// RevocationRepository defines persistence operations for the revocation
// ledger.
type RevocationRepository interface {
	Record(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// Notifier delivers the plaintext reset token to the account holder. The
// orchestrator composes only the three fields; message formatting belongs
// to the notifier.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, resetToken, firstName string) error
}

// AuthService is the credential lifecycle orchestrator: it ties the hasher,
// signer, reset vault, account store and revocation ledger together into
// register, login, logout, forgot-password and reset-password flows.
type AuthService struct {
	accounts AccountRepository
	revoked  RevocationRepository
	notifier Notifier
	hasher   *auth.Hasher
	signer   *auth.Signer
	resetTTL time.Duration
	log      *slog.Logger
}

// NewAuthService constructs an AuthService. A non-positive resetTTL falls
// back to auth.DefaultResetTTL.
func NewAuthService(
	accounts AccountRepository,
	revoked RevocationRepository,
	notifier Notifier,
	hasher *auth.Hasher,
	signer *auth.Signer,
	resetTTL time.Duration,
	log *slog.Logger,
) *AuthService {
	if resetTTL <= 0 {
		resetTTL = auth.DefaultResetTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		accounts: accounts,
		revoked:  revoked,
		notifier: notifier,
		hasher:   hasher,
		signer:   signer,
		resetTTL: resetTTL,
		log:      log,
	}
}

// RegisterInput carries the pre-validated registration payload.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an account with a hashed credential and issues a session
// token. The email unique constraint makes the duplicate check atomic, so
// two concurrent registrations cannot both succeed.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (types.Account, string, error) {
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return types.Account{}, "", fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, types.Account{
		Email:            in.Email,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Role:             types.RoleUser,
		IsActive:         true,
		CredentialDigest: digest,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return types.Account{}, "", ErrDuplicateEmail
		}
		return types.Account{}, "", fmt.Errorf("create account: %w", err)
	}

	token, err := s.signer.Issue(account.ID)
	if err != nil {
		return types.Account{}, "", fmt.Errorf("issue session token: %w", err)
	}

	s.log.InfoContext(ctx, "account registered", "account_id", account.ID)
	return account, token, nil
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password produce the same ErrInvalidCredentials; only a
// deactivated account is reported distinctly.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.Account, string, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Account{}, "", ErrInvalidCredentials
		}
		return types.Account{}, "", fmt.Errorf("look up account: %w", err)
	}

	if !account.IsActive {
		return types.Account{}, "", ErrAccountDeactivated
	}

	if !s.hasher.Verify(password, account.CredentialDigest) {
		return types.Account{}, "", ErrInvalidCredentials
	}

	token, err := s.signer.Issue(account.ID)
	if err != nil {
		return types.Account{}, "", fmt.Errorf("issue session token: %w", err)
	}

	return account, token, nil
}

// Logout records the exact token string in the revocation ledger. The
// token's own expiry is decoded without requiring current validity, so even
// an expired token can be revoked. Recording the same token twice surfaces
// store.ErrTokenAlreadyRevoked.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}

	expiresAt, err := s.signer.DecodeExpiry(token)
	if err != nil {
		return fmt.Errorf("decode token expiry: %w", err)
	}

	if err := s.revoked.Record(ctx, token, expiresAt); err != nil {
		if errors.Is(err, store.ErrTokenAlreadyRevoked) {
			return err
		}
		return fmt.Errorf("record revocation: %w", err)
	}
	return nil
}

// ForgotPassword mints a single-use reset token for the account, persists
// its digest and expiry, and hands the plaintext to the notifier. An
// unknown email yields ("", nil) so callers can answer with the same
// generic success and not reveal account existence; a deactivated account
// is reported explicitly. If delivery fails the pending reset is rolled
// back before ErrNotificationFailed is returned.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("look up account: %w", err)
	}

	if !account.IsActive {
		return "", ErrAccountDeactivated
	}

	token, err := auth.MintResetToken()
	if err != nil {
		return "", err
	}

	expiry := time.Now().Add(s.resetTTL)
	account.PendingResetDigest = auth.DigestResetToken(token)
	account.PendingResetExpiry = &expiry
	if account, err = s.accounts.Update(ctx, account); err != nil {
		return "", fmt.Errorf("store pending reset: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, account.Email, token, account.FirstName); err != nil {
		s.log.ErrorContext(ctx, "reset notification failed", "account_id", account.ID, "error", err)
		account.ClearPendingReset()
		if _, clearErr := s.accounts.Update(ctx, account); clearErr != nil {
			s.log.ErrorContext(ctx, "failed to roll back pending reset", "account_id", account.ID, "error", clearErr)
		}
		return "", ErrNotificationFailed
	}

	s.log.InfoContext(ctx, "password reset requested", "account_id", account.ID)
	return token, nil
}

// ResetPassword consumes a pending reset: the token's digest is the lookup
// key, and the match-and-clear runs as one store operation so concurrent
// attempts with the same token produce exactly one success. A fresh session
// token is issued; other outstanding sessions stay valid until their own
// expiry.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (types.Account, string, error) {
	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return types.Account{}, "", fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.ResetCredential(ctx, auth.DigestResetToken(token), digest, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Account{}, "", ErrInvalidOrExpiredToken
		}
		return types.Account{}, "", fmt.Errorf("reset credential: %w", err)
	}

	sessionToken, err := s.signer.Issue(account.ID)
	if err != nil {
		return types.Account{}, "", fmt.Errorf("issue session token: %w", err)
	}

	s.log.InfoContext(ctx, "password reset completed", "account_id", account.ID)
	return account, sessionToken, nil
}

// VerifySession resolves a session token to a live account. The revocation
// ledger is consulted before the signature is trusted. Every denial is the
// uniform ErrUnauthenticated; the sub-reason is only logged.
func (s *AuthService) VerifySession(ctx context.Context, token string) (types.Account, error) {
	if token == "" {
		return types.Account{}, ErrUnauthenticated
	}

	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return types.Account{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		s.log.DebugContext(ctx, "session denied", "reason", "revoked")
		return types.Account{}, ErrUnauthenticated
	}

	subject, _, err := s.signer.Verify(token)
	if err != nil {
		s.log.DebugContext(ctx, "session denied", "reason", err.Error())
		return types.Account{}, ErrUnauthenticated
	}

	account, err := s.accounts.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.DebugContext(ctx, "session denied", "reason", "account not found")
			return types.Account{}, ErrUnauthenticated
		}
		return types.Account{}, fmt.Errorf("load account: %w", err)
	}

	if !account.IsActive {
		s.log.DebugContext(ctx, "session denied", "reason", "account deactivated")
		return types.Account{}, ErrUnauthenticated
	}

	return account, nil
}

// PurgeRevoked removes ledger entries whose tokens have expired on their
// own. Safe to run on any schedule.
func (s *AuthService) PurgeRevoked(ctx context.Context) (int64, error) {
	purged, err := s.revoked.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	if purged > 0 {
		s.log.InfoContext(ctx, "purged expired revoked tokens", "count", purged)
	}
	return purged, nil
}
