package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/authgate/apiserver/types"
)

// RevocationRepository persists the revocation ledger: session tokens that
// must be refused before their natural expiry.
type RevocationRepository struct {
	db *sql.DB
}

func NewRevocationRepository(db *sql.DB) *RevocationRepository {
	return &RevocationRepository{db: db}
}

// Record writes a ledger entry for the exact token string. Recording the
// same token twice fails with ErrTokenAlreadyRevoked; the caller decides
// whether that is an error worth surfacing.
func (r *RevocationRepository) Record(ctx context.Context, token string, expiresAt time.Time) error {
	entry := types.RevokedToken{
		Token:     token,
		ExpiresAt: expiresAt,
		RevokedAt: time.Now(),
	}

	const query = `
		INSERT INTO revoked_tokens (token, expires_at, revoked_at)
		VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, entry.Token, entry.ExpiresAt, entry.RevokedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTokenAlreadyRevoked
		}
		return err
	}
	return nil
}

// IsRevoked reports whether the token appears in the ledger.
func (r *RevocationRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token = $1)`
	var revoked bool
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

// DeleteExpired purges entries whose tokens have expired on their own.
// Purge timing only affects storage growth: an expired token is refused by
// the signer regardless of ledger membership.
func (r *RevocationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM revoked_tokens WHERE expires_at <= $1`
	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
