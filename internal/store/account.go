package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/authgate/apiserver/types"
	"github.com/google/uuid"
)

// NormalizeEmail lowercases and trims an email so every lookup and insert
// compares the same form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountRepository handles persistence for accounts.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, first_name, last_name, role, is_active,
		credential_digest, pending_reset_digest, pending_reset_expiry,
		created_at, updated_at`

func scanAccount(row *sql.Row) (types.Account, error) {
	var account types.Account
	var resetDigest sql.NullString
	var resetExpiry sql.NullTime
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.Role,
		&account.IsActive,
		&account.CredentialDigest,
		&resetDigest,
		&resetExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Account{}, ErrNotFound
		}
		return types.Account{}, err
	}
	if resetDigest.Valid {
		account.PendingResetDigest = resetDigest.String
	}
	if resetExpiry.Valid {
		expiry := resetExpiry.Time
		account.PendingResetExpiry = &expiry
	}
	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (types.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (types.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, NormalizeEmail(email)))
}

// Create inserts a new account. The email unique index makes the
// check-and-insert atomic; a collision surfaces as ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, account types.Account) (types.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.Email = NormalizeEmail(account.Email)
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	const query = `
		INSERT INTO accounts (id, email, first_name, last_name, role, is_active,
			credential_digest, pending_reset_digest, pending_reset_expiry,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.Email,
		account.FirstName,
		account.LastName,
		account.Role,
		account.IsActive,
		account.CredentialDigest,
		nullString(account.PendingResetDigest),
		nullTime(account.PendingResetExpiry),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Account{}, ErrDuplicateEmail
		}
		return types.Account{}, err
	}
	return account, nil
}

// Update writes the full record back. Idempotent with respect to repeated
// saves of the same state.
func (r *AccountRepository) Update(ctx context.Context, account types.Account) (types.Account, error) {
	account.Email = NormalizeEmail(account.Email)
	account.UpdatedAt = time.Now()

	const query = `
		UPDATE accounts
		SET email = $1,
			first_name = $2,
			last_name = $3,
			role = $4,
			is_active = $5,
			credential_digest = $6,
			pending_reset_digest = $7,
			pending_reset_expiry = $8,
			updated_at = $9
		WHERE id = $10`
	result, err := r.db.ExecContext(
		ctx,
		query,
		account.Email,
		account.FirstName,
		account.LastName,
		account.Role,
		account.IsActive,
		account.CredentialDigest,
		nullString(account.PendingResetDigest),
		nullTime(account.PendingResetExpiry),
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return types.Account{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Account{}, err
	}
	if affected == 0 {
		return types.Account{}, ErrNotFound
	}
	return account, nil
}

// ResetCredential consumes a pending reset in one statement: it matches the
// reset digest against an unexpired pending reset, replaces the credential
// digest, and clears the pending fields. Concurrent attempts with the same
// token race on the row update, so exactly one caller gets the account back;
// the rest see ErrNotFound.
func (r *AccountRepository) ResetCredential(ctx context.Context, resetDigest, credentialDigest string, now time.Time) (types.Account, error) {
	const query = `
		UPDATE accounts
		SET credential_digest = $2,
			pending_reset_digest = NULL,
			pending_reset_expiry = NULL,
			updated_at = $3
		WHERE pending_reset_digest = $1
		  AND pending_reset_expiry > $3
		RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, query, resetDigest, credentialDigest, now))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
