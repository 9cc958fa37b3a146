package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/authgate/apiserver/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountRepoWithMock(t *testing.T) (*AccountRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewAccountRepository(db), mock, db
}

func accountRows(account types.Account) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "email", "first_name", "last_name", "role", "is_active",
		"credential_digest", "pending_reset_digest", "pending_reset_expiry",
		"created_at", "updated_at",
	})
	var digest any
	var expiry any
	if account.PendingResetDigest != "" {
		digest = account.PendingResetDigest
	}
	if account.PendingResetExpiry != nil {
		expiry = *account.PendingResetExpiry
	}
	rows.AddRow(
		account.ID, account.Email, account.FirstName, account.LastName,
		account.Role, account.IsActive, account.CredentialDigest,
		digest, expiry, account.CreatedAt, account.UpdatedAt,
	)
	return rows
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
	assert.Equal(t, "a@x.com", NormalizeEmail("a@x.com"))
}

func TestAccountGetByEmailNormalizes(t *testing.T) {
	repo, mock, db := newAccountRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)SELECT .+ FROM accounts\s+WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(accountRows(types.Account{
			ID: "acct-1", Email: "a@x.com", FirstName: "Alice", LastName: "Adams",
			Role: types.RoleUser, IsActive: true, CredentialDigest: "digest",
			CreatedAt: now, UpdatedAt: now,
		}))

	account, err := repo.GetByEmail(context.Background(), "  A@X.COM ")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", account.ID)
	assert.False(t, account.HasPendingReset())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountGetByEmailNotFound(t *testing.T) {
	repo, mock, db := newAccountRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM accounts\s+WHERE email = \$1`).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountGetByIDScansPendingReset(t *testing.T) {
	repo, mock, db := newAccountRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	expiry := now.Add(10 * time.Minute)
	mock.ExpectQuery(`(?s)SELECT .+ FROM accounts\s+WHERE id = \$1`).
		WithArgs("acct-1").
		WillReturnRows(accountRows(types.Account{
			ID: "acct-1", Email: "a@x.com", Role: types.RoleUser, IsActive: true,
			CredentialDigest: "digest", PendingResetDigest: "reset-digest",
			PendingResetExpiry: &expiry, CreatedAt: now, UpdatedAt: now,
		}))

	account, err := repo.GetByID(context.Background(), "acct-1")
	require.NoError(t, err)
	require.True(t, account.HasPendingReset())
	assert.Equal(t, "reset-digest", account.PendingResetDigest)
}

func TestAccountCreate(t *testing.T) {
	repo, mock, db := newAccountRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account, err := repo.Create(context.Background(), types.Account{
		Email:            " A@X.com ",
		FirstName:        "Alice",
		LastName:         "Adams",
		Role:             types.RoleUser,
		IsActive:         true,
		CredentialDigest: "digest",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "a@x.com", account.Email)
	assert.False(t, account.CreatedAt.IsZero())
}

func TestAccountCreateDuplicateEmail(t *testing.T) {
	repo, mock, db := newAccountRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), types.Account{Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAccountUpdateNotFound(t *testing.T) {
	repo, mock, db := newAccountRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), types.Account{ID: "acct-missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountResetCredential(t *testing.T) {
	repo, mock, db := newAccountRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts")).
		WithArgs("reset-digest", "new-digest", sqlmock.AnyArg()).
		WillReturnRows(accountRows(types.Account{
			ID: "acct-1", Email: "a@x.com", Role: types.RoleUser, IsActive: true,
			CredentialDigest: "new-digest", CreatedAt: now, UpdatedAt: now,
		}))

	account, err := repo.ResetCredential(context.Background(), "reset-digest", "new-digest", now)
	require.NoError(t, err)
	assert.Equal(t, "new-digest", account.CredentialDigest)
	assert.False(t, account.HasPendingReset())
}

func TestAccountResetCredentialNoMatch(t *testing.T) {
	repo, mock, db := newAccountRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ResetCredential(context.Background(), "stale-digest", "new-digest", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
