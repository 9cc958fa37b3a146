package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert collides with an existing
// account's email.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrTokenAlreadyRevoked is returned when a token is recorded in the
// revocation ledger twice.
var ErrTokenAlreadyRevoked = errors.New("token already revoked")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}
