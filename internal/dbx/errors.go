package dbx

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes we react to.
const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Classify maps low-level failures onto the common taxonomy: unique
// violations become common.ErrConflict, deadline/cancellation and
// serialization conflicts become the retryable common.ErrTimeout.
// Anything else is returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", common.ErrConflict, err)
	case isTransient(err):
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	return err
}

// Wrap is Classify for repositories: unclassified errors are wrapped as
// "db error".
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) || isTransient(err) {
		return Classify(err)
	}
	return fmt.Errorf("db error: %w", err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected)
}
