// Package verificationcodes declares the storage contract for email
// verification codes.
package verificationcodes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

// Repository stores verification codes. Callers serialize issue and
// confirm per account by running them in one transaction that locks the
// account row.
type Repository interface {
	// DeleteUnconsumed drops every pending code of the account so that a
	// newly issued code replaces, rather than joins, the earlier ones.
	DeleteUnconsumed(ctx context.Context, accountID string) error

	// Create stores c and fills in its ID.
	Create(ctx context.Context, c *models.VerificationCode) (*models.VerificationCode, error)

	// FindByHash returns the latest code of the account with the given hash,
	// consumed or not, or common.ErrorNotFound.
	FindByHash(ctx context.Context, accountID, codeHash string) (*models.VerificationCode, error)

	// MarkConsumed flips the consumed flag exactly once. A code that is
	// already consumed yields common.ErrCodeAlreadyUsed.
	MarkConsumed(ctx context.Context, id int64, at time.Time) error

	// RecordFailedAttempt counts a wrong guess against the pending code of
	// the account and returns the new count. It returns 0 when nothing is
	// pending.
	RecordFailedAttempt(ctx context.Context, accountID string) (int, error)
}
