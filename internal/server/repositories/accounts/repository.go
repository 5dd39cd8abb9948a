// Package accounts declares the Account Store contract. The store is the
// authority for login code and email uniqueness: a violated constraint is
// reported as common.ErrConflict.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

type Repository interface {
	// Create inserts a new account. Duplicate login code or email yields common.ErrConflict.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByID returns common.ErrorNotFound when no account has the id.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetByIDForUpdate is GetByID that also locks the row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error)

	// GetByLoginCode returns common.ErrorNotFound when absent.
	GetByLoginCode(ctx context.Context, loginCode string) (*models.Account, error)

	// ExistsByLoginCodeOrEmail reports whether any account, in any status,
	// uses loginCode or email.
	ExistsByLoginCodeOrEmail(ctx context.Context, loginCode, email string) (bool, error)

	// Update writes every mutable column. Duplicate email yields common.ErrConflict.
	Update(ctx context.Context, account *models.Account) error
}
