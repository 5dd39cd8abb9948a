package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

type AccountRepository struct {
	store *Store
	db    dbx.DBTX
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbx.Classify(err)
	}

	data, done := r.store.write(r.db)
	defer done()

	if _, ok := data.accounts[a.ID]; ok {
		return nil, fmt.Errorf("%w: account id %s", common.ErrConflict, a.ID)
	}
	for _, existing := range data.accounts {
		if existing.LoginCode == a.LoginCode {
			return nil, fmt.Errorf("%w: login code", common.ErrConflict)
		}
		if strings.EqualFold(existing.Email, a.Email) {
			return nil, fmt.Errorf("%w: email", common.ErrConflict)
		}
	}

	data.accounts[a.ID] = *a
	return a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.find(ctx, func(a *models.Account) bool { return a.ID == id })
}

// GetByIDForUpdate relies on WithinTx serialization instead of row locks.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *AccountRepository) GetByLoginCode(ctx context.Context, loginCode string) (*models.Account, error) {
	return r.find(ctx, func(a *models.Account) bool { return a.LoginCode == loginCode })
}

func (r *AccountRepository) ExistsByLoginCodeOrEmail(ctx context.Context, loginCode, email string) (bool, error) {
	_, err := r.find(ctx, func(a *models.Account) bool { return a.LoginCode == loginCode || strings.EqualFold(a.Email, email) })
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (r *AccountRepository) Update(ctx context.Context, a *models.Account) error {
	if err := ctx.Err(); err != nil {
		return dbx.Classify(err)
	}

	data, done := r.store.write(r.db)
	defer done()

	current, ok := data.accounts[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	for id, existing := range data.accounts {
		if id != a.ID && strings.EqualFold(existing.Email, a.Email) {
			return fmt.Errorf("%w: email", common.ErrConflict)
		}
	}

	updated := *a
	updated.LoginCode = current.LoginCode
	updated.CreatedAt = current.CreatedAt
	data.accounts[a.ID] = updated
	return nil
}

func (r *AccountRepository) find(ctx context.Context, match func(*models.Account) bool) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbx.Classify(err)
	}

	data, done := r.store.read(r.db)
	defer done()

	for _, a := range data.accounts {
		if match(&a) {
			out := a
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}
