package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

const accountColumns = `id, login_code, password_hash, name, email, introduction, status, role,
		status_changed_at, profile_image_url, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (id, login_code, password_hash, name, email, introduction, status, role,
			status_changed_at, profile_image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.LoginCode, a.PasswordHash, a.Name, a.Email, a.Introduction, a.Status, a.Role,
		a.StatusChangedAt, a.ProfileImageURL, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return nil, dbx.Wrap(err)
	}

	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByLoginCode(ctx context.Context, loginCode string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE login_code = $1`
	return r.getOne(ctx, query, loginCode)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.LoginCode, &a.PasswordHash, &a.Name, &a.Email, &a.Introduction, &a.Status, &a.Role,
		&a.StatusChangedAt, &a.ProfileImageURL, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Wrap(err)
	}

	return a, nil
}

func (r *PostgresRepository) ExistsByLoginCodeOrEmail(ctx context.Context, loginCode, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE login_code = $1 OR lower(email) = lower($2))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, loginCode, email).Scan(&exists); err != nil {
		return false, dbx.Wrap(err)
	}

	return exists, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Account) error {
	query :=
		`UPDATE accounts SET password_hash = $2, name = $3, email = $4, introduction = $5,
			status = $6, role = $7, status_changed_at = $8, profile_image_url = $9, updated_at = $10
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.PasswordHash, a.Name, a.Email, a.Introduction,
		a.Status, a.Role, a.StatusChangedAt, a.ProfileImageURL, a.UpdatedAt)
	if err != nil {
		return dbx.Wrap(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
