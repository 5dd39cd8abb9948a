package verificationcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) DeleteUnconsumed(ctx context.Context, accountID string) error {
	query := `DELETE FROM verification_codes WHERE account_id = $1 AND NOT consumed`

	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return dbx.Wrap(err)
	}

	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.VerificationCode) (*models.VerificationCode, error) {
	query :=
		`INSERT INTO verification_codes (account_id, code_hash, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, c.AccountID, c.CodeHash, c.IssuedAt, c.ExpiresAt).Scan(&c.ID)
	if err != nil {
		return nil, dbx.Wrap(err)
	}

	return c, nil
}

func (r *PostgresRepository) FindByHash(ctx context.Context, accountID, codeHash string) (*models.VerificationCode, error) {
	query :=
		`SELECT id, account_id, code_hash, issued_at, expires_at, consumed, consumed_at, failed_attempts
		 FROM verification_codes
		 WHERE account_id = $1 AND code_hash = $2
		 ORDER BY issued_at DESC, id DESC
		 LIMIT 1`

	c := &models.VerificationCode{}
	var consumedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, accountID, codeHash).Scan(
		&c.ID, &c.AccountID, &c.CodeHash, &c.IssuedAt, &c.ExpiresAt, &c.Consumed, &consumedAt, &c.FailedAttempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Wrap(err)
	}

	if consumedAt.Valid {
		t := consumedAt.Time
		c.ConsumedAt = &t
	}

	return c, nil
}

func (r *PostgresRepository) MarkConsumed(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE verification_codes SET consumed = TRUE, consumed_at = $2 WHERE id = $1 AND NOT consumed`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return dbx.Wrap(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrCodeAlreadyUsed
	}

	return nil
}

func (r *PostgresRepository) RecordFailedAttempt(ctx context.Context, accountID string) (int, error) {
	query :=
		`UPDATE verification_codes SET failed_attempts = failed_attempts + 1
		 WHERE account_id = $1 AND NOT consumed
		 RETURNING failed_attempts`

	var n int
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, dbx.Wrap(err)
	}
	return n, nil
}
