package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

type VerificationCodeRepository struct {
	store *Store
	db    dbx.DBTX
}

func (r *VerificationCodeRepository) DeleteUnconsumed(ctx context.Context, accountID string) error {
	if err := ctx.Err(); err != nil {
		return dbx.Classify(err)
	}

	data, done := r.store.write(r.db)
	defer done()

	for id, c := range data.codes {
		if c.AccountID == accountID && !c.Consumed {
			delete(data.codes, id)
		}
	}
	return nil
}

func (r *VerificationCodeRepository) Create(ctx context.Context, c *models.VerificationCode) (*models.VerificationCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbx.Classify(err)
	}

	data, done := r.store.write(r.db)
	defer done()

	data.nextCodeID++
	c.ID = data.nextCodeID
	data.codes[c.ID] = *c
	return c, nil
}

func (r *VerificationCodeRepository) FindByHash(ctx context.Context, accountID, codeHash string) (*models.VerificationCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbx.Classify(err)
	}

	data, done := r.store.read(r.db)
	defer done()

	var latest *models.VerificationCode
	for _, c := range data.codes {
		if c.AccountID != accountID || c.CodeHash != codeHash {
			continue
		}
		if latest == nil || c.ID > latest.ID {
			item := c
			latest = &item
		}
	}
	if latest == nil {
		return nil, common.ErrorNotFound
	}
	return latest, nil
}

func (r *VerificationCodeRepository) MarkConsumed(ctx context.Context, id int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return dbx.Classify(err)
	}

	data, done := r.store.write(r.db)
	defer done()

	c, ok := data.codes[id]
	if !ok || c.Consumed {
		return common.ErrCodeAlreadyUsed
	}
	c.Consumed = true
	c.ConsumedAt = &at
	data.codes[id] = c
	return nil
}

func (r *VerificationCodeRepository) RecordFailedAttempt(ctx context.Context, accountID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, dbx.Classify(err)
	}

	data, done := r.store.write(r.db)
	defer done()

	n := 0
	for id, c := range data.codes {
		if c.AccountID != accountID || c.Consumed {
			continue
		}
		c.FailedAttempts++
		data.codes[id] = c
		n = max(n, c.FailedAttempts)
	}
	return n, nil
}
