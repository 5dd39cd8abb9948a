package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/cryptox"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/timex"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// MaxCodeAttempts is the number of wrong guesses after which the pending
// code is discarded and a new one has to be requested.
const MaxCodeAttempts = 5

// VerificationService issues and confirms email verification codes. Both
// operations lock the owning account row, so for one account they never
// interleave.
type VerificationService struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	notifier    Notifier
	clock       timex.Clock
	ttl         time.Duration
	timeout     time.Duration
	log         logging.Logger
}

func NewVerificationService(tx dbx.Transactor, m repomanager.RepositoryManager, n Notifier,
	clock timex.Clock, ttl, timeout time.Duration, l logging.Logger) *VerificationService {
	return &VerificationService{
		tx:          tx,
		repomanager: m,
		notifier:    n,
		clock:       clock,
		ttl:         ttl,
		timeout:     timeout,
		log:         l.With("module", "verification"),
	}
}

func hashCode(accountID, code string) string {
	return cryptox.Digest(accountID, code)
}

// Issue replaces any pending code of an UNAUTHORIZED account with a fresh
// one and sends it. Accounts in any other state get common.ErrForbidden.
func (s *VerificationService) Issue(ctx context.Context, accountID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		account, err := s.repomanager.Accounts(tx).GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account.Status != models.StatusUnauthorized {
			return common.ErrForbidden
		}
		return s.issue(ctx, tx, account)
	})

	return deadline(err)
}

// issue runs inside the caller's transaction, which must hold the account
// row lock. The notification is sent before commit: if it fails the code
// is rolled back with everything else.
func (s *VerificationService) issue(ctx context.Context, tx dbx.DBTX, account *models.Account) error {
	codes := s.repomanager.VerificationCodes(tx)

	if err := codes.DeleteUnconsumed(ctx, account.ID); err != nil {
		return fmt.Errorf("invalidate codes: %w", err)
	}

	code, err := common.RandomDigits(CodeLength)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	now := s.clock.Now()
	_, err = codes.Create(ctx, &models.VerificationCode{
		AccountID: account.ID,
		CodeHash:  hashCode(account.ID, code),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if err := s.notifier.SendVerificationCode(ctx, account.Email, code); err != nil {
		if errors.Is(err, common.ErrNotificationUnavailable) || expired(err) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrNotificationUnavailable, err)
	}

	s.log.Info(ctx, "verification code issued", "account_id", account.ID, "expires_at", now.Add(s.ttl))
	return nil
}

// Confirm consumes a matching code and promotes the account from
// UNAUTHORIZED to ENABLED. The returned account reflects the new state.
func (s *VerificationService) Confirm(ctx context.Context, accountID, code string) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var (
		account  *models.Account
		rejected error
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := s.repomanager.Accounts(tx)

		a, err := accounts.GetByIDForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrCodeNotFound
			}
			return err
		}

		now := s.clock.Now()
		if err := s.consume(ctx, tx, accountID, code, now); err != nil {
			if !errors.Is(err, common.ErrCodeNotFound) {
				return err
			}
			// The miss is committed so the count survives the rejection.
			rejected = err
			return s.miss(ctx, tx, accountID)
		}

		if !a.Transition(models.StatusEnabled, now) {
			return common.ErrForbidden
		}
		a.UpdatedAt = now

		if err := accounts.Update(ctx, a); err != nil {
			return err
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, deadline(err)
	}
	if rejected != nil {
		return nil, rejected
	}

	s.log.Info(ctx, "email verified", "account_id", accountID)
	return account, nil
}

func (s *VerificationService) consume(ctx context.Context, tx dbx.DBTX, accountID, code string, now time.Time) error {
	codes := s.repomanager.VerificationCodes(tx)

	c, err := codes.FindByHash(ctx, accountID, hashCode(accountID, code))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrCodeNotFound
		}
		return err
	}

	if c.IsExpired(now) {
		return common.ErrCodeExpired
	}
	if c.Consumed {
		return common.ErrCodeAlreadyUsed
	}

	return codes.MarkConsumed(ctx, c.ID, now)
}

// miss records a wrong guess and discards the pending code once
// MaxCodeAttempts is reached.
func (s *VerificationService) miss(ctx context.Context, tx dbx.DBTX, accountID string) error {
	codes := s.repomanager.VerificationCodes(tx)

	n, err := codes.RecordFailedAttempt(ctx, accountID)
	if err != nil {
		return err
	}
	if n < MaxCodeAttempts {
		return nil
	}

	if err := codes.DeleteUnconsumed(ctx, accountID); err != nil {
		return fmt.Errorf("invalidate codes: %w", err)
	}
	s.log.Warn(ctx, "verification code discarded after failed attempts", "account_id", accountID, "attempts", n)
	return nil
}
