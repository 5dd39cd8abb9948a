package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/auth"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/events"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/validator"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/timex"
)

// AccountService orchestrates signup, activation, sign-in, profile
// changes and resignation.
type AccountService struct {
	tx           dbx.Transactor
	repomanager  repomanager.RepositoryManager
	encoder      auth.PasswordEncoder
	sessions     SessionIssuer
	verification *VerificationService
	guard        *ResourceGuard
	events       EventPublisher
	clock        timex.Clock
	timeout      time.Duration
	log          logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

type AccountServiceDeps struct {
	Tx           dbx.Transactor
	Repos        repomanager.RepositoryManager
	Encoder      auth.PasswordEncoder
	Sessions     SessionIssuer
	Verification *VerificationService
	Guard        *ResourceGuard
	Events       EventPublisher
	Clock        timex.Clock
	Timeout      time.Duration
	Logger       logging.Logger
}

func NewAccountService(d AccountServiceDeps) *AccountService {
	return &AccountService{
		tx:           d.Tx,
		repomanager:  d.Repos,
		encoder:      d.Encoder,
		sessions:     d.Sessions,
		verification: d.Verification,
		guard:        d.Guard,
		events:       d.Events,
		clock:        d.Clock,
		timeout:      d.Timeout,
		log:          d.Logger.With("module", "accounts"),
	}
}

// Signup registers an UNAUTHORIZED account and sends its first
// verification code. Account, code and notification succeed or fail
// together.
func (s *AccountService) Signup(ctx context.Context, req models.SignupRequest) (*models.AccountSummary, error) {
	if err := validator.Signup(req).Err(); err != nil {
		return nil, err
	}
	req.Email = models.NormalizeEmail(req.Email)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	hash, err := s.encoder.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &models.Account{
		ID:              uuid.NewString(),
		LoginCode:       req.LoginCode,
		PasswordHash:    hash,
		Name:            req.Name,
		Email:           req.Email,
		Introduction:    req.Introduction,
		Status:          models.StatusUnauthorized,
		Role:            models.RoleUser,
		StatusChangedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := s.repomanager.Accounts(tx)

		exists, err := accounts.ExistsByLoginCodeOrEmail(ctx, req.LoginCode, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrConflict
		}

		// The unique constraints remain the authority for concurrent signups.
		if _, err := accounts.Create(ctx, account); err != nil {
			return err
		}

		return s.verification.issue(ctx, tx, account)
	})
	if err != nil {
		return nil, deadline(err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID)
	publish(ctx, s.events, s.log, events.Event{
		Type:       events.AccountRegistered,
		AccountID:  account.ID,
		OccurredAt: now,
		Attributes: map[string]string{"login_code": account.LoginCode},
	})

	return account.Summary(), nil
}

// ConfirmEmail consumes a verification code and enables the account.
func (s *AccountService) ConfirmEmail(ctx context.Context, accountID, code string) (*models.AccountSummary, error) {
	account, err := s.verification.Confirm(ctx, accountID, code)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, s.log, events.Event{
		Type:       events.AccountActivated,
		AccountID:  account.ID,
		OccurredAt: account.StatusChangedAt,
	})

	return account.Summary(), nil
}

// ResendVerificationCode issues a new code for the principal's own
// account, superseding the previous one.
func (s *AccountService) ResendVerificationCode(ctx context.Context, p models.Principal) error {
	if p.AccountID == "" {
		return common.ErrForbidden
	}

	err := s.verification.Issue(ctx, p.AccountID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrForbidden
	}
	return err
}

// Authenticate checks credentials and issues a session token. Unknown
// login codes and wrong passwords fail alike; both wrap common.ErrAuthFailed.
func (s *AccountService) Authenticate(ctx context.Context, loginCode, password string) (*models.Session, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repomanager.Accounts(s.tx.Conn()).GetByLoginCode(ctx, loginCode)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Spend the same hashing time as a real comparison.
			s.encoder.Matches(password, s.fakeHash())
			return nil, common.ErrAccountNotFound
		}
		return nil, deadline(err)
	}

	if account.IsDisabled() {
		return nil, common.ErrAccountDisabled
	}

	if !s.encoder.Matches(password, account.PasswordHash) {
		s.log.Info(ctx, "authentication failed", "account_id", account.ID)
		return nil, common.ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(models.Principal{
		AccountID: account.ID,
		LoginCode: account.LoginCode,
		Role:      account.Role,
		Status:    account.Status,
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (s *AccountService) fakeHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.encoder.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// VerifyToken checks a session token and returns the principal it carries.
// No store lookup happens here.
func (s *AccountService) VerifyToken(_ context.Context, token string) (models.Principal, error) {
	return s.sessions.Parse(token)
}

// GetProfile returns the public view of an account. DISABLED accounts are
// not visible.
func (s *AccountService) GetProfile(ctx context.Context, accountID string) (*models.AccountSummary, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	a, err := s.repomanager.Accounts(s.tx.Conn()).GetByID(ctx, accountID)
	if err != nil {
		return nil, deadline(err)
	}
	if a.IsDisabled() {
		return nil, common.ErrorNotFound
	}
	return a.Summary(), nil
}

// UpdateProfile changes name, email, introduction and optionally the
// password of targetID. The acting account's current password is
// re-verified.
func (s *AccountService) UpdateProfile(ctx context.Context, p models.Principal, targetID string, req models.UpdateProfileRequest) (*models.AccountSummary, error) {
	if err := validator.UpdateProfile(req).Err(); err != nil {
		return nil, err
	}
	req.Email = models.NormalizeEmail(req.Email)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var newHash string
	if req.NewPassword != "" {
		h, err := s.encoder.Hash(req.NewPassword)
		if err != nil {
			return nil, err
		}
		newHash = h
	}

	var updated *models.Account

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		actor, target, err := s.guard.authorizeAccount(ctx, tx, p, targetID)
		if err != nil {
			return err
		}

		if !s.encoder.Matches(req.CurrentPassword, actor.PasswordHash) {
			return common.ErrInvalidCredentials
		}

		if req.Name != "" {
			target.Name = req.Name
		}
		if req.Email != "" {
			target.Email = req.Email
		}
		if req.Introduction != "" {
			target.Introduction = req.Introduction
		}
		if newHash != "" {
			target.PasswordHash = newHash
		}
		target.UpdatedAt = s.clock.Now()

		if err := s.repomanager.Accounts(tx).Update(ctx, target); err != nil {
			return err
		}
		updated = target
		return nil
	})
	if err != nil {
		return nil, deadline(err)
	}

	s.log.Info(ctx, "profile updated", "account_id", targetID, "actor_id", p.AccountID)
	return updated.Summary(), nil
}

// Resign disables targetID after re-verifying the acting account's
// password. DISABLED is terminal.
func (s *AccountService) Resign(ctx context.Context, p models.Principal, targetID, password string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var at time.Time

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		actor, target, err := s.guard.authorizeAccount(ctx, tx, p, targetID)
		if err != nil {
			return err
		}

		if !s.encoder.Matches(password, actor.PasswordHash) {
			return common.ErrInvalidCredentials
		}

		at = s.clock.Now()
		if !target.Transition(models.StatusDisabled, at) {
			return fmt.Errorf("%w: account cannot be disabled from %s", common.ErrForbidden, target.Status)
		}
		target.UpdatedAt = at

		return s.repomanager.Accounts(tx).Update(ctx, target)
	})
	if err != nil {
		return deadline(err)
	}

	s.log.Info(ctx, "account resigned", "account_id", targetID, "actor_id", p.AccountID)
	publish(ctx, s.events, s.log, events.Event{
		Type:       events.AccountResigned,
		AccountID:  targetID,
		OccurredAt: at,
	})
	return nil
}
