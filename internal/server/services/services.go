// Package services implements the identity and authorization core:
// account lifecycle, verification codes, resource ownership checks and
// media attachment. Every operation takes the caller's Principal
// explicitly; nothing is read from ambient request state.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/events"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

// Notifier delivers verification codes.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// StorageClient stores media bytes and returns an addressable URL.
type StorageClient interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// EventPublisher receives lifecycle events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// SessionIssuer signs and verifies session tokens.
type SessionIssuer interface {
	Issue(p models.Principal) (models.Session, error)
	Parse(token string) (models.Principal, error)
}

// withTimeout bounds ctx by d; d <= 0 leaves ctx unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// deadline converts a context expiry that escaped a collaborator into the
// retryable timeout error. Other errors keep their class even when ctx has
// expired in the meantime.
func deadline(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrTimeout) {
		return err
	}
	if expired(err) {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	return err
}

// expired reports whether err is caused by a context deadline or
// cancellation.
func expired(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func publish(ctx context.Context, p EventPublisher, log logging.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		log.Warn(ctx, "event publish failed", "type", string(e.Type), "account_id", e.AccountID, "error", err)
	}
}
