package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/auth"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/repomanager"
)

// ElevatedRole may act on resources it does not own.
const ElevatedRole = models.RoleAdmin

// ResourceGuard applies auth.RequireOwnerOrRole to stored resources. Before
// the ownership check it reloads the acting account, so a token minted
// before resignation cannot mutate anything.
type ResourceGuard struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
}

func NewResourceGuard(tx dbx.Transactor, m repomanager.RepositoryManager) *ResourceGuard {
	return &ResourceGuard{tx: tx, repomanager: m}
}

// actor rebuilds the principal from the store. Missing or DISABLED
// accounts are forbidden.
func (g *ResourceGuard) actor(ctx context.Context, db dbx.DBTX, p models.Principal) (*models.Account, models.Principal, error) {
	if p.AccountID == "" {
		return nil, models.Principal{}, common.ErrForbidden
	}

	a, err := g.repomanager.Accounts(db).GetByID(ctx, p.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, models.Principal{}, common.ErrForbidden
		}
		return nil, models.Principal{}, err
	}
	if a.IsDisabled() {
		return nil, models.Principal{}, common.ErrForbidden
	}

	return a, models.Principal{AccountID: a.ID, LoginCode: a.LoginCode, Role: a.Role, Status: a.Status}, nil
}

// authorizeAccount returns the acting account and the target account. The
// target row is locked when db is a transaction. A foreign, missing or
// DISABLED target is reported as common.ErrForbidden, never as not found.
func (g *ResourceGuard) authorizeAccount(ctx context.Context, db dbx.DBTX, p models.Principal, targetID string) (actor, target *models.Account, err error) {
	actor, fresh, err := g.actor(ctx, db, p)
	if err != nil {
		return nil, nil, err
	}

	if err := auth.RequireOwnerOrRole(fresh, targetID, ElevatedRole); err != nil {
		return nil, nil, err
	}

	target, err = g.repomanager.Accounts(db).GetByIDForUpdate(ctx, targetID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrForbidden
		}
		return nil, nil, err
	}
	if target.IsDisabled() {
		return nil, nil, common.ErrForbidden
	}

	if target.ID == actor.ID {
		actor = target
	}
	return actor, target, nil
}

// AuthorizeAccount checks that p may mutate the account targetID.
func (g *ResourceGuard) AuthorizeAccount(ctx context.Context, p models.Principal, targetID string) error {
	_, _, err := g.authorizeAccount(ctx, g.tx.Conn(), p, targetID)
	return deadline(err)
}

func (g *ResourceGuard) authorizePost(ctx context.Context, db dbx.DBTX, p models.Principal, postID string) error {
	_, fresh, err := g.actor(ctx, db, p)
	if err != nil {
		return err
	}

	ownerID, err := g.repomanager.Posts(db).GetOwnerID(ctx, postID)
	if err != nil {
		return err
	}

	return auth.RequireOwnerOrRole(fresh, ownerID, ElevatedRole)
}

// AuthorizePost checks that p may update or delete the post, or a comment
// under it. Unknown posts yield common.ErrorNotFound.
func (g *ResourceGuard) AuthorizePost(ctx context.Context, p models.Principal, postID string) error {
	return deadline(g.authorizePost(ctx, g.tx.Conn(), p, postID))
}
