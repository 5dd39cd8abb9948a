package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/posts"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/verificationcodes"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// service code runs against a pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	VerificationCodes(db dbx.DBTX) verificationcodes.Repository
	Posts(db dbx.DBTX) posts.Repository
}
