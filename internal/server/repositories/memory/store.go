// Package memory is an in-process implementation of the repository
// contracts. It backs the server when no database DSN is configured and
// gives service tests the same transactional guarantees as PostgreSQL:
// transactions are serialized and a failed unit of work leaves no trace.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/posts"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/verificationcodes"
)

type state struct {
	accounts    map[string]models.Account
	codes       map[int64]models.VerificationCode
	posts       map[string]models.Post
	media       map[int64]models.PostMedia
	nextCodeID  int64
	nextMediaID int64
}

func (s *state) clone() *state {
	c := &state{
		accounts:    make(map[string]models.Account, len(s.accounts)),
		codes:       make(map[int64]models.VerificationCode, len(s.codes)),
		posts:       make(map[string]models.Post, len(s.posts)),
		media:       make(map[int64]models.PostMedia, len(s.media)),
		nextCodeID:  s.nextCodeID,
		nextMediaID: s.nextMediaID,
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.codes {
		if v.ConsumedAt != nil {
			t := *v.ConsumedAt
			v.ConsumedAt = &t
		}
		c.codes[k] = v
	}
	for k, v := range s.posts {
		c.posts[k] = v
	}
	for k, v := range s.media {
		c.media[k] = v
	}
	return c
}

// Store implements repomanager.RepositoryManager and dbx.Transactor.
//
// Committed state is replaced as a whole on commit. A transaction works on
// its own copy, so readers outside it never observe its writes.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
}

func NewStore() *Store {
	return &Store{data: (&state{}).clone()}
}

// Tx is the handle WithinTx passes to its unit of work. Repositories bound
// to it read and write the transaction's copy. It carries no SQL
// connection.
type Tx struct {
	data *state
}

var errNoSQL = errors.New("memory: SQL is not supported")

func (*Tx) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, errNoSQL }
func (*Tx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, errNoSQL }
func (*Tx) QueryRowContext(context.Context, string, ...any) *sql.Row       { return nil }

// Conn returns nil: repositories bound to a nil handle read committed state.
func (s *Store) Conn() dbx.DBTX { return nil }

// WithinTx runs fn against a private copy of the committed state and
// publishes the copy only if fn succeeds while ctx is still live.
// Transactions are serialized.
func (s *Store) WithinTx(ctx context.Context, fn dbx.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return dbx.Classify(err)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	tx := &Tx{data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dbx.Classify(err)
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

// read returns the state visible to db and a release func.
func (s *Store) read(db dbx.DBTX) (*state, func()) {
	if tx, ok := db.(*Tx); ok {
		return tx.data, func() {}
	}
	s.mu.RLock()
	return s.data, s.mu.RUnlock
}

// write returns the state db may modify. Outside a transaction the write
// is applied to committed state directly and waits for running
// transactions, so it cannot be lost on their commit.
func (s *Store) write(db dbx.DBTX) (*state, func()) {
	if tx, ok := db.(*Tx); ok {
		return tx.data, func() {}
	}
	s.txMu.Lock()
	s.mu.Lock()
	return s.data, func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Accounts(db dbx.DBTX) accounts.Repository {
	return &AccountRepository{store: s, db: db}
}

func (s *Store) VerificationCodes(db dbx.DBTX) verificationcodes.Repository {
	return &VerificationCodeRepository{store: s, db: db}
}

func (s *Store) Posts(db dbx.DBTX) posts.Repository {
	return &PostRepository{store: s, db: db}
}

func sortedMedia(m map[int64]models.PostMedia, postID string) []*models.PostMedia {
	var out []*models.PostMedia
	for _, v := range m {
		if v.PostID == postID {
			item := v
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
