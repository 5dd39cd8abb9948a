package memory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

type PostRepository struct {
	store *Store
	db    dbx.DBTX
}

func (r *PostRepository) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbx.Classify(err)
	}

	data, done := r.store.write(r.db)
	defer done()

	if _, ok := data.posts[p.ID]; ok {
		return nil, fmt.Errorf("%w: post id %s", common.ErrConflict, p.ID)
	}
	data.posts[p.ID] = *p
	return p, nil
}

func (r *PostRepository) GetOwnerID(ctx context.Context, postID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", dbx.Classify(err)
	}

	data, done := r.store.read(r.db)
	defer done()

	p, ok := data.posts[postID]
	if !ok {
		return "", common.ErrorNotFound
	}
	return p.OwnerID, nil
}

func (r *PostRepository) AddMedia(ctx context.Context, m *models.PostMedia) (*models.PostMedia, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbx.Classify(err)
	}

	data, done := r.store.write(r.db)
	defer done()

	if _, ok := data.posts[m.PostID]; !ok {
		return nil, common.ErrorNotFound
	}
	data.nextMediaID++
	m.ID = data.nextMediaID
	data.media[m.ID] = *m
	return m, nil
}

func (r *PostRepository) ListMedia(ctx context.Context, postID string) ([]*models.PostMedia, error) {
	if err := ctx.Err(); err != nil {
		return nil, dbx.Classify(err)
	}

	data, done := r.store.read(r.db)
	defer done()

	return sortedMedia(data.media, postID), nil
}
