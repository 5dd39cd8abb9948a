package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (id, owner_id, title, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	if _, err := r.db.ExecContext(ctx, query, p.ID, p.OwnerID, p.Title, p.Content, p.CreatedAt); err != nil {
		return nil, dbx.Wrap(err)
	}

	return p, nil
}

func (r *PostgresRepository) GetOwnerID(ctx context.Context, postID string) (string, error) {
	query := `SELECT owner_id FROM posts WHERE id = $1`

	var ownerID string
	if err := r.db.QueryRowContext(ctx, query, postID).Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", dbx.Wrap(err)
	}

	return ownerID, nil
}

func (r *PostgresRepository) AddMedia(ctx context.Context, m *models.PostMedia) (*models.PostMedia, error) {
	query :=
		`INSERT INTO post_media (post_id, url, content_type, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, m.PostID, m.URL, m.ContentType, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return nil, dbx.Wrap(err)
	}

	return m, nil
}

func (r *PostgresRepository) ListMedia(ctx context.Context, postID string) ([]*models.PostMedia, error) {
	query :=
		`SELECT id, post_id, url, content_type, created_at FROM post_media
		 WHERE post_id = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, dbx.Wrap(err)
	}
	defer rows.Close()

	var result []*models.PostMedia
	for rows.Next() {
		item := &models.PostMedia{}
		if err := rows.Scan(&item.ID, &item.PostID, &item.URL, &item.ContentType, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post media: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, dbx.Wrap(err)
	}

	return result, nil
}
