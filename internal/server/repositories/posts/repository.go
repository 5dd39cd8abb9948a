// Package posts exposes the slice of the post store the identity core
// needs: ownership lookups and the media list.
package posts

import (
	"context"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	// GetOwnerID returns common.ErrorNotFound for an unknown post.
	GetOwnerID(ctx context.Context, postID string) (string, error)
	AddMedia(ctx context.Context, media *models.PostMedia) (*models.PostMedia, error)
	ListMedia(ctx context.Context, postID string) ([]*models.PostMedia, error)
}
