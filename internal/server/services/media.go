package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/events"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/timex"
)

// acceptedMedia maps declared content types to the image format name the
// registered decoders report.
var acceptedMedia = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/tiff": "tiff",
	"image/bmp":  "bmp",
}

// MediaService validates uploads, stores them and records the returned
// reference on the owning account or post.
type MediaService struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	guard       *ResourceGuard
	storage     StorageClient
	events      EventPublisher
	clock       timex.Clock
	maxSize     int64
	timeout     time.Duration
	log         logging.Logger
}

type MediaServiceDeps struct {
	Tx      dbx.Transactor
	Repos   repomanager.RepositoryManager
	Guard   *ResourceGuard
	Storage StorageClient
	Events  EventPublisher
	Clock   timex.Clock
	MaxSize int64
	Timeout time.Duration
	Logger  logging.Logger
}

func NewMediaService(d MediaServiceDeps) *MediaService {
	return &MediaService{
		tx:          d.Tx,
		repomanager: d.Repos,
		guard:       d.Guard,
		storage:     d.Storage,
		events:      d.Events,
		clock:       d.Clock,
		maxSize:     d.MaxSize,
		timeout:     d.Timeout,
		log:         d.Logger.With("module", "media"),
	}
}

// CheckMedia returns the normalized content type of an acceptable file.
// The file must be non-empty, within the size limit, of an allowed image
// type and actually decode as that type.
func (s *MediaService) CheckMedia(f models.MediaFile) (string, error) {
	if len(f.Data) == 0 {
		return "", fmt.Errorf("%w: empty file", common.ErrUnsupportedMediaType)
	}
	if s.maxSize > 0 && int64(len(f.Data)) > s.maxSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", common.ErrUnsupportedMediaType, s.maxSize)
	}

	declared, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedMediaType, f.ContentType)
	}
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}

	want, ok := acceptedMedia[declared]
	if !ok {
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedMediaType, declared)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil || format != want {
		return "", fmt.Errorf("%w: content is not %s", common.ErrUnsupportedMediaType, declared)
	}

	return declared, nil
}

func (s *MediaService) upload(ctx context.Context, data []byte, contentType string) (string, error) {
	url, err := s.storage.Upload(ctx, data, contentType)
	if err == nil {
		return url, nil
	}
	if errors.Is(err, common.ErrStorageUnavailable) || errors.Is(err, common.ErrTimeout) || expired(err) {
		return "", err
	}
	return "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
}

// AttachProfileImage stores f and sets it as the profile image of targetID.
func (s *MediaService) AttachProfileImage(ctx context.Context, p models.Principal, targetID string, f models.MediaFile) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.guard.AuthorizeAccount(ctx, p, targetID); err != nil {
		return "", err
	}

	contentType, err := s.CheckMedia(f)
	if err != nil {
		return "", err
	}

	url, err := s.upload(ctx, f.Data, contentType)
	if err != nil {
		return "", deadline(err)
	}

	now := s.clock.Now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, target, err := s.guard.authorizeAccount(ctx, tx, p, targetID)
		if err != nil {
			return err
		}
		target.ProfileImageURL = url
		target.UpdatedAt = now
		return s.repomanager.Accounts(tx).Update(ctx, target)
	})
	if err != nil {
		s.log.Warn(ctx, "stored media left unreferenced", "url", url, "error", err)
		return "", deadline(err)
	}

	s.log.Info(ctx, "profile image attached", "account_id", targetID)
	publish(ctx, s.events, s.log, events.Event{
		Type:       events.ProfileImageChanged,
		AccountID:  targetID,
		OccurredAt: now,
		Attributes: map[string]string{"url": url},
	})
	return url, nil
}

// AttachPostMedia stores f and appends it to the media list of postID.
func (s *MediaService) AttachPostMedia(ctx context.Context, p models.Principal, postID string, f models.MediaFile) (*models.PostMedia, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.guard.AuthorizePost(ctx, p, postID); err != nil {
		return nil, err
	}

	contentType, err := s.CheckMedia(f)
	if err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, f.Data, contentType)
	if err != nil {
		return nil, deadline(err)
	}

	media := &models.PostMedia{PostID: postID, URL: url, ContentType: contentType, CreatedAt: s.clock.Now()}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.guard.authorizePost(ctx, tx, p, postID); err != nil {
			return err
		}
		_, err := s.repomanager.Posts(tx).AddMedia(ctx, media)
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "stored media left unreferenced", "url", url, "error", err)
		return nil, deadline(err)
	}

	publish(ctx, s.events, s.log, events.Event{
		Type:       events.PostMediaAttached,
		AccountID:  p.AccountID,
		OccurredAt: media.CreatedAt,
		Attributes: map[string]string{"post_id": postID, "url": url},
	})
	return media, nil
}
