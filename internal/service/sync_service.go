package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/repository"
	"github.com/maheshrc27/socialbridge/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SyncService pulls posts from the platform, imports the ones it has not seen
// and hands each new post to the webhook dispatcher. SyncAll is the routine
// entry point used by the scheduler; SyncConnection with options is the
// on-demand capped mode that never moves the watermark.
type SyncService interface {
	SyncAll(ctx context.Context)
	SyncConnection(ctx context.Context, conn *models.Connection, opts *transfer.SyncOptions) (*transfer.SyncResult, error)
	SyncByID(ctx context.Context, userID, connectionID string, opts *transfer.SyncOptions) (*transfer.SyncResult, error)
}

type syncService struct {
	cfg config.Config
	cr  repository.ConnectionRepository
	pr  repository.PostRepository
	am  repository.AttachmentMappingRepository
	ts  TokenService
	fb  FacebookService
	wh  WebhookService
	ids IdentityService
}

func NewSyncService(
	cfg config.Config,
	cr repository.ConnectionRepository,
	pr repository.PostRepository,
	am repository.AttachmentMappingRepository,
	ts TokenService,
	fb FacebookService,
	wh WebhookService,
	ids IdentityService) SyncService {
	return &syncService{
		cfg: cfg,
		cr:  cr,
		pr:  pr,
		am:  am,
		ts:  ts,
		fb:  fb,
		wh:  wh,
		ids: ids,
	}
}

// SyncByID is the on-demand entry point. An empty userID skips the access
// check; the background worker uses that after the enqueueing request was
// already authorized.
func (s *syncService) SyncByID(ctx context.Context, userID, connectionID string, opts *transfer.SyncOptions) (*transfer.SyncResult, error) {
	conn, err := s.cr.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: connection %s", ErrNotFound, connectionID)
	}

	if userID != "" {
		hasAccess, err := s.ids.UserHasOrganization(ctx, userID, conn.OrgID)
		if err != nil {
			return nil, err
		}
		if !hasAccess {
			return nil, fmt.Errorf("%w: connection %s", ErrForbidden, connectionID)
		}
	}

	if !conn.IsActive {
		return nil, fmt.Errorf("%w: connection %s is not active", ErrBadRequest, connectionID)
	}

	return s.SyncConnection(ctx, conn, opts)
}

// SyncAll runs every active connection in sequence. A failing connection is
// logged and skipped so one revoked token cannot stall the rest of the batch.
func (s *syncService) SyncAll(ctx context.Context) {
	connections, err := s.cr.ListActive(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, conn := range connections {
		result, err := s.SyncConnection(ctx, conn, nil)
		if err != nil {
			slog.Warn("connection sync failed", "connection_id", conn.ID, "error", err.Error())
			continue
		}
		slog.Info("connection synced", "connection_id", conn.ID, "posts_processed", result.PostsProcessed)
	}
}

func (s *syncService) SyncConnection(ctx context.Context, conn *models.Connection, opts *transfer.SyncOptions) (*transfer.SyncResult, error) {
	startedAt := time.Now()

	if s.ts.ShouldRefresh(conn) {
		refreshed, err := s.ts.Refresh(ctx, conn)
		if err != nil {
			if errors.Is(err, ErrAuthExpired) {
				return nil, err
			}
			// Transient exchange failure. The stored token may still work,
			// so the cycle continues with it.
			slog.Warn("token refresh failed, continuing with stored token", "connection_id", conn.ID, "error", err.Error())
		} else {
			conn = refreshed
		}
	}

	accessToken, err := s.ts.DecryptedToken(conn)
	if err != nil {
		return nil, err
	}

	var since int64
	var maxPosts int
	if opts == nil {
		if conn.LastSyncAt != nil && !conn.LastSyncAt.IsZero() {
			since = conn.LastSyncAt.Unix()
		} else {
			since = time.Now().Add(-24 * time.Hour).Unix()
		}
	} else {
		// Capped mode walks the recent window from the top regardless of
		// what was synced before.
		since = 0
		maxPosts = opts.Window
	}

	feed, err := s.fb.FetchFeed(ctx, conn.TargetID(), accessToken, since, conn.PageID != "", maxPosts)
	if err != nil {
		if IsAuthFailure(err) {
			slog.Warn("feed fetch rejected, deactivating connection", "connection_id", conn.ID)
			if deactivateErr := s.cr.SetActive(ctx, conn.ID, false); deactivateErr != nil {
				slog.Info(deactivateErr.Error())
			}
			return nil, fmt.Errorf("%w: %v", ErrAuthExpired, err)
		}
		return nil, err
	}

	if opts != nil {
		feed = sliceWindow(feed, opts.Offset, opts.Limit)
	}

	processed := 0
	for _, item := range feed {
		imported, err := s.importPost(ctx, conn, accessToken, item)
		if err != nil {
			slog.Warn("failed to import post", "connection_id", conn.ID, "facebook_post_id", item.ID, "error", err.Error())
			continue
		}
		if imported {
			processed++
		}
	}

	// The watermark only advances on routine cycles; a capped inspection must
	// not swallow posts the next routine cycle would otherwise pick up.
	if opts == nil {
		if err := s.cr.SetLastSyncAt(ctx, conn.ID, startedAt); err != nil {
			slog.Info(err.Error())
		}
	}

	return &transfer.SyncResult{PostsProcessed: processed}, nil
}

func sliceWindow(feed []transfer.FeedPost, offset, limit int) []transfer.FeedPost {
	if offset >= len(feed) {
		return nil
	}
	feed = feed[offset:]
	if limit > 0 && limit < len(feed) {
		feed = feed[:limit]
	}
	return feed
}

// importPost creates and delivers one feed item, returning false when the
// item was already known and therefore skipped.
func (s *syncService) importPost(ctx context.Context, conn *models.Connection, accessToken string, item transfer.FeedPost) (bool, error) {
	existing, err := s.pr.GetByFacebookPostID(ctx, item.ID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if s.cfg.RedeliverOnResync {
			metadata, err := decodeMetadata(existing.Metadata)
			if err != nil {
				slog.Info(err.Error())
				metadata = nil
			}
			if _, err := s.wh.Deliver(ctx, existing, metadata); err != nil {
				slog.Info(err.Error())
			}
		}
		return false, nil
	}

	attachments := s.fb.FetchAttachments(ctx, item.ID, accessToken)

	// A feed item whose media was already imported under another post is a
	// crosspost of the same content, not a new post.
	for _, att := range attachments {
		if att.ID == "" {
			continue
		}
		mappedPostID, err := s.am.GetPostID(ctx, conn.ID, att.ID)
		if err != nil {
			return false, err
		}
		if mappedPostID != "" && mappedPostID != item.ID {
			slog.Info("skipping crosspost", "facebook_post_id", item.ID, "original_post_id", mappedPostID)
			return false, nil
		}
	}

	content := item.Message
	if content == "" {
		content = item.Story
	}

	postType := item.Type
	if postType == "" {
		postType = "status"
	}

	metadata := &transfer.PostMetadata{
		PermalinkURL: item.PermalinkURL,
		Link:         item.Link,
		Story:        item.Story,
		Attachments:  attachments,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return false, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return false, err
	}

	post := &models.Post{
		ID:             id,
		OrgID:          conn.OrgID,
		ConnectionID:   conn.ID,
		FacebookPostID: item.ID,
		Content:        content,
		PostType:       postType,
		Metadata:       metadataJSON,
		PostedAt:       parsePostedAt(item.CreatedTime),
	}

	if err := s.pr.Create(ctx, post); err != nil {
		return false, err
	}

	for _, att := range attachments {
		if att.ID == "" {
			continue
		}
		if err := s.am.Upsert(ctx, conn.ID, att.ID, item.ID); err != nil {
			slog.Info(err.Error())
		}
	}

	if _, err := s.wh.Deliver(ctx, post, metadata); err != nil {
		slog.Info(err.Error())
	}

	return true, nil
}

func decodeMetadata(raw json.RawMessage) (*transfer.PostMetadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var metadata transfer.PostMetadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode post metadata: %w", err)
	}
	return &metadata, nil
}

// parsePostedAt accepts the Graph timestamp format and falls back to the
// fetch time when the platform sends something unparseable.
func parsePostedAt(createdTime string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339} {
		if t, err := time.Parse(layout, createdTime); err == nil {
			return t
		}
	}
	return time.Now()
}
