package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	cr *fakeConnectionRepo
	pr *fakePostRepo
	am *fakeAttachmentMappingRepo
	wr *fakeWebsiteRepo
	dr *fakeDeliveryRepo
	fb *fakeFacebookService
	ss SyncService
}

func newSyncFixture(t *testing.T, fb *fakeFacebookService, connections ...*models.Connection) *syncFixture {
	t.Helper()
	return newSyncFixtureWithConfig(t, testConfig(), fb, connections...)
}

func newSyncFixtureWithConfig(t *testing.T, cfg config.Config, fb *fakeFacebookService, connections ...*models.Connection) *syncFixture {
	t.Helper()

	f := &syncFixture{
		cr: newFakeConnectionRepo(connections...),
		pr: newFakePostRepo(),
		am: newFakeAttachmentMappingRepo(),
		wr: newFakeWebsiteRepo(),
		dr: &fakeDeliveryRepo{},
		fb: fb,
	}

	ts := NewTokenService(cfg, fb, f.cr)
	ids := &fakeIdentityService{}
	wh := NewWebhookService(cfg, f.wr, f.pr, f.dr, f.cr, ts, fb, ids)
	f.ss = NewSyncService(cfg, f.cr, f.pr, f.am, ts, fb, wh, ids)
	return f
}

func activeConnection(t *testing.T, id string) *models.Connection {
	t.Helper()
	return &models.Connection{
		ID:                   id,
		OrgID:                "org-1",
		FacebookUserID:       "fb-user-" + id,
		EncryptedAccessToken: encryptToken(t, "access-token"),
		TokenExpiresAt:       timePtr(time.Now().Add(60 * 24 * time.Hour)),
		IsActive:             true,
	}
}

func feedOf(ids ...string) []transfer.FeedPost {
	var feed []transfer.FeedPost
	for _, id := range ids {
		feed = append(feed, transfer.FeedPost{
			ID:          id,
			Message:     "message " + id,
			Type:        "status",
			CreatedTime: "2026-03-01T12:00:00+0000",
		})
	}
	return feed
}

func TestSyncConnectionImportsAndDelivers(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")

	fb := &fakeFacebookService{feed: feedOf("fb-1", "fb-2")}
	f := newSyncFixture(t, fb, conn)

	_, server := newSubscriber(http.StatusOK)
	defer server.Close()
	f.wr.Create(ctx, &models.Website{
		ID:               "site-1",
		OrgID:            "org-1",
		WebhookURL:       server.URL,
		EncryptedAuthKey: encryptToken(t, "signing-key"),
		IsActive:         true,
	})
	f.wr.link("conn-1", "site-1")

	result, err := f.ss.SyncConnection(ctx, conn, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PostsProcessed)
	assert.Equal(t, 2, f.pr.count())

	rows := f.dr.all()
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, models.DeliveryStatusSuccess, row.Status)
	}

	post, err := f.pr.GetByFacebookPostID(ctx, "fb-1")
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.True(t, post.WebhookSent)
	assert.Equal(t, "message fb-1", post.Content)

	// Routine cycle advances the watermark.
	stored, err := f.cr.GetByID(ctx, "conn-1")
	require.NoError(t, err)
	require.NotNil(t, stored.LastSyncAt)
	assert.WithinDuration(t, time.Now(), *stored.LastSyncAt, time.Minute)
}

func TestSyncRoutineUsesWatermarkAsSince(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")
	lastSync := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	conn.LastSyncAt = &lastSync

	fb := &fakeFacebookService{}
	f := newSyncFixture(t, fb, conn)

	_, err := f.ss.SyncConnection(ctx, conn, nil)
	require.NoError(t, err)
	assert.Equal(t, lastSync.Unix(), fb.lastSince)
	assert.Zero(t, fb.lastMaxPosts)
}

func TestSyncFirstRunLooksBack24Hours(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")

	fb := &fakeFacebookService{}
	f := newSyncFixture(t, fb, conn)

	_, err := f.ss.SyncConnection(ctx, conn, nil)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(-24*time.Hour).Unix(), fb.lastSince, 60)
}

func TestSyncCappedModeSlicesAndKeepsWatermark(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")

	fb := &fakeFacebookService{feed: feedOf("fb-1", "fb-2", "fb-3", "fb-4", "fb-5")}
	f := newSyncFixture(t, fb, conn)

	result, err := f.ss.SyncConnection(ctx, conn, &transfer.SyncOptions{Window: 5, Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, result.PostsProcessed)

	// Capped mode fetches from the top of the feed.
	assert.Zero(t, fb.lastSince)
	assert.Equal(t, 5, fb.lastMaxPosts)

	for _, id := range []string{"fb-2", "fb-3"} {
		post, err := f.pr.GetByFacebookPostID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, post, id)
	}
	skipped, err := f.pr.GetByFacebookPostID(ctx, "fb-1")
	require.NoError(t, err)
	assert.Nil(t, skipped)

	stored, err := f.cr.GetByID(ctx, "conn-1")
	require.NoError(t, err)
	assert.Nil(t, stored.LastSyncAt)
}

func TestSyncAuthFailureOnFeedDeactivates(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")

	fb := &fakeFacebookService{feedErr: &GraphError{StatusCode: 401, Message: "expired"}}
	f := newSyncFixture(t, fb, conn)

	_, err := f.ss.SyncConnection(ctx, conn, nil)
	require.ErrorIs(t, err, ErrAuthExpired)

	stored, getErr := f.cr.GetByID(ctx, "conn-1")
	require.NoError(t, getErr)
	assert.False(t, stored.IsActive)
}

func TestSyncSkipsAlreadyImportedPosts(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")

	fb := &fakeFacebookService{feed: feedOf("fb-1")}
	f := newSyncFixture(t, fb, conn)

	require.NoError(t, f.pr.Create(ctx, &models.Post{
		ID:             "existing",
		OrgID:          "org-1",
		ConnectionID:   "conn-1",
		FacebookPostID: "fb-1",
		WebhookSent:    true,
	}))

	result, err := f.ss.SyncConnection(ctx, conn, nil)
	require.NoError(t, err)
	assert.Zero(t, result.PostsProcessed)
	assert.Equal(t, 1, f.pr.count())
	assert.Empty(t, f.dr.all())
}

func TestSyncRedeliversKnownPostsWhenConfigured(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")

	fb := &fakeFacebookService{feed: feedOf("fb-1")}
	cfg := testConfig()
	cfg.RedeliverOnResync = true
	f := newSyncFixtureWithConfig(t, cfg, fb, conn)

	_, server := newSubscriber(http.StatusOK)
	defer server.Close()
	f.wr.Create(ctx, &models.Website{
		ID:               "site-1",
		OrgID:            "org-1",
		WebhookURL:       server.URL,
		EncryptedAuthKey: encryptToken(t, "signing-key"),
		IsActive:         true,
	})
	f.wr.link("conn-1", "site-1")

	require.NoError(t, f.pr.Create(ctx, &models.Post{
		ID:             "existing",
		OrgID:          "org-1",
		ConnectionID:   "conn-1",
		FacebookPostID: "fb-1",
		WebhookSent:    true,
	}))

	result, err := f.ss.SyncConnection(ctx, conn, nil)
	require.NoError(t, err)

	// Still counts as skipped, but the delivery path runs again.
	assert.Zero(t, result.PostsProcessed)
	assert.Equal(t, 1, f.pr.count())

	rows := f.dr.all()
	require.Len(t, rows, 1)
	assert.Equal(t, "existing", rows[0].PostID)
	assert.Equal(t, models.DeliveryStatusSuccess, rows[0].Status)
}

func TestSyncSkipsCrosspostsByAttachment(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")

	fb := &fakeFacebookService{
		feed: feedOf("fb-crosspost"),
		attachments: map[string][]transfer.Attachment{
			"fb-crosspost": {{ID: "att-1", Kind: "photo"}},
		},
	}
	f := newSyncFixture(t, fb, conn)

	// The attachment was first seen on a different post.
	require.NoError(t, f.am.Upsert(ctx, "conn-1", "att-1", "fb-original"))

	result, err := f.ss.SyncConnection(ctx, conn, nil)
	require.NoError(t, err)
	assert.Zero(t, result.PostsProcessed)
	assert.Zero(t, f.pr.count())
}

func TestSyncRecordsAttachmentMappings(t *testing.T) {
	ctx := context.Background()
	conn := activeConnection(t, "conn-1")

	fb := &fakeFacebookService{
		feed: feedOf("fb-1"),
		attachments: map[string][]transfer.Attachment{
			"fb-1": {{ID: "att-1", Kind: "photo", MediaURL: "https://cdn/img.jpg"}},
		},
	}
	f := newSyncFixture(t, fb, conn)

	result, err := f.ss.SyncConnection(ctx, conn, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PostsProcessed)

	mapped, err := f.am.GetPostID(ctx, "conn-1", "att-1")
	require.NoError(t, err)
	assert.Equal(t, "fb-1", mapped)
}

func TestSyncAllIsolatesFailingConnections(t *testing.T) {
	ctx := context.Background()
	bad := activeConnection(t, "conn-bad")
	good := activeConnection(t, "conn-good")

	fb := &fakeFacebookService{
		feed: feedOf("fb-1"),
		targetFeedErr: map[string]error{
			bad.TargetID(): &GraphError{StatusCode: 401, Message: "expired"},
		},
	}
	f := newSyncFixture(t, fb, bad, good)

	f.ss.SyncAll(ctx)

	// The failing connection is deactivated, the healthy one still imports.
	storedBad, err := f.cr.GetByID(ctx, "conn-bad")
	require.NoError(t, err)
	assert.False(t, storedBad.IsActive)

	post, err := f.pr.GetByFacebookPostID(ctx, "fb-1")
	require.NoError(t, err)
	assert.NotNil(t, post)
}
