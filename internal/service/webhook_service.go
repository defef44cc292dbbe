package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/repository"
	"github.com/maheshrc27/socialbridge/internal/transfer"
	"github.com/maheshrc27/socialbridge/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	importPath = "/wp-json/social-importer/v1/import"
	testPath   = "/wp-json/social-importer/v1/test"
)

// WebhookService fans a post event out to every active website linked to the
// post's connection, signs each request and records one ledger row per
// website per invocation. Fan-out is sequential so the ledger order is
// deterministic.
type WebhookService interface {
	Deliver(ctx context.Context, post *models.Post, metadata *transfer.PostMetadata) ([]*models.WebhookDelivery, error)
	Resend(ctx context.Context, postID, userID string) ([]*models.WebhookDelivery, error)
	SendTest(ctx context.Context, websiteID, userID string) (*transfer.TestWebhookResult, error)
}

type webhookService struct {
	cfg    config.Config
	wr     repository.WebsiteRepository
	pr     repository.PostRepository
	dr     repository.WebhookDeliveryRepository
	cr     repository.ConnectionRepository
	ts     TokenService
	fb     FacebookService
	ids    IdentityService
	client *http.Client
}

func NewWebhookService(
	cfg config.Config,
	wr repository.WebsiteRepository,
	pr repository.PostRepository,
	dr repository.WebhookDeliveryRepository,
	cr repository.ConnectionRepository,
	ts TokenService,
	fb FacebookService,
	ids IdentityService) WebhookService {
	return &webhookService{
		cfg:    cfg,
		wr:     wr,
		pr:     pr,
		dr:     dr,
		cr:     cr,
		ts:     ts,
		fb:     fb,
		ids:    ids,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Sign computes the hex HMAC-SHA256 the subscriber verifies. The subscriber
// recomputes it over the received body with the signature field removed.
func Sign(payload []byte, authKey string) string {
	mac := hmac.New(sha256.New, []byte(authKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func buildImportURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + importPath
}

func buildTestURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + testPath
}

func (s *webhookService) Deliver(ctx context.Context, post *models.Post, metadata *transfer.PostMetadata) ([]*models.WebhookDelivery, error) {
	websites, err := s.wr.ListActiveByConnectionID(ctx, post.ConnectionID)
	if err != nil {
		return nil, err
	}

	if len(websites) == 0 {
		return []*models.WebhookDelivery{}, nil
	}

	var attachments []transfer.Attachment
	if metadata != nil {
		attachments = metadata.Attachments
	}

	payload := transfer.WebhookPayload{
		Event:     "new_post",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Post: transfer.WebhookPost{
			ID:             post.ID,
			FacebookPostID: post.FacebookPostID,
			Content:        post.Content,
			PostType:       post.PostType,
			Metadata:       metadata,
			Attachments:    attachments,
			PostedAt:       post.PostedAt.UTC().Format(time.RFC3339),
		},
	}

	deliveries := make([]*models.WebhookDelivery, 0, len(websites))
	for _, website := range websites {
		delivery, err := s.deliverToWebsite(ctx, post, website, payload)
		if err != nil {
			// A ledger write failing for one website must not block the
			// attempts for the remaining websites.
			slog.Warn("failed to record delivery", "post_id", post.ID, "website_id", website.ID, "error", err.Error())
			continue
		}
		deliveries = append(deliveries, delivery)
	}

	// One-way marker: the post has had at least one delivery attempt.
	if !post.WebhookSent {
		if err := s.pr.SetWebhookSent(ctx, post.ID); err != nil {
			slog.Info(err.Error())
		} else {
			post.WebhookSent = true
		}
	}

	return deliveries, nil
}

// deliverToWebsite sends one signed request and always produces exactly one
// ledger row. Only ledger persistence failures surface as errors.
func (s *webhookService) deliverToWebsite(ctx context.Context, post *models.Post, website *models.Website, payload transfer.WebhookPayload) (*models.WebhookDelivery, error) {
	sentAt := time.Now()

	record := func(status string, statusCode *int, errorMessage string) (*models.WebhookDelivery, error) {
		id, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		delivery := &models.WebhookDelivery{
			ID:           id,
			PostID:       post.ID,
			WebsiteID:    website.ID,
			Status:       status,
			StatusCode:   statusCode,
			ErrorMessage: errorMessage,
			SentAt:       sentAt,
		}
		if err := s.dr.Create(ctx, delivery); err != nil {
			return nil, err
		}
		return delivery, nil
	}

	if strings.TrimSpace(website.EncryptedAuthKey) == "" {
		return record(models.DeliveryStatusFailed, nil, "missing auth key - cannot generate signature")
	}

	authKey, err := utils.Decrypt(website.EncryptedAuthKey, []byte(s.cfg.EncryptionKey))
	if err != nil || strings.TrimSpace(authKey) == "" {
		if err == nil {
			err = fmt.Errorf("decrypted auth key is empty")
		}
		return record(models.DeliveryStatusFailed, nil, fmt.Sprintf("failed to decrypt auth key: %v", err))
	}

	unsigned, err := json.Marshal(payload)
	if err != nil {
		return record(models.DeliveryStatusFailed, nil, fmt.Sprintf("failed to serialize payload: %v", err))
	}

	payload.Signature = Sign(unsigned, authKey)
	body, err := json.Marshal(payload)
	if err != nil {
		return record(models.DeliveryStatusFailed, nil, fmt.Sprintf("failed to serialize payload: %v", err))
	}

	statusCode, err := s.post(ctx, buildImportURL(website.WebhookURL), body)
	if err != nil {
		return record(models.DeliveryStatusFailed, nil, fmt.Sprintf("network error: %v", err))
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return record(models.DeliveryStatusSuccess, &statusCode, "")
	case statusCode >= 400 && statusCode < 500:
		return record(models.DeliveryStatusFailed, &statusCode, fmt.Sprintf("validation failure: HTTP %d", statusCode))
	case statusCode >= 500:
		return record(models.DeliveryStatusFailed, &statusCode, fmt.Sprintf("server error: HTTP %d", statusCode))
	default:
		return record(models.DeliveryStatusFailed, &statusCode, fmt.Sprintf("HTTP %d", statusCode))
	}
}

func (s *webhookService) post(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// Resend re-runs the delivery path for an already-imported post. The payload
// is rebuilt from a fresh platform fetch rather than replayed from storage,
// and the new ledger rows leave all prior rows untouched.
func (s *webhookService) Resend(ctx context.Context, postID, userID string) ([]*models.WebhookDelivery, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, post.OrgID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: post %s", ErrForbidden, postID)
	}

	connection, err := s.cr.GetByID(ctx, post.ConnectionID)
	if err != nil {
		return nil, err
	}
	if connection == nil {
		return nil, fmt.Errorf("%w: connection %s", ErrNotFound, post.ConnectionID)
	}

	accessToken, err := s.ts.DecryptedToken(connection)
	if err != nil {
		return nil, err
	}

	fresh, err := s.fb.GetPost(ctx, post.FacebookPostID, accessToken)
	if err != nil {
		return nil, err
	}

	attachments := s.fb.FetchAttachments(ctx, post.FacebookPostID, accessToken)

	content := fresh.Message
	if content == "" {
		content = fresh.Story
	}
	post.Content = content
	if fresh.Type != "" {
		post.PostType = fresh.Type
	}

	metadata := &transfer.PostMetadata{
		PermalinkURL: fresh.PermalinkURL,
		Link:         fresh.Link,
		Story:        fresh.Story,
		Attachments:  attachments,
	}

	return s.Deliver(ctx, post, metadata)
}

// SendTest posts a fixed payload to the website's test path. Diagnostic only:
// it never writes a ledger row.
func (s *webhookService) SendTest(ctx context.Context, websiteID, userID string) (*transfer.TestWebhookResult, error) {
	website, err := s.wr.GetByID(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if website == nil {
		return nil, fmt.Errorf("%w: website %s", ErrNotFound, websiteID)
	}

	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, website.OrgID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: website %s", ErrForbidden, websiteID)
	}

	if !website.IsActive {
		return &transfer.TestWebhookResult{Success: false, Message: "website is not active"}, nil
	}

	if strings.TrimSpace(website.EncryptedAuthKey) == "" {
		return &transfer.TestWebhookResult{Success: false, Message: "missing auth key - cannot generate signature"}, nil
	}

	authKey, err := utils.Decrypt(website.EncryptedAuthKey, []byte(s.cfg.EncryptionKey))
	if err != nil || strings.TrimSpace(authKey) == "" {
		return &transfer.TestWebhookResult{Success: false, Message: fmt.Sprintf("failed to decrypt auth key: %v", err)}, nil
	}

	payload := transfer.TestWebhookPayload{
		Event:     "test",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   "This is a test webhook from the social importer API",
	}

	unsigned, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	payload.Signature = Sign(unsigned, authKey)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	statusCode, err := s.post(ctx, buildTestURL(website.WebhookURL), body)
	if err != nil {
		return &transfer.TestWebhookResult{Success: false, Message: fmt.Sprintf("failed to send webhook: %v", err)}, nil
	}

	if statusCode >= 200 && statusCode < 300 {
		return &transfer.TestWebhookResult{Success: true, Message: "test webhook sent successfully"}, nil
	}
	return &transfer.TestWebhookResult{Success: false, Message: fmt.Sprintf("webhook returned status %d", statusCode)}, nil
}
