package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/repository"
	"github.com/maheshrc27/socialbridge/internal/transfer"
	"github.com/maheshrc27/socialbridge/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// WebsiteService manages webhook subscribers and their connection links. The
// signing key is encrypted before it reaches the repository and is never
// returned to callers.
type WebsiteService interface {
	Create(ctx context.Context, userID string, req transfer.CreateWebsiteRequest) (*models.Website, error)
	List(ctx context.Context, userID, orgID string) ([]*models.Website, error)
	Get(ctx context.Context, userID, id string) (*models.Website, error)
	Update(ctx context.Context, userID, id string, req transfer.UpdateWebsiteRequest) (*models.Website, error)
	Delete(ctx context.Context, userID, id string) error
	LinkConnection(ctx context.Context, userID, websiteID, connectionID string) error
	UnlinkConnection(ctx context.Context, userID, websiteID, connectionID string) error
	ListConnections(ctx context.Context, userID, websiteID string) ([]*models.WebsiteConnection, error)
}

type websiteService struct {
	cfg config.Config
	wr  repository.WebsiteRepository
	wcr repository.WebsiteConnectionRepository
	cr  repository.ConnectionRepository
	ids IdentityService
}

func NewWebsiteService(
	cfg config.Config,
	wr repository.WebsiteRepository,
	wcr repository.WebsiteConnectionRepository,
	cr repository.ConnectionRepository,
	ids IdentityService) WebsiteService {
	return &websiteService{cfg: cfg, wr: wr, wcr: wcr, cr: cr, ids: ids}
}

func validateWebhookURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: webhook_url must be an absolute http(s) URL", ErrBadRequest)
	}
	return nil
}

func (s *websiteService) Create(ctx context.Context, userID string, req transfer.CreateWebsiteRequest) (*models.Website, error) {
	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, req.OrgID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: organization %s", ErrForbidden, req.OrgID)
	}

	if err := validateWebhookURL(req.WebhookURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.AuthKey) == "" {
		return nil, fmt.Errorf("%w: auth_key is required", ErrBadRequest)
	}

	encryptedKey, err := utils.Encrypt([]byte(req.AuthKey), []byte(s.cfg.EncryptionKey))
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	website := &models.Website{
		ID:               id,
		OrgID:            req.OrgID,
		Name:             req.Name,
		WebhookURL:       strings.TrimRight(req.WebhookURL, "/"),
		EncryptedAuthKey: encryptedKey,
		IsActive:         true,
	}

	if err := s.wr.Create(ctx, website); err != nil {
		return nil, err
	}
	return website, nil
}

func (s *websiteService) List(ctx context.Context, userID, orgID string) ([]*models.Website, error) {
	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: organization %s", ErrForbidden, orgID)
	}

	return s.wr.ListByOrgID(ctx, orgID)
}

func (s *websiteService) Get(ctx context.Context, userID, id string) (*models.Website, error) {
	return s.authorizedWebsite(ctx, userID, id)
}

func (s *websiteService) Update(ctx context.Context, userID, id string, req transfer.UpdateWebsiteRequest) (*models.Website, error) {
	website, err := s.authorizedWebsite(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		website.Name = *req.Name
	}
	if req.WebhookURL != nil {
		if err := validateWebhookURL(*req.WebhookURL); err != nil {
			return nil, err
		}
		website.WebhookURL = strings.TrimRight(*req.WebhookURL, "/")
	}
	if req.AuthKey != nil {
		if strings.TrimSpace(*req.AuthKey) == "" {
			return nil, fmt.Errorf("%w: auth_key cannot be empty", ErrBadRequest)
		}
		encryptedKey, err := utils.Encrypt([]byte(*req.AuthKey), []byte(s.cfg.EncryptionKey))
		if err != nil {
			return nil, err
		}
		website.EncryptedAuthKey = encryptedKey
	}
	if req.IsActive != nil {
		website.IsActive = *req.IsActive
	}

	if err := s.wr.Update(ctx, website); err != nil {
		return nil, err
	}
	return website, nil
}

func (s *websiteService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.authorizedWebsite(ctx, userID, id); err != nil {
		return err
	}

	removed, err := s.wr.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: website %s", ErrNotFound, id)
	}
	return nil
}

// LinkConnection requires the website and connection to belong to the same
// organization so posts never fan out across org boundaries.
func (s *websiteService) LinkConnection(ctx context.Context, userID, websiteID, connectionID string) error {
	website, err := s.authorizedWebsite(ctx, userID, websiteID)
	if err != nil {
		return err
	}

	conn, err := s.cr.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if conn == nil {
		return fmt.Errorf("%w: connection %s", ErrNotFound, connectionID)
	}
	if conn.OrgID != website.OrgID {
		return fmt.Errorf("%w: connection %s", ErrForbidden, connectionID)
	}

	linked, err := s.wcr.Exists(ctx, websiteID, connectionID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}

	return s.wcr.Link(ctx, websiteID, connectionID)
}

func (s *websiteService) UnlinkConnection(ctx context.Context, userID, websiteID, connectionID string) error {
	if _, err := s.authorizedWebsite(ctx, userID, websiteID); err != nil {
		return err
	}

	removed, err := s.wcr.Unlink(ctx, websiteID, connectionID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: link %s/%s", ErrNotFound, websiteID, connectionID)
	}
	return nil
}

func (s *websiteService) ListConnections(ctx context.Context, userID, websiteID string) ([]*models.WebsiteConnection, error) {
	if _, err := s.authorizedWebsite(ctx, userID, websiteID); err != nil {
		return nil, err
	}
	return s.wcr.ListByWebsiteID(ctx, websiteID)
}

func (s *websiteService) authorizedWebsite(ctx context.Context, userID, id string) (*models.Website, error) {
	website, err := s.wr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if website == nil {
		return nil, fmt.Errorf("%w: website %s", ErrNotFound, id)
	}

	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, website.OrgID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: website %s", ErrForbidden, id)
	}

	return website, nil
}
