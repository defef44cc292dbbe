package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/repository"
	"github.com/maheshrc27/socialbridge/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ConnectionService owns the OAuth connect flow and connection management.
// Connections are deactivated, never hard-deleted, so the post history they
// produced stays attributable.
type ConnectionService interface {
	ConnectURL(ctx context.Context, userID, orgID string) (authURL, state string, err error)
	CompleteConnect(ctx context.Context, code, state string) ([]*models.Connection, error)
	List(ctx context.Context, userID, orgID string) ([]*models.Connection, error)
	Get(ctx context.Context, userID, id string) (*models.Connection, error)
	Rename(ctx context.Context, userID, id, name string) error
	Deactivate(ctx context.Context, userID, id string) error
}

type connectionService struct {
	cfg config.Config
	cr  repository.ConnectionRepository
	fb  FacebookService
	ids IdentityService
}

func NewConnectionService(cfg config.Config, cr repository.ConnectionRepository, fb FacebookService, ids IdentityService) ConnectionService {
	return &connectionService{cfg: cfg, cr: cr, fb: fb, ids: ids}
}

// ConnectURL returns the platform consent URL. The state parameter is a
// short-lived signed token carrying the caller and organization, so the
// callback can be validated without server-side session state.
func (s *connectionService) ConnectURL(ctx context.Context, userID, orgID string) (string, string, error) {
	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, orgID)
	if err != nil {
		return "", "", err
	}
	if !hasAccess {
		return "", "", fmt.Errorf("%w: organization %s", ErrForbidden, orgID)
	}

	state, err := utils.GenerateConnectState(s.cfg.SecretKey, userID, orgID, 15*time.Minute)
	if err != nil {
		return "", "", err
	}

	return s.fb.AuthURL(state), state, nil
}

// CompleteConnect exchanges the callback code and persists one connection for
// the user profile plus one per manageable page, each with its own encrypted
// long-lived token. A page whose token exchange fails is skipped so the rest
// of the batch still connects.
func (s *connectionService) CompleteConnect(ctx context.Context, code, state string) ([]*models.Connection, error) {
	claims, err := utils.ValidateConnectState(s.cfg.SecretKey, state)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid state", ErrBadRequest)
	}
	orgID := claims.OrgID

	shortToken, err := s.fb.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	facebookUserID, err := s.fb.GetUserID(ctx, shortToken)
	if err != nil {
		return nil, err
	}

	longLived, err := s.fb.GetLongLivedToken(ctx, shortToken)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(time.Duration(longLived.ExpiresIn) * time.Second)

	var created []*models.Connection

	userConn, err := s.createConnection(ctx, orgID, facebookUserID, "", "", longLived.AccessToken, expiresAt)
	if err != nil {
		return nil, err
	}
	created = append(created, userConn)

	pages, err := s.fb.GetPages(ctx, longLived.AccessToken)
	if err != nil {
		slog.Warn("failed to list pages, connected user profile only", "error", err.Error())
		return created, nil
	}

	for _, page := range pages {
		pageToken, err := s.fb.GetPageAccessToken(ctx, longLived.AccessToken, page.ID)
		if err != nil {
			slog.Warn("failed to get page token, skipping page", "page_id", page.ID, "error", err.Error())
			continue
		}

		pageConn, err := s.createConnection(ctx, orgID, facebookUserID, page.ID, page.Name, pageToken, expiresAt)
		if err != nil {
			slog.Warn("failed to save page connection", "page_id", page.ID, "error", err.Error())
			continue
		}
		created = append(created, pageConn)
	}

	return created, nil
}

func (s *connectionService) createConnection(ctx context.Context, orgID, facebookUserID, pageID, name, accessToken string, expiresAt time.Time) (*models.Connection, error) {
	encryptedToken, err := utils.Encrypt([]byte(accessToken), []byte(s.cfg.EncryptionKey))
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	conn := &models.Connection{
		ID:                   id,
		OrgID:                orgID,
		FacebookUserID:       facebookUserID,
		PageID:               pageID,
		Name:                 name,
		EncryptedAccessToken: encryptedToken,
		TokenExpiresAt:       &expiresAt,
		IsActive:             true,
	}

	if err := s.cr.Create(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *connectionService) List(ctx context.Context, userID, orgID string) ([]*models.Connection, error) {
	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: organization %s", ErrForbidden, orgID)
	}

	return s.cr.ListByOrgID(ctx, orgID)
}

func (s *connectionService) Get(ctx context.Context, userID, id string) (*models.Connection, error) {
	return s.authorizedConnection(ctx, userID, id)
}

func (s *connectionService) Rename(ctx context.Context, userID, id, name string) error {
	if _, err := s.authorizedConnection(ctx, userID, id); err != nil {
		return err
	}
	return s.cr.SetName(ctx, id, name)
}

func (s *connectionService) Deactivate(ctx context.Context, userID, id string) error {
	if _, err := s.authorizedConnection(ctx, userID, id); err != nil {
		return err
	}
	return s.cr.SetActive(ctx, id, false)
}

func (s *connectionService) authorizedConnection(ctx context.Context, userID, id string) (*models.Connection, error) {
	conn, err := s.cr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: connection %s", ErrNotFound, id)
	}

	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, conn.OrgID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: connection %s", ErrForbidden, id)
	}

	return conn, nil
}
