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
)

// TokenService owns the access-token lifecycle for connections: refresh
// threshold checks, the long-lived exchange, and decryption.
type TokenService interface {
	ShouldRefresh(c *models.Connection) bool
	Refresh(ctx context.Context, c *models.Connection) (*models.Connection, error)
	DecryptedToken(c *models.Connection) (string, error)
}

type tokenService struct {
	cfg config.Config
	fb  FacebookService
	cr  repository.ConnectionRepository
}

func NewTokenService(cfg config.Config, fb FacebookService, cr repository.ConnectionRepository) TokenService {
	return &tokenService{cfg: cfg, fb: fb, cr: cr}
}

// ShouldRefresh is true when the expiry is unknown, already past, or within
// the configured threshold. A missing expiry counts as stale so every
// connection eventually ends up with a correctly dated token.
func (s *tokenService) ShouldRefresh(c *models.Connection) bool {
	if c.TokenExpiresAt == nil || c.TokenExpiresAt.IsZero() {
		return true
	}

	threshold := time.Duration(s.cfg.TokenRefreshDays) * 24 * time.Hour
	return time.Until(*c.TokenExpiresAt) <= threshold
}

// Refresh exchanges the stored token for a fresh long-lived one (and a
// page-scoped one for page connections), persists it, and returns the
// updated connection. A 401/403 from the exchange deactivates the connection
// and comes back wrapped in ErrAuthExpired; any other failure leaves the
// connection active so callers may continue with the stale token.
func (s *tokenService) Refresh(ctx context.Context, c *models.Connection) (*models.Connection, error) {
	currentToken, err := s.DecryptedToken(c)
	if err != nil {
		return nil, err
	}

	longLived, err := s.fb.GetLongLivedToken(ctx, currentToken)
	if err != nil {
		return nil, s.classifyRefreshError(ctx, c, err)
	}

	finalToken := longLived.AccessToken
	if c.PageID != "" {
		finalToken, err = s.fb.GetPageAccessToken(ctx, longLived.AccessToken, c.PageID)
		if err != nil {
			return nil, s.classifyRefreshError(ctx, c, err)
		}
	}

	encryptedToken, err := utils.Encrypt([]byte(finalToken), []byte(s.cfg.EncryptionKey))
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(time.Duration(longLived.ExpiresIn) * time.Second)
	if err := s.cr.SetToken(ctx, c.ID, encryptedToken, expiresAt); err != nil {
		return nil, err
	}

	updated := *c
	updated.EncryptedAccessToken = encryptedToken
	updated.TokenExpiresAt = &expiresAt
	return &updated, nil
}

func (s *tokenService) classifyRefreshError(ctx context.Context, c *models.Connection, err error) error {
	if IsAuthFailure(err) {
		slog.Warn("token refresh rejected, deactivating connection", "connection_id", c.ID)
		if deactivateErr := s.cr.SetActive(ctx, c.ID, false); deactivateErr != nil {
			slog.Info(deactivateErr.Error())
		}
		return fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}
	return fmt.Errorf("token refresh failed for connection %s: %w", c.ID, err)
}

// DecryptedToken never logs the plaintext.
func (s *tokenService) DecryptedToken(c *models.Connection) (string, error) {
	return utils.Decrypt(c.EncryptedAccessToken, []byte(s.cfg.EncryptionKey))
}
