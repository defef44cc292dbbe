package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/transfer"
)

// IdentityService is the thin client for the external identity provider.
// Membership logic lives entirely on the other side of this boundary.
type IdentityService interface {
	OrganizationsForUser(ctx context.Context, userID string) ([]transfer.Organization, error)
	UserHasOrganization(ctx context.Context, userID, orgID string) (bool, error)
}

type machineToken struct {
	token     string
	expiresAt time.Time
}

type identityService struct {
	cfg    config.Config
	client *http.Client

	mu    sync.Mutex
	cache machineToken
}

func NewIdentityService(cfg config.Config) IdentityService {
	return &identityService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// machineAccessToken returns the cached service credential, refreshing it
// when less than a minute of validity remains.
func (s *identityService) machineAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache.token != "" && time.Until(s.cache.expiresAt) > time.Minute {
		return s.cache.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.cfg.IdentityAppID)
	form.Set("client_secret", s.cfg.IdentityAppSecret)
	form.Set("resource", s.cfg.IdentityAPIResource)
	form.Set("scope", "all")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/oidc/token", strings.TrimRight(s.cfg.IdentityEndpoint, "/")),
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to get machine token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("machine token request failed: status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode machine token response: %w", err)
	}

	s.cache = machineToken{
		token:     result.AccessToken,
		expiresAt: time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	return s.cache.token, nil
}

func (s *identityService) OrganizationsForUser(ctx context.Context, userID string) ([]transfer.Organization, error) {
	token, err := s.machineAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/users/%s/organizations", strings.TrimRight(s.cfg.IdentityEndpoint, "/"), url.PathEscape(userID)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("organization lookup failed: status %d: %s", resp.StatusCode, body)
	}

	var orgs []transfer.Organization
	if err := json.NewDecoder(resp.Body).Decode(&orgs); err != nil {
		return nil, fmt.Errorf("failed to decode organizations response: %w", err)
	}

	return orgs, nil
}

func (s *identityService) UserHasOrganization(ctx context.Context, userID, orgID string) (bool, error) {
	orgs, err := s.OrganizationsForUser(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, org := range orgs {
		if org.ID == orgID {
			return true, nil
		}
	}
	return false, nil
}
