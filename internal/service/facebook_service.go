package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

// FacebookService is the Graph API client. Feed and attachment reads follow
// paging.next until the platform runs out of pages.
type FacebookService interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	GetUserID(ctx context.Context, accessToken string) (string, error)
	GetPages(ctx context.Context, accessToken string) ([]transfer.Page, error)
	GetLongLivedToken(ctx context.Context, accessToken string) (*transfer.TokenResponse, error)
	GetPageAccessToken(ctx context.Context, userAccessToken, pageID string) (string, error)
	FetchFeed(ctx context.Context, targetID, accessToken string, since int64, isPage bool, maxPosts int) ([]transfer.FeedPost, error)
	FetchAttachments(ctx context.Context, postID, accessToken string) []transfer.Attachment
	GetPost(ctx context.Context, postID, accessToken string) (*transfer.FeedPost, error)
}

type facebookService struct {
	cfg    config.Config
	oauth  oauth2.Config
	client *http.Client
}

func NewFacebookService(cfg config.Config) FacebookService {
	return &facebookService{
		cfg: cfg,
		oauth: oauth2.Config{
			ClientID:     cfg.FacebookAppID,
			ClientSecret: cfg.FacebookAppSecret,
			RedirectURL:  cfg.FacebookRedirectURI,
			Scopes:       []string{"pages_read_engagement", "pages_read_user_content", "pages_show_list"},
			Endpoint:     facebook.Endpoint,
		},
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *facebookService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

func (s *facebookService) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token.AccessToken, nil
}

// doGet issues a GET against the Graph API and decodes the response into out.
// Non-2xx responses come back as *GraphError.
func (s *facebookService) doGet(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var graphErr transfer.GraphErrorResponse
		message := string(body)
		if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
			message = graphErr.Error.Message
		}
		return &GraphError{StatusCode: resp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}

func (s *facebookService) GetUserID(ctx context.Context, accessToken string) (string, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id")

	var user transfer.GraphUser
	err := s.doGet(ctx, fmt.Sprintf("%s/me?%s", s.cfg.GraphBaseURL, params.Encode()), &user)
	if err != nil {
		return "", fmt.Errorf("failed to get user id: %w", err)
	}

	if user.ID == "" {
		return "", fmt.Errorf("graph /me response missing id")
	}
	return user.ID, nil
}

func (s *facebookService) GetPages(ctx context.Context, accessToken string) ([]transfer.Page, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name")

	var pages transfer.PagesResponse
	err := s.doGet(ctx, fmt.Sprintf("%s/me/accounts?%s", s.cfg.GraphBaseURL, params.Encode()), &pages)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}

	return pages.Data, nil
}

func (s *facebookService) GetLongLivedToken(ctx context.Context, accessToken string) (*transfer.TokenResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", s.cfg.FacebookAppID)
	params.Set("client_secret", s.cfg.FacebookAppSecret)
	params.Set("fb_exchange_token", accessToken)

	var token transfer.TokenResponse
	err := s.doGet(ctx, fmt.Sprintf("%s/oauth/access_token?%s", s.cfg.GraphBaseURL, params.Encode()), &token)
	if err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("token exchange response missing access_token")
	}
	return &token, nil
}

func (s *facebookService) GetPageAccessToken(ctx context.Context, userAccessToken, pageID string) (string, error) {
	params := url.Values{}
	params.Set("access_token", userAccessToken)
	params.Set("fields", "access_token")

	var page transfer.PageTokenResponse
	err := s.doGet(ctx, fmt.Sprintf("%s/%s?%s", s.cfg.GraphBaseURL, pageID, params.Encode()), &page)
	if err != nil {
		return "", fmt.Errorf("failed to get page access token: %w", err)
	}

	if page.AccessToken == "" {
		return "", fmt.Errorf("page access token not found in response")
	}
	return page.AccessToken, nil
}

func (s *facebookService) FetchFeed(ctx context.Context, targetID, accessToken string, since int64, isPage bool, maxPosts int) ([]transfer.FeedPost, error) {
	endpoint := "feed"
	if isPage {
		endpoint = "published_posts"
	}

	pageSize := 100
	if maxPosts > 0 && maxPosts < pageSize {
		pageSize = maxPosts
	}

	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,message,story,type,link,permalink_url,created_time")
	params.Set("since", fmt.Sprintf("%d", since))
	params.Set("limit", fmt.Sprintf("%d", pageSize))

	next := fmt.Sprintf("%s/%s/%s?%s", s.cfg.GraphBaseURL, targetID, endpoint, params.Encode())

	var posts []transfer.FeedPost
	for next != "" {
		var feed transfer.FeedResponse
		if err := s.doGet(ctx, next, &feed); err != nil {
			return nil, fmt.Errorf("failed to fetch posts: %w", err)
		}

		posts = append(posts, feed.Data...)

		if maxPosts > 0 && len(posts) >= maxPosts {
			posts = posts[:maxPosts]
			break
		}

		next = ""
		if feed.Paging != nil {
			next = feed.Paging.Next
		}
	}

	return posts, nil
}

// FetchAttachments returns nil, never an error: a post without attachments
// (or a failed attachment call) must not fail the sync.
func (s *facebookService) FetchAttachments(ctx context.Context, postID, accessToken string) []transfer.Attachment {
	params := url.Values{}
	params.Set("access_token", accessToken)

	next := fmt.Sprintf("%s/%s/attachments?%s", s.cfg.GraphBaseURL, postID, params.Encode())

	var attachments []transfer.Attachment
	for next != "" {
		var resp transfer.AttachmentsResponse
		if err := s.doGet(ctx, next, &resp); err != nil {
			slog.Warn("failed to fetch attachments", "post_id", postID, "error", err.Error())
			return nil
		}

		for _, raw := range resp.Data {
			attachments = append(attachments, flattenAttachment(raw))
			if raw.SubAttachments != nil {
				for _, sub := range raw.SubAttachments.Data {
					attachments = append(attachments, flattenAttachment(sub))
				}
			}
		}

		next = ""
		if resp.Paging != nil {
			next = resp.Paging.Next
		}
	}

	if len(attachments) == 0 {
		return nil
	}
	return attachments
}

func flattenAttachment(raw transfer.RawAttachment) transfer.Attachment {
	kind := raw.MediaType
	if kind == "" {
		kind = raw.Type
	}

	mediaURL := raw.Media.Source
	if mediaURL == "" {
		mediaURL = raw.Media.Image.Src
	}

	return transfer.Attachment{
		ID:       raw.Target.ID,
		Kind:     kind,
		MediaURL: mediaURL,
		URL:      raw.URL,
	}
}

func (s *facebookService) GetPost(ctx context.Context, postID, accessToken string) (*transfer.FeedPost, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,message,story,type,link,permalink_url,created_time")

	var post transfer.FeedPost
	err := s.doGet(ctx, fmt.Sprintf("%s/%s?%s", s.cfg.GraphBaseURL, postID, params.Encode()), &post)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}

	if post.ID == "" {
		return nil, fmt.Errorf("graph post response missing id")
	}
	return &post, nil
}
