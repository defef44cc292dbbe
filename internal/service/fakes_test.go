package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/transfer"
)

// In-memory repository and collaborator fakes shared by the service tests.

type fakeConnectionRepo struct {
	mu          sync.Mutex
	connections map[string]*models.Connection
}

func newFakeConnectionRepo(connections ...*models.Connection) *fakeConnectionRepo {
	r := &fakeConnectionRepo{connections: make(map[string]*models.Connection)}
	for _, c := range connections {
		clone := *c
		r.connections[c.ID] = &clone
	}
	return r
}

func (r *fakeConnectionRepo) Create(ctx context.Context, c *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.connections[c.ID] = &clone
	return nil
}

func (r *fakeConnectionRepo) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.connections[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *fakeConnectionRepo) ListActive(ctx context.Context) ([]*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Connection
	for _, c := range r.connections {
		if c.IsActive {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeConnectionRepo) ListByOrgID(ctx context.Context, orgID string) ([]*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Connection
	for _, c := range r.connections {
		if c.OrgID == orgID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeConnectionRepo) SetToken(ctx context.Context, id, encryptedToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.connections[id]; ok {
		c.EncryptedAccessToken = encryptedToken
		c.TokenExpiresAt = &expiresAt
	}
	return nil
}

func (r *fakeConnectionRepo) SetLastSyncAt(ctx context.Context, id string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.connections[id]; ok {
		c.LastSyncAt = &syncedAt
	}
	return nil
}

func (r *fakeConnectionRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.connections[id]; ok {
		c.IsActive = active
	}
	return nil
}

func (r *fakeConnectionRepo) SetName(ctx context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.connections[id]; ok {
		c.Name = name
	}
	return nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		clone := *p
		r.posts[p.ID] = &clone
	}
	return r
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.FacebookPostID == post.FacebookPostID {
			return fmt.Errorf("duplicate facebook_post_id %s", post.FacebookPostID)
		}
	}
	clone := *post
	r.posts[post.ID] = &clone
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *fakePostRepo) GetByFacebookPostID(ctx context.Context, facebookPostID string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.FacebookPostID == facebookPostID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakePostRepo) ListByOrgID(ctx context.Context, orgID string, page, limit int) ([]*models.Post, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Post
	for _, p := range r.posts {
		if p.OrgID == orgID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, len(out), nil
}

func (r *fakePostRepo) SetWebhookSent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		p.WebhookSent = true
	}
	return nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id, orgID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.OrgID != orgID {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}

func (r *fakePostRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

type fakeWebsiteRepo struct {
	mu       sync.Mutex
	websites map[string]*models.Website
	links    map[string][]string // connectionID -> website IDs
}

func newFakeWebsiteRepo(websites ...*models.Website) *fakeWebsiteRepo {
	r := &fakeWebsiteRepo{
		websites: make(map[string]*models.Website),
		links:    make(map[string][]string),
	}
	for _, w := range websites {
		clone := *w
		r.websites[w.ID] = &clone
	}
	return r
}

func (r *fakeWebsiteRepo) link(connectionID, websiteID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[connectionID] = append(r.links[connectionID], websiteID)
}

func (r *fakeWebsiteRepo) Create(ctx context.Context, w *models.Website) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *w
	r.websites[w.ID] = &clone
	return nil
}

func (r *fakeWebsiteRepo) GetByID(ctx context.Context, id string) (*models.Website, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.websites[id]
	if !ok {
		return nil, nil
	}
	clone := *w
	return &clone, nil
}

func (r *fakeWebsiteRepo) ListByOrgID(ctx context.Context, orgID string) ([]*models.Website, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Website
	for _, w := range r.websites {
		if w.OrgID == orgID {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeWebsiteRepo) ListActiveByConnectionID(ctx context.Context, connectionID string) ([]*models.Website, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Website
	for _, id := range r.links[connectionID] {
		if w, ok := r.websites[id]; ok && w.IsActive {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeWebsiteRepo) Update(ctx context.Context, w *models.Website) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *w
	r.websites[w.ID] = &clone
	return nil
}

func (r *fakeWebsiteRepo) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.websites[id]; !ok {
		return false, nil
	}
	delete(r.websites, id)
	return true, nil
}

type fakeDeliveryRepo struct {
	mu         sync.Mutex
	deliveries []*models.WebhookDelivery
}

func (r *fakeDeliveryRepo) Create(ctx context.Context, d *models.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *d
	r.deliveries = append(r.deliveries, &clone)
	return nil
}

func (r *fakeDeliveryRepo) GetByID(ctx context.Context, id string) (*models.WebhookDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deliveries {
		if d.ID == id {
			clone := *d
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeDeliveryRepo) ListByPostID(ctx context.Context, postID string) ([]*models.WebhookDelivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WebhookDelivery
	for _, d := range r.deliveries {
		if d.PostID == postID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeDeliveryRepo) ListByOrgID(ctx context.Context, orgID string, filter transfer.DeliveryFilter) ([]*models.WebhookDelivery, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WebhookDelivery
	for _, d := range r.deliveries {
		if filter.PostID != "" && d.PostID != filter.PostID {
			continue
		}
		if filter.WebsiteID != "" && d.WebsiteID != filter.WebsiteID {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		clone := *d
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeDeliveryRepo) all() []*models.WebhookDelivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.WebhookDelivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

// failingDeliveryRepo rejects writes for selected websites and stores the
// rest, to exercise ledger persistence failures mid fan-out.
type failingDeliveryRepo struct {
	fakeDeliveryRepo
	failFor map[string]bool // website IDs whose rows fail to persist
}

func (r *failingDeliveryRepo) Create(ctx context.Context, d *models.WebhookDelivery) error {
	if r.failFor[d.WebsiteID] {
		return fmt.Errorf("ledger write rejected for website %s", d.WebsiteID)
	}
	return r.fakeDeliveryRepo.Create(ctx, d)
}

type fakeWebsiteConnectionRepo struct {
	mu          sync.Mutex
	links       map[string]bool // websiteID|connectionID
	linkCalls   int
	existsCalls int
}

func newFakeWebsiteConnectionRepo() *fakeWebsiteConnectionRepo {
	return &fakeWebsiteConnectionRepo{links: make(map[string]bool)}
}

func (r *fakeWebsiteConnectionRepo) Link(ctx context.Context, websiteID, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.linkCalls++
	r.links[websiteID+"|"+connectionID] = true
	return nil
}

func (r *fakeWebsiteConnectionRepo) Unlink(ctx context.Context, websiteID, connectionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := websiteID + "|" + connectionID
	if !r.links[key] {
		return false, nil
	}
	delete(r.links, key)
	return true, nil
}

func (r *fakeWebsiteConnectionRepo) Exists(ctx context.Context, websiteID, connectionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existsCalls++
	return r.links[websiteID+"|"+connectionID], nil
}

func (r *fakeWebsiteConnectionRepo) ListByWebsiteID(ctx context.Context, websiteID string) ([]*models.WebsiteConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WebsiteConnection
	for key := range r.links {
		if len(key) > len(websiteID) && key[:len(websiteID)+1] == websiteID+"|" {
			out = append(out, &models.WebsiteConnection{
				WebsiteID:    websiteID,
				ConnectionID: key[len(websiteID)+1:],
			})
		}
	}
	return out, nil
}

type fakeAttachmentMappingRepo struct {
	mu       sync.Mutex
	mappings map[string]string // connectionID|attachmentID -> facebookPostID
}

func newFakeAttachmentMappingRepo() *fakeAttachmentMappingRepo {
	return &fakeAttachmentMappingRepo{mappings: make(map[string]string)}
}

func (r *fakeAttachmentMappingRepo) Upsert(ctx context.Context, connectionID, attachmentID, facebookPostID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := connectionID + "|" + attachmentID
	if _, ok := r.mappings[key]; !ok {
		r.mappings[key] = facebookPostID
	}
	return nil
}

func (r *fakeAttachmentMappingRepo) GetPostID(ctx context.Context, connectionID, attachmentID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mappings[connectionID+"|"+attachmentID], nil
}

type fakeIdentityService struct {
	orgs map[string][]string // userID -> org IDs
}

func (s *fakeIdentityService) OrganizationsForUser(ctx context.Context, userID string) ([]transfer.Organization, error) {
	var out []transfer.Organization
	for _, id := range s.orgs[userID] {
		out = append(out, transfer.Organization{ID: id})
	}
	return out, nil
}

func (s *fakeIdentityService) UserHasOrganization(ctx context.Context, userID, orgID string) (bool, error) {
	for _, id := range s.orgs[userID] {
		if id == orgID {
			return true, nil
		}
	}
	return false, nil
}

type fakeFacebookService struct {
	feed          []transfer.FeedPost
	feedErr       error
	targetFeedErr map[string]error
	attachments   map[string][]transfer.Attachment
	longLived     *transfer.TokenResponse
	longLivedErr  error
	pageTokens    map[string]string
	posts         map[string]*transfer.FeedPost
	userID        string
	pages         []transfer.Page

	feedCalls    int
	lastSince    int64
	lastMaxPosts int
}

func (s *fakeFacebookService) AuthURL(state string) string {
	return "https://facebook.example/dialog/oauth?state=" + state
}

func (s *fakeFacebookService) ExchangeCode(ctx context.Context, code string) (string, error) {
	return "short-lived-token", nil
}

func (s *fakeFacebookService) GetUserID(ctx context.Context, accessToken string) (string, error) {
	return s.userID, nil
}

func (s *fakeFacebookService) GetPages(ctx context.Context, accessToken string) ([]transfer.Page, error) {
	return s.pages, nil
}

func (s *fakeFacebookService) GetLongLivedToken(ctx context.Context, accessToken string) (*transfer.TokenResponse, error) {
	if s.longLivedErr != nil {
		return nil, s.longLivedErr
	}
	return s.longLived, nil
}

func (s *fakeFacebookService) GetPageAccessToken(ctx context.Context, userAccessToken, pageID string) (string, error) {
	token, ok := s.pageTokens[pageID]
	if !ok {
		return "", fmt.Errorf("no page token for %s", pageID)
	}
	return token, nil
}

func (s *fakeFacebookService) FetchFeed(ctx context.Context, targetID, accessToken string, since int64, isPage bool, maxPosts int) ([]transfer.FeedPost, error) {
	s.feedCalls++
	s.lastSince = since
	s.lastMaxPosts = maxPosts
	if err, ok := s.targetFeedErr[targetID]; ok {
		return nil, err
	}
	if s.feedErr != nil {
		return nil, s.feedErr
	}
	feed := s.feed
	if maxPosts > 0 && maxPosts < len(feed) {
		feed = feed[:maxPosts]
	}
	return feed, nil
}

func (s *fakeFacebookService) FetchAttachments(ctx context.Context, postID, accessToken string) []transfer.Attachment {
	return s.attachments[postID]
}

func (s *fakeFacebookService) GetPost(ctx context.Context, postID, accessToken string) (*transfer.FeedPost, error) {
	post, ok := s.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s not found", postID)
	}
	return post, nil
}
