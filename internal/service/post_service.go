package service

import (
	"context"
	"fmt"

	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/repository"
)

// PostService exposes imported posts to the API surface, scoped to the
// caller's organization.
type PostService interface {
	List(ctx context.Context, userID, orgID string, page, limit int) ([]*models.Post, int, error)
	Get(ctx context.Context, userID, id string) (*models.Post, error)
	Delete(ctx context.Context, userID, id string) error
}

type postService struct {
	pr  repository.PostRepository
	ids IdentityService
}

func NewPostService(pr repository.PostRepository, ids IdentityService) PostService {
	return &postService{pr: pr, ids: ids}
}

func clampPagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func (s *postService) List(ctx context.Context, userID, orgID string, page, limit int) ([]*models.Post, int, error) {
	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, orgID)
	if err != nil {
		return nil, 0, err
	}
	if !hasAccess {
		return nil, 0, fmt.Errorf("%w: organization %s", ErrForbidden, orgID)
	}

	page, limit = clampPagination(page, limit)
	return s.pr.ListByOrgID(ctx, orgID, page, limit)
}

func (s *postService) Get(ctx context.Context, userID, id string) (*models.Post, error) {
	return s.authorizedPost(ctx, userID, id)
}

// Delete removes the post row. Ledger rows for the post are intentionally
// kept; the delivery history is append-only.
func (s *postService) Delete(ctx context.Context, userID, id string) error {
	post, err := s.authorizedPost(ctx, userID, id)
	if err != nil {
		return err
	}

	removed, err := s.pr.Remove(ctx, id, post.OrgID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: post %s", ErrNotFound, id)
	}
	return nil
}

func (s *postService) authorizedPost(ctx context.Context, userID, id string) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}

	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, post.OrgID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, fmt.Errorf("%w: post %s", ErrForbidden, id)
	}

	return post, nil
}
