package service

import (
	"context"
	"fmt"

	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/repository"
	"github.com/maheshrc27/socialbridge/internal/transfer"
)

// DeliveryService is the read side of the delivery ledger.
type DeliveryService interface {
	List(ctx context.Context, userID, orgID string, filter transfer.DeliveryFilter) ([]*models.WebhookDelivery, int, error)
	ListByPost(ctx context.Context, userID, postID string) ([]*models.WebhookDelivery, error)
	Get(ctx context.Context, userID, id string) (*models.WebhookDelivery, error)
}

type deliveryService struct {
	dr  repository.WebhookDeliveryRepository
	pr  repository.PostRepository
	ids IdentityService
}

func NewDeliveryService(dr repository.WebhookDeliveryRepository, pr repository.PostRepository, ids IdentityService) DeliveryService {
	return &deliveryService{dr: dr, pr: pr, ids: ids}
}

func (s *deliveryService) List(ctx context.Context, userID, orgID string, filter transfer.DeliveryFilter) ([]*models.WebhookDelivery, int, error) {
	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, orgID)
	if err != nil {
		return nil, 0, err
	}
	if !hasAccess {
		return nil, 0, fmt.Errorf("%w: organization %s", ErrForbidden, orgID)
	}

	if filter.Status != "" && filter.Status != models.DeliveryStatusSuccess && filter.Status != models.DeliveryStatusFailed {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrBadRequest, filter.Status)
	}

	filter.Page, filter.Limit = clampPagination(filter.Page, filter.Limit)
	return s.dr.ListByOrgID(ctx, orgID, filter)
}

func (s *deliveryService) ListByPost(ctx context.Context, userID, postID string) ([]*models.WebhookDelivery, error) {
	if err := s.authorizePost(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.dr.ListByPostID(ctx, postID)
}

func (s *deliveryService) Get(ctx context.Context, userID, id string) (*models.WebhookDelivery, error) {
	delivery, err := s.dr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, fmt.Errorf("%w: delivery %s", ErrNotFound, id)
	}

	if err := s.authorizePost(ctx, userID, delivery.PostID); err != nil {
		return nil, err
	}
	return delivery, nil
}

// authorizePost walks delivery -> post -> org for the access check; the
// ledger rows themselves carry no org column.
func (s *deliveryService) authorizePost(ctx context.Context, userID, postID string) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	hasAccess, err := s.ids.UserHasOrganization(ctx, userID, post.OrgID)
	if err != nil {
		return err
	}
	if !hasAccess {
		return fmt.Errorf("%w: post %s", ErrForbidden, postID)
	}
	return nil
}
