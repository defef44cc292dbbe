package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"

	"github.com/maheshrc27/socialbridge/internal/models"
	"github.com/maheshrc27/socialbridge/internal/transfer"
)

// The deliveries table is append-only: rows are inserted and read, never
// updated.
type WebhookDeliveryRepository interface {
	Create(ctx context.Context, d *models.WebhookDelivery) error
	GetByID(ctx context.Context, id string) (*models.WebhookDelivery, error)
	ListByPostID(ctx context.Context, postID string) ([]*models.WebhookDelivery, error)
	ListByOrgID(ctx context.Context, orgID string, filter transfer.DeliveryFilter) ([]*models.WebhookDelivery, int, error)
}

type webhookDeliveryRepository struct {
	db *sql.DB
}

func NewWebhookDeliveryRepository(db *sql.DB) WebhookDeliveryRepository {
	return &webhookDeliveryRepository{db: db}
}

func (r *webhookDeliveryRepository) Create(ctx context.Context, d *models.WebhookDelivery) error {
	query := `
		INSERT INTO webhook_deliveries (id, post_id, website_id, status, status_code, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`

	_, err := r.db.ExecContext(ctx, query, d.ID, d.PostID, d.WebsiteID, d.Status, d.StatusCode, d.ErrorMessage, d.SentAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func scanDelivery(row interface{ Scan(...any) error }) (*models.WebhookDelivery, error) {
	var d models.WebhookDelivery
	err := row.Scan(&d.ID, &d.PostID, &d.WebsiteID, &d.Status, &d.StatusCode, &d.ErrorMessage, &d.SentAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const deliveryColumns = `id, post_id, website_id, status, status_code, COALESCE(error_message, ''), sent_at`

func (r *webhookDeliveryRepository) GetByID(ctx context.Context, id string) (*models.WebhookDelivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM webhook_deliveries WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	d, err := scanDelivery(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return d, nil
}

func (r *webhookDeliveryRepository) ListByPostID(ctx context.Context, postID string) ([]*models.WebhookDelivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM webhook_deliveries WHERE post_id = $1 ORDER BY sent_at DESC`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var deliveries []*models.WebhookDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

func (r *webhookDeliveryRepository) ListByOrgID(ctx context.Context, orgID string, filter transfer.DeliveryFilter) ([]*models.WebhookDelivery, int, error) {
	where := ` FROM webhook_deliveries d INNER JOIN posts p ON p.id = d.post_id WHERE p.org_id = $1`
	args := []any{orgID}

	appendFilter := func(clause, value string) {
		args = append(args, value)
		where += clause
	}

	if filter.PostID != "" {
		appendFilter(` AND d.post_id = $`+strconv.Itoa(len(args)+1), filter.PostID)
	}
	if filter.WebsiteID != "" {
		appendFilter(` AND d.website_id = $`+strconv.Itoa(len(args)+1), filter.WebsiteID)
	}
	if filter.Status != "" {
		appendFilter(` AND d.status = $`+strconv.Itoa(len(args)+1), filter.Status)
	}

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	query := `SELECT d.id, d.post_id, d.website_id, d.status, d.status_code, COALESCE(d.error_message, ''), d.sent_at` +
		where + ` ORDER BY d.sent_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var deliveries []*models.WebhookDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, total, rows.Err()
}
