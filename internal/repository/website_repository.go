package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/socialbridge/internal/models"
)

type WebsiteRepository interface {
	Create(ctx context.Context, w *models.Website) error
	GetByID(ctx context.Context, id string) (*models.Website, error)
	ListByOrgID(ctx context.Context, orgID string) ([]*models.Website, error)
	ListActiveByConnectionID(ctx context.Context, connectionID string) ([]*models.Website, error)
	Update(ctx context.Context, w *models.Website) error
	Remove(ctx context.Context, id string) (bool, error)
}

type websiteRepository struct {
	db *sql.DB
}

func NewWebsiteRepository(db *sql.DB) WebsiteRepository {
	return &websiteRepository{db: db}
}

const websiteColumns = `id, org_id, COALESCE(name, ''), webhook_url, encrypted_auth_key, is_active, created_at`

func (r *websiteRepository) Create(ctx context.Context, w *models.Website) error {
	query := `
		INSERT INTO websites (id, org_id, name, webhook_url, encrypted_auth_key, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, w.ID, w.OrgID, w.Name, w.WebhookURL, w.EncryptedAuthKey, w.IsActive)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func scanWebsite(row interface{ Scan(...any) error }) (*models.Website, error) {
	var w models.Website
	err := row.Scan(&w.ID, &w.OrgID, &w.Name, &w.WebhookURL, &w.EncryptedAuthKey, &w.IsActive, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *websiteRepository) GetByID(ctx context.Context, id string) (*models.Website, error) {
	query := `SELECT ` + websiteColumns + ` FROM websites WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	w, err := scanWebsite(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return w, nil
}

func (r *websiteRepository) ListByOrgID(ctx context.Context, orgID string) ([]*models.Website, error) {
	query := `SELECT ` + websiteColumns + ` FROM websites WHERE org_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var websites []*models.Website
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		websites = append(websites, w)
	}
	return websites, rows.Err()
}

func (r *websiteRepository) ListActiveByConnectionID(ctx context.Context, connectionID string) ([]*models.Website, error) {
	query := `
		SELECT w.id, w.org_id, COALESCE(w.name, ''), w.webhook_url, w.encrypted_auth_key, w.is_active, w.created_at
		FROM websites w
		INNER JOIN website_connections wc ON wc.website_id = w.id
		WHERE wc.connection_id = $1 AND w.is_active = TRUE
		ORDER BY w.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, connectionID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var websites []*models.Website
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		websites = append(websites, w)
	}
	return websites, rows.Err()
}

func (r *websiteRepository) Update(ctx context.Context, w *models.Website) error {
	query := `
		UPDATE websites
		SET name = NULLIF($2, ''),
			webhook_url = $3,
			encrypted_auth_key = $4,
			is_active = $5
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, w.ID, w.Name, w.WebhookURL, w.EncryptedAuthKey, w.IsActive)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *websiteRepository) Remove(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM websites WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return affected > 0, nil
}
