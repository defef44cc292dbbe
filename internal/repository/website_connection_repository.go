package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/socialbridge/internal/models"
)

type WebsiteConnectionRepository interface {
	Link(ctx context.Context, websiteID, connectionID string) error
	Unlink(ctx context.Context, websiteID, connectionID string) (bool, error)
	Exists(ctx context.Context, websiteID, connectionID string) (bool, error)
	ListByWebsiteID(ctx context.Context, websiteID string) ([]*models.WebsiteConnection, error)
}

type websiteConnectionRepository struct {
	db *sql.DB
}

func NewWebsiteConnectionRepository(db *sql.DB) WebsiteConnectionRepository {
	return &websiteConnectionRepository{db: db}
}

func (r *websiteConnectionRepository) Link(ctx context.Context, websiteID, connectionID string) error {
	query := `
		INSERT INTO website_connections (website_id, connection_id)
		VALUES ($1, $2)
		ON CONFLICT (website_id, connection_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, websiteID, connectionID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *websiteConnectionRepository) Unlink(ctx context.Context, websiteID, connectionID string) (bool, error) {
	query := `DELETE FROM website_connections WHERE website_id = $1 AND connection_id = $2`
	result, err := r.db.ExecContext(ctx, query, websiteID, connectionID)
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

func (r *websiteConnectionRepository) Exists(ctx context.Context, websiteID, connectionID string) (bool, error) {
	query := `SELECT 1 FROM website_connections WHERE website_id = $1 AND connection_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, websiteID, connectionID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *websiteConnectionRepository) ListByWebsiteID(ctx context.Context, websiteID string) ([]*models.WebsiteConnection, error) {
	query := `SELECT website_id, connection_id, created_at FROM website_connections WHERE website_id = $1`
	rows, err := r.db.QueryContext(ctx, query, websiteID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var links []*models.WebsiteConnection
	for rows.Next() {
		var wc models.WebsiteConnection
		if err := rows.Scan(&wc.WebsiteID, &wc.ConnectionID, &wc.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		links = append(links, &wc)
	}
	return links, rows.Err()
}
