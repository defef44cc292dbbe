package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/socialbridge/internal/models"
)

type ConnectionRepository interface {
	Create(ctx context.Context, c *models.Connection) error
	GetByID(ctx context.Context, id string) (*models.Connection, error)
	ListActive(ctx context.Context) ([]*models.Connection, error)
	ListByOrgID(ctx context.Context, orgID string) ([]*models.Connection, error)
	SetToken(ctx context.Context, id, encryptedToken string, expiresAt time.Time) error
	SetLastSyncAt(ctx context.Context, id string, syncedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
	SetName(ctx context.Context, id, name string) error
}

type connectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

const connectionColumns = `id, org_id, facebook_user_id, COALESCE(page_id, ''), COALESCE(name, ''),
	encrypted_access_token, token_expires_at, last_sync_at, is_active, created_at`

func (r *connectionRepository) Create(ctx context.Context, c *models.Connection) error {
	query := `
		INSERT INTO connections (id, org_id, facebook_user_id, page_id, name, encrypted_access_token, token_expires_at, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.OrgID,
		c.FacebookUserID,
		c.PageID,
		c.Name,
		c.EncryptedAccessToken,
		c.TokenExpiresAt,
		c.IsActive,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func scanConnection(row interface{ Scan(...any) error }) (*models.Connection, error) {
	var c models.Connection
	err := row.Scan(&c.ID, &c.OrgID, &c.FacebookUserID, &c.PageID, &c.Name,
		&c.EncryptedAccessToken, &c.TokenExpiresAt, &c.LastSyncAt, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	c, err := scanConnection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return c, nil
}

func (r *connectionRepository) ListActive(ctx context.Context) ([]*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE is_active = TRUE ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, c)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return connections, nil
}

func (r *connectionRepository) ListByOrgID(ctx context.Context, orgID string) ([]*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE org_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, c)
	}
	return connections, rows.Err()
}

func (r *connectionRepository) SetToken(ctx context.Context, id, encryptedToken string, expiresAt time.Time) error {
	query := `
		UPDATE connections
		SET encrypted_access_token = $2,
			token_expires_at = $3
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, encryptedToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *connectionRepository) SetLastSyncAt(ctx context.Context, id string, syncedAt time.Time) error {
	query := `UPDATE connections SET last_sync_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, syncedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *connectionRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE connections SET is_active = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *connectionRepository) SetName(ctx context.Context, id, name string) error {
	query := `UPDATE connections SET name = NULLIF($2, '') WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, name)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
