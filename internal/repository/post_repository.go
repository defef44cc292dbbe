package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/socialbridge/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetByFacebookPostID(ctx context.Context, facebookPostID string) (*models.Post, error)
	ListByOrgID(ctx context.Context, orgID string, page, limit int) ([]*models.Post, int, error)
	SetWebhookSent(ctx context.Context, id string) error
	Remove(ctx context.Context, id, orgID string) (bool, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, org_id, connection_id, facebook_post_id, COALESCE(content, ''),
	post_type, metadata, posted_at, webhook_sent, created_at`

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, org_id, connection_id, facebook_post_id, content, post_type, metadata, posted_at, webhook_sent)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
	`

	var metadata any
	if len(post.Metadata) > 0 {
		metadata = []byte(post.Metadata)
	}

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.OrgID,
		post.ConnectionID,
		post.FacebookPostID,
		post.Content,
		post.PostType,
		metadata,
		post.PostedAt,
		post.WebhookSent,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	var metadata []byte
	err := row.Scan(&post.ID, &post.OrgID, &post.ConnectionID, &post.FacebookPostID,
		&post.Content, &post.PostType, &metadata, &post.PostedAt, &post.WebhookSent, &post.CreatedAt)
	if err != nil {
		return nil, err
	}
	post.Metadata = metadata
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) GetByFacebookPostID(ctx context.Context, facebookPostID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE facebook_post_id = $1`
	row := r.db.QueryRowContext(ctx, query, facebookPostID)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) ListByOrgID(ctx context.Context, orgID string, page, limit int) ([]*models.Post, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE org_id = $1`, orgID).Scan(&total)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE org_id = $1 ORDER BY posted_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, orgID, limit, (page-1)*limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		posts = append(posts, post)
	}

	return posts, total, rows.Err()
}

func (r *postRepository) SetWebhookSent(ctx context.Context, id string) error {
	query := `UPDATE posts SET webhook_sent = TRUE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id, orgID string) (bool, error) {
	query := `DELETE FROM posts WHERE id = $1 AND org_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, orgID)
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
