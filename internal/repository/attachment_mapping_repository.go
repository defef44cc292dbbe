package repository

import (
	"context"
	"database/sql"
	"log/slog"
)

// Attachment mappings are keyed by (connection, attachment); they let the
// sync engine recognize a feed item that only re-surfaces media already
// imported under another post.
type AttachmentMappingRepository interface {
	Upsert(ctx context.Context, connectionID, attachmentID, facebookPostID string) error
	GetPostID(ctx context.Context, connectionID, attachmentID string) (string, error)
}

type attachmentMappingRepository struct {
	db *sql.DB
}

func NewAttachmentMappingRepository(db *sql.DB) AttachmentMappingRepository {
	return &attachmentMappingRepository{db: db}
}

func (r *attachmentMappingRepository) Upsert(ctx context.Context, connectionID, attachmentID, facebookPostID string) error {
	query := `
		INSERT INTO attachment_mappings (connection_id, attachment_id, facebook_post_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (connection_id, attachment_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, connectionID, attachmentID, facebookPostID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *attachmentMappingRepository) GetPostID(ctx context.Context, connectionID, attachmentID string) (string, error) {
	query := `SELECT facebook_post_id FROM attachment_mappings WHERE connection_id = $1 AND attachment_id = $2`

	var facebookPostID string
	err := r.db.QueryRowContext(ctx, query, connectionID, attachmentID).Scan(&facebookPostID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		slog.Info(err.Error())
		return "", err
	}

	return facebookPostID, nil
}
