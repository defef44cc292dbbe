package models

import "time"

// Connection is one linked Facebook account or page. The access token is
// stored encrypted; the plaintext never persists.
type Connection struct {
	ID                   string     `db:"id" json:"id"`
	OrgID                string     `db:"org_id" json:"org_id"`
	FacebookUserID       string     `db:"facebook_user_id" json:"facebook_user_id"`
	PageID               string     `db:"page_id" json:"page_id,omitempty"`
	Name                 string     `db:"name" json:"name,omitempty"`
	EncryptedAccessToken string     `db:"encrypted_access_token" json:"-"`
	TokenExpiresAt       *time.Time `db:"token_expires_at" json:"token_expires_at,omitempty"`
	LastSyncAt           *time.Time `db:"last_sync_at" json:"last_sync_at,omitempty"`
	IsActive             bool       `db:"is_active" json:"is_active"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// TargetID is the Graph object the feed is read from: the page when the
// connection is page-scoped, otherwise the user.
func (c *Connection) TargetID() string {
	if c.PageID != "" {
		return c.PageID
	}
	return c.FacebookUserID
}
