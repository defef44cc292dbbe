package models

import (
	"encoding/json"
	"time"
)

// Post is one imported Facebook post. FacebookPostID is unique across the
// whole system: a post is stored at most once no matter how many times it
// shows up in a feed page.
type Post struct {
	ID             string          `db:"id" json:"id"`
	OrgID          string          `db:"org_id" json:"org_id"`
	ConnectionID   string          `db:"connection_id" json:"connection_id"`
	FacebookPostID string          `db:"facebook_post_id" json:"facebook_post_id"`
	Content        string          `db:"content" json:"content"`
	PostType       string          `db:"post_type" json:"post_type"`
	Metadata       json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	PostedAt       time.Time       `db:"posted_at" json:"posted_at"`
	WebhookSent    bool            `db:"webhook_sent" json:"webhook_sent"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// AttachmentMapping dedupes attachment fetches: it maps an attachment seen on
// one post back to the post that first carried it, keyed per connection.
type AttachmentMapping struct {
	ConnectionID   string `db:"connection_id"`
	AttachmentID   string `db:"attachment_id"`
	FacebookPostID string `db:"facebook_post_id"`
}
