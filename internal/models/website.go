package models

import "time"

// Website is a subscriber endpoint. The signing key used to HMAC outgoing
// webhook bodies is stored encrypted.
type Website struct {
	ID               string    `db:"id" json:"id"`
	OrgID            string    `db:"org_id" json:"org_id"`
	Name             string    `db:"name" json:"name,omitempty"`
	WebhookURL       string    `db:"webhook_url" json:"webhook_url"`
	EncryptedAuthKey string    `db:"encrypted_auth_key" json:"-"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// WebsiteConnection links a website to a connection. Posts from the
// connection fan out to every active linked website.
type WebsiteConnection struct {
	WebsiteID    string    `db:"website_id" json:"website_id"`
	ConnectionID string    `db:"connection_id" json:"connection_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
