package models

import "time"

// WebhookDelivery is one row of the append-only delivery ledger. A resend
// writes a new row; existing rows are never mutated.
type WebhookDelivery struct {
	ID           string    `db:"id" json:"id"`
	PostID       string    `db:"post_id" json:"post_id"`
	WebsiteID    string    `db:"website_id" json:"website_id"`
	Status       string    `db:"status" json:"status"`
	StatusCode   *int      `db:"status_code" json:"status_code,omitempty"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	SentAt       time.Time `db:"sent_at" json:"sent_at"`
}

const (
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)
