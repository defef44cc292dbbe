package queue

import (
	"github.com/maheshrc27/socialbridge/internal/service"
	"github.com/maheshrc27/socialbridge/internal/transfer"
)

type Queue struct {
	ss service.SyncService
	wh service.WebhookService
}

func NewQueue(ss service.SyncService, wh service.WebhookService) *Queue {
	return &Queue{ss: ss, wh: wh}
}

const (
	TaskTypeSyncConnection = "sync:connection"
	TaskTypeResendWebhook  = "resend:webhook"
)

type SyncConnectionPayload struct {
	ConnectionID string                `json:"connection_id"`
	Options      *transfer.SyncOptions `json:"options,omitempty"`
}

type ResendWebhookPayload struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}
