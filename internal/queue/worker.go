package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (j *Queue) HandleSyncConnectionTask(ctx context.Context, task *asynq.Task) error {
	var payload SyncConnectionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	// The enqueueing request was already authorized, so the access check is
	// skipped here.
	result, err := j.ss.SyncByID(ctx, "", payload.ConnectionID, payload.Options)
	if err != nil {
		log.Printf("Error syncing connection %s: %v", payload.ConnectionID, err)
		return err
	}

	log.Printf("Synced connection %s: %d posts processed", payload.ConnectionID, result.PostsProcessed)
	return nil
}

func (j *Queue) HandleResendWebhookTask(ctx context.Context, task *asynq.Task) error {
	var payload ResendWebhookPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	deliveries, err := j.wh.Resend(ctx, payload.PostID, payload.UserID)
	if err != nil {
		log.Printf("Error resending webhooks for post %s: %v", payload.PostID, err)
		return err
	}

	log.Printf("Resent webhooks for post %s: %d deliveries recorded", payload.PostID, len(deliveries))
	return nil
}
