package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	job "github.com/maheshrc27/socialbridge/internal/jobs"
	"github.com/maheshrc27/socialbridge/internal/queue"
	"github.com/maheshrc27/socialbridge/internal/service"
	"github.com/maheshrc27/socialbridge/internal/transfer"
)

type SyncHandler struct {
	ss      service.SyncService
	cs      service.ConnectionService
	syncJob *job.SyncJob
	client  *asynq.Client
}

func NewSyncHandler(ss service.SyncService, cs service.ConnectionService, syncJob *job.SyncJob, client *asynq.Client) *SyncHandler {
	return &SyncHandler{ss: ss, cs: cs, syncJob: syncJob, client: client}
}

// parseSyncOptions returns nil when no window was requested, which selects
// the routine watermark-based cycle. With a window the cycle is capped and
// the watermark stays put.
func parseSyncOptions(c *fiber.Ctx) (*transfer.SyncOptions, string) {
	window := c.QueryInt("window", 0)
	if window == 0 {
		return nil, ""
	}

	if window < 1 || window > 100 {
		return nil, "window must be between 1 and 100"
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 || offset >= window {
		return nil, "offset must be smaller than window"
	}

	limit := c.QueryInt("limit", 0)
	if limit == 0 {
		limit = window - offset
		if limit > 10 {
			limit = 10
		}
	}
	if limit < 1 || offset+limit > window {
		return nil, "offset + limit must not exceed window"
	}

	return &transfer.SyncOptions{Window: window, Offset: offset, Limit: limit}, ""
}

// TriggerSyncAll kicks the routine batch cycle off in the background. The
// job's own guard makes this a no-op while a cycle is already running.
func (h *SyncHandler) TriggerSyncAll(c *fiber.Ctx) error {
	go h.syncJob.Run()
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *SyncHandler) SyncConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)

	opts, validationErr := parseSyncOptions(c)
	if validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr,
		})
	}

	result, err := h.ss.SyncByID(c.Context(), userID, c.Params("id"), opts)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// QueueSyncConnection enqueues the same cycle for background execution.
func (h *SyncHandler) QueueSyncConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)
	connectionID := c.Params("id")

	opts, validationErr := parseSyncOptions(c)
	if validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr,
		})
	}

	// Authorization happens before enqueueing; the worker trusts the task.
	if _, err := h.cs.Get(c.Context(), userID, connectionID); err != nil {
		return respondServiceError(c, err)
	}

	err := queue.EnqueueSyncConnection(h.client, queue.SyncConnectionPayload{
		ConnectionID: connectionID,
		Options:      opts,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}
