package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/socialbridge/internal/queue"
	"github.com/maheshrc27/socialbridge/internal/service"
)

type PostHandler struct {
	ps     service.PostService
	client *asynq.Client
}

func NewPostHandler(ps service.PostService, client *asynq.Client) *PostHandler {
	return &PostHandler{ps: ps, client: client}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	orgID := c.Query("org_id")
	if orgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "org_id is required",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	posts, total, err := h.ps.List(c.Context(), userID, orgID, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts": posts,
		"total": total,
		"page":  page,
	})
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	post, err := h.ps.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.ps.Delete(c.Context(), userID, c.Params("id")); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// ResendPost queues a webhook redelivery. Access is checked here before the
// task is enqueued; the worker runs with that authorization.
func (h *PostHandler) ResendPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	// The access check happens up front so a bad id fails the request, not
	// the background task.
	if _, err := h.ps.Get(c.Context(), userID, postID); err != nil {
		return respondServiceError(c, err)
	}

	err := queue.EnqueueResendWebhook(h.client, queue.ResendWebhookPayload{
		PostID: postID,
		UserID: userID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}
