package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialbridge/internal/service"
	"github.com/maheshrc27/socialbridge/internal/transfer"
)

type DeliveryHandler struct {
	ds service.DeliveryService
}

func NewDeliveryHandler(ds service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{ds: ds}
}

func (h *DeliveryHandler) ListDeliveries(c *fiber.Ctx) error {
	userID := GetUserID(c)
	orgID := c.Query("org_id")
	if orgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "org_id is required",
		})
	}

	filter := transfer.DeliveryFilter{
		PostID:    c.Query("post_id"),
		WebsiteID: c.Query("website_id"),
		Status:    c.Query("status"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 20),
	}

	deliveries, total, err := h.ds.List(c.Context(), userID, orgID, filter)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"deliveries": deliveries,
		"total":      total,
		"page":       filter.Page,
	})
}

func (h *DeliveryHandler) ListPostDeliveries(c *fiber.Ctx) error {
	userID := GetUserID(c)

	deliveries, err := h.ds.ListByPost(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(deliveries)
}

func (h *DeliveryHandler) GetDelivery(c *fiber.Ctx) error {
	userID := GetUserID(c)

	delivery, err := h.ds.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(delivery)
}
