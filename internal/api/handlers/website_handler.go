package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialbridge/internal/service"
	"github.com/maheshrc27/socialbridge/internal/transfer"
)

type WebsiteHandler struct {
	ws service.WebsiteService
	wh service.WebhookService
}

func NewWebsiteHandler(ws service.WebsiteService, wh service.WebhookService) *WebsiteHandler {
	return &WebsiteHandler{ws: ws, wh: wh}
}

func (h *WebsiteHandler) CreateWebsite(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.CreateWebsiteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	website, err := h.ws.Create(c.Context(), userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(website)
}

func (h *WebsiteHandler) ListWebsites(c *fiber.Ctx) error {
	userID := GetUserID(c)
	orgID := c.Query("org_id")
	if orgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "org_id is required",
		})
	}

	websites, err := h.ws.List(c.Context(), userID, orgID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(websites)
}

func (h *WebsiteHandler) GetWebsite(c *fiber.Ctx) error {
	userID := GetUserID(c)

	website, err := h.ws.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(website)
}

func (h *WebsiteHandler) UpdateWebsite(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.UpdateWebsiteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	website, err := h.ws.Update(c.Context(), userID, c.Params("id"), req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(website)
}

func (h *WebsiteHandler) DeleteWebsite(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.ws.Delete(c.Context(), userID, c.Params("id")); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *WebsiteHandler) LinkConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		ConnectionID string `json:"connection_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ConnectionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "connection_id is required",
		})
	}

	if err := h.ws.LinkConnection(c.Context(), userID, c.Params("id"), body.ConnectionID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *WebsiteHandler) UnlinkConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.ws.UnlinkConnection(c.Context(), userID, c.Params("id"), c.Params("connectionId")); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *WebsiteHandler) ListWebsiteConnections(c *fiber.Ctx) error {
	userID := GetUserID(c)

	links, err := h.ws.ListConnections(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(links)
}

// TestWebsiteWebhook fires a signed test payload at the website's test
// endpoint and reports the outcome without touching the delivery ledger.
func (h *WebsiteHandler) TestWebsiteWebhook(c *fiber.Ctx) error {
	userID := GetUserID(c)

	result, err := h.wh.SendTest(c.Context(), c.Params("id"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
