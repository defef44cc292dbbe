package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/socialbridge/internal/service"
)

type ConnectionHandler struct {
	cs service.ConnectionService
}

func NewConnectionHandler(cs service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{cs: cs}
}

func (h *ConnectionHandler) ListConnections(c *fiber.Ctx) error {
	userID := GetUserID(c)
	orgID := c.Query("org_id")
	if orgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "org_id is required",
		})
	}

	connections, err := h.cs.List(c.Context(), userID, orgID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(connections)
}

func (h *ConnectionHandler) GetConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)

	conn, err := h.cs.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(conn)
}

func (h *ConnectionHandler) RenameConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.cs.Rename(c.Context(), userID, c.Params("id"), body.Name); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ConnectionHandler) DeactivateConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.cs.Deactivate(c.Context(), userID, c.Params("id")); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
