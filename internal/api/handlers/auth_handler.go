package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/socialbridge/configs"
	"github.com/maheshrc27/socialbridge/internal/service"
)

type AuthHandler struct {
	cs  service.ConnectionService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, cs service.ConnectionService) *AuthHandler {
	return &AuthHandler{cs: cs, cfg: cfg}
}

// ConnectFacebook starts the OAuth consent flow for the caller's
// organization.
func (h *AuthHandler) ConnectFacebook(c *fiber.Ctx) error {
	userID := GetUserID(c)
	orgID := c.Query("org_id")
	if orgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "org_id is required",
		})
	}

	authURL, _, err := h.cs.ConnectURL(c.Context(), userID, orgID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect(authURL)
}

func (h *AuthHandler) ConnectFacebookCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing code or state",
		})
	}

	_, err := h.cs.CompleteConnect(c.Context(), code, state)
	if err != nil {
		return respondServiceError(c, err)
	}

	redirectURL := fmt.Sprintf("%s/connections", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
