package controller

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"termtidy-web/internal/auth"
	"termtidy-web/internal/service"
)

type AccountController interface {
	Bootstrap(c *fiber.Ctx) error
}

type accountController struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountController builds an AccountController.
func NewAccountController(svc service.AccountService, logger *slog.Logger) AccountController {
	return &accountController{accountService: svc, logger: logger}
}

// Bootstrap prepares account rows for the signed-in user. Safe to call on
// every sign-in.
func (h *accountController) Bootstrap(c *fiber.Ctx) error {
	id, ok := auth.FromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	err := h.accountService.Bootstrap(c.UserContext(), id)
	if errors.Is(err, service.ErrUnauthenticated) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if err != nil {
		h.logger.Error("account bootstrap failed", "user_id", id.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": "Failed to prepare account",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}
