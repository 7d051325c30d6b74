package controller

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"termtidy-web/internal/auth"
	"termtidy-web/internal/service"
)

type UsageController interface {
	GetUsage(c *fiber.Ctx) error
}

type usageController struct {
	usageService service.UsageService
	logger       *slog.Logger
}

// NewUsageController builds a UsageController.
func NewUsageController(svc service.UsageService, logger *slog.Logger) UsageController {
	return &usageController{usageService: svc, logger: logger}
}

// GetUsage returns the caller's consumption for the current month.
func (h *usageController) GetUsage(c *fiber.Ctx) error {
	id, ok := auth.FromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	summary, err := h.usageService.Summary(c.UserContext(), id.UserID)
	if err != nil {
		h.logger.Error("read usage failed", "user_id", id.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to read usage",
			"details": err.Error(),
		})
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(summary)
}
