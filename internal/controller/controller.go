package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"termtidy-web/internal/csvrows"
	"termtidy-web/internal/model"
	"termtidy-web/internal/service"
)

type AuditController interface {
	Run(c *fiber.Ctx) error
	Export(c *fiber.Ctx) error
}

// auditController exposes the JSON audit endpoints.
type auditController struct {
	auditService service.AuditService
}

// NewAuditController builds an AuditController.
func NewAuditController(svc service.AuditService) AuditController {
	return &auditController{auditService: svc}
}

// Run relays the request body to the analysis service unchanged.
func (h *auditController) Run(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)

	body, status := h.auditService.Relay(c.UserContext(), payload)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).Send(body)
}

// Export converts audit results to a CSV download. It accepts an audit
// response, a bare results array, or either one in a "results" form field.
func (h *auditController) Export(c *fiber.Ctx) error {
	raw := c.Body()
	if field := c.FormValue("results"); field != "" {
		raw = []byte(field)
	}

	if !gjson.ValidBytes(raw) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "Invalid JSON"})
	}

	doc := gjson.ParseBytes(raw)
	if doc.IsObject() {
		doc = doc.Get("results")
	}

	out := csvrows.Export(model.ParseSuggestions(doc))
	if out == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+csvrows.ExportFilename+`"`)
	return c.SendString(out)
}
