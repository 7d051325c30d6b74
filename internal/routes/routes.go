package routes

import (
	"github.com/gofiber/fiber/v2"

	"termtidy-web/internal/auth"
	"termtidy-web/internal/controller"
)

// Controllers groups the handlers mounted by Register.
type Controllers struct {
	Audit   controller.AuditController
	Usage   controller.UsageController
	Account controller.AccountController
	Pages   controller.PageController
}

// Register attaches all HTTP routes to the Fiber app.
func Register(app *fiber.App, ctrl Controllers) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/app")
	})
	app.Get("/app", ctrl.Pages.App)
	app.Get("/account", ctrl.Pages.Account)

	api := app.Group("/api")
	// /run does not read the session.
	api.Post("/run", ctrl.Audit.Run)
	api.Post("/audit", ctrl.Pages.SubmitAudit)
	api.Post("/export", ctrl.Audit.Export)
	api.Get("/usage", auth.RequireIdentity(), ctrl.Usage.GetUsage)
	api.Post("/session/bootstrap", auth.RequireIdentity(), ctrl.Account.Bootstrap)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
