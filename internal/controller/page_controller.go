package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"termtidy-web/internal/auth"
	"termtidy-web/internal/model"
	"termtidy-web/internal/service"
	"termtidy-web/internal/view"
)

type PageController interface {
	App(c *fiber.Ctx) error
	SubmitAudit(c *fiber.Ctx) error
	Account(c *fiber.Ctx) error
}

type pageController struct {
	auditService service.AuditService
	usageService service.UsageService
	logger       *slog.Logger
}

// NewPageController builds a PageController.
func NewPageController(audit service.AuditService, usage service.UsageService, logger *slog.Logger) PageController {
	return &pageController{
		auditService: audit,
		usageService: usage,
		logger:       logger,
	}
}

// App renders the empty upload form.
func (h *pageController) App(c *fiber.Ctx) error {
	return h.renderApp(c, formValues(service.NewAuditForm()), view.NewAuditScreen())
}

// SubmitAudit takes the multipart upload form, runs the audit and renders
// the outcome. Clients asking for JSON get the relay response instead.
func (h *pageController) SubmitAudit(c *fiber.Ctx) error {
	form := auditFormFrom(c)

	var userID string
	if id, ok := auth.FromCtx(c); ok {
		userID = id.UserID
	}

	screen := view.NewAuditScreen()
	screen.Start()

	body, status, err := h.auditService.Submit(c.UserContext(), form, userID)

	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		if wantsJSON(c) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": vErr.Message, "detail": vErr.Detail})
		}
		screen.Reject(vErr.Message, vErr.Detail)
	case err != nil:
		h.logger.Warn("audit submission failed", "error", err)
		if wantsJSON(c) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "Failed to fetch", "detail": err.Error()})
		}
		screen.Fail(err)
	default:
		if wantsJSON(c) {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(status).Send(body)
		}
		screen.Settle(status, body)
	}

	return h.renderApp(c, formValues(form), screen)
}

// Account shows the usage panel for signed-in users.
func (h *pageController) Account(c *fiber.Ctx) error {
	id, ok := auth.FromCtx(c)
	if !ok {
		return c.Redirect("/login")
	}

	panel := h.usagePanel(c.UserContext(), id.UserID, false)

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return view.RenderAccount(c, view.NewAccountPage(panel.Render(), id.UserID, id.Email))
}

func (h *pageController) renderApp(c *fiber.Ctx, form view.FormValues, screen *view.AuditScreen) error {
	page := view.AppPage{Form: form, Audit: screen.View()}
	if id, ok := auth.FromCtx(c); ok {
		page.Usage = h.usagePanel(c.UserContext(), id.UserID, true).Render()
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return view.RenderApp(c, page)
}

func (h *pageController) usagePanel(ctx context.Context, userID string, compact bool) *view.UsagePanel {
	panel := view.NewUsagePanel(view.UsageSourceFunc(func(ctx context.Context) (model.UsageSummary, error) {
		return h.usageService.Summary(ctx, userID)
	}), compact)
	panel.Load(ctx)
	if panel.State() == view.PanelFailed {
		h.logger.Debug("usage panel unavailable", "user_id", userID)
	}
	return panel
}

func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// auditFormFrom reads the multipart form. Absent fields keep their
// defaults; a missing or unnamed file part counts as not selected.
func auditFormFrom(c *fiber.Ctx) service.AuditForm {
	form := service.NewAuditForm()

	mf, err := c.MultipartForm()
	if err != nil {
		return form
	}

	if v, ok := lastValue(mf.Value, "min_clicks"); ok {
		form.MinClicks = v
	}
	if v, ok := lastValue(mf.Value, "min_cost"); ok {
		form.MinCost = v
	}
	if v, ok := lastValue(mf.Value, "similarity_threshold"); ok {
		form.SimilarityThreshold = v
	}
	if v, ok := lastValue(mf.Value, "batch_size"); ok {
		form.BatchSize = v
	}
	if v, ok := lastValue(mf.Value, "use_llm"); ok {
		form.UseLLM = parseCheckbox(v)
	}
	if v, ok := lastValue(mf.Value, "brand_terms"); ok {
		form.BrandTerms = v
	}

	form.SearchTerms = uploadFrom(mf.File["search_terms"])
	form.Keywords = uploadFrom(mf.File["keywords"])
	return form
}

func lastValue(values map[string][]string, key string) (string, bool) {
	vs := values[key]
	if len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

func parseCheckbox(v string) bool {
	v = strings.TrimSpace(v)
	if v == "on" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func uploadFrom(files []*multipart.FileHeader) *service.Upload {
	if len(files) == 0 || files[0].Filename == "" {
		return nil
	}
	fh := files[0]
	return &service.Upload{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func formValues(form service.AuditForm) view.FormValues {
	return view.FormValues{
		MinClicks:           form.MinClicks,
		MinCost:             form.MinCost,
		SimilarityThreshold: form.SimilarityThreshold,
		BatchSize:           form.BatchSize,
		UseLLM:              form.UseLLM,
		BrandTerms:          form.BrandTerms,
	}
}
