package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
)

// UpstreamResult is what came back from one call to the analysis service.
// Err is set when no response was received at all.
type UpstreamResult struct {
	Status int
	Body   []byte
	Err    error
}

// Upstream posts a JSON body to the analysis service.
type Upstream interface {
	Post(ctx context.Context, url string, body []byte) UpstreamResult
}

// FiberUpstream is an Upstream backed by fiber's fasthttp client. It makes
// exactly one attempt with no client-side timeout.
type FiberUpstream struct{}

func (FiberUpstream) Post(_ context.Context, url string, body []byte) UpstreamResult {
	agent := fiber.Post(url)
	agent.Body(body)
	agent.ContentType(fiber.MIMEApplicationJSON)
	agent.Set(fiber.HeaderCacheControl, "no-store")

	if err := agent.Parse(); err != nil {
		return UpstreamResult{Err: err}
	}

	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return UpstreamResult{Err: errors.Join(errs...)}
	}
	return UpstreamResult{Status: status, Body: respBody}
}

type relayError struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type nonJSONError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Raw   string `json:"raw"`
}

// NormalizeUpstream turns an upstream outcome into the body and status the
// relay answers with. JSON bodies pass through byte for byte.
func NormalizeUpstream(res UpstreamResult) ([]byte, int) {
	if res.Err != nil {
		return mustJSON(relayError{Error: "Failed to fetch", Detail: res.Err.Error()}), fiber.StatusInternalServerError
	}
	if gjson.ValidBytes(res.Body) {
		return res.Body, res.Status
	}
	return mustJSON(nonJSONError{Error: "Non-JSON response from API", Raw: string(res.Body)}), res.Status
}

// AuditProxy relays audit payloads to the analysis service's /run.
type AuditProxy struct {
	baseURL  string
	upstream Upstream
	logger   *slog.Logger
}

// NewAuditProxy creates an AuditProxy. An empty baseURL makes every Run
// fail without a network call.
func NewAuditProxy(baseURL string, upstream Upstream, logger *slog.Logger) *AuditProxy {
	return &AuditProxy{
		baseURL:  baseURL,
		upstream: upstream,
		logger:   logger,
	}
}

// Run forwards body unchanged and returns the normalized response.
func (p *AuditProxy) Run(ctx context.Context, body []byte) ([]byte, int) {
	if p.baseURL == "" {
		return mustJSON(relayError{Error: "Missing TERMTIDY_API_URL"}), fiber.StatusInternalServerError
	}

	res := p.upstream.Post(ctx, p.baseURL+"/run", body)
	if res.Err != nil {
		p.logger.Warn("analysis service unreachable", "error", res.Err)
	} else {
		p.logger.Debug("analysis service responded", "status", res.Status, "bytes", len(res.Body))
	}
	return NormalizeUpstream(res)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// only fixed shapes go through here
		panic(err)
	}
	return b
}
