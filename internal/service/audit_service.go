package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"termtidy-web/internal/model"
)

// AuditService runs audits against the analysis service.
type AuditService interface {
	// Relay forwards a prepared JSON payload.
	Relay(ctx context.Context, body []byte) ([]byte, int)

	// Submit builds the payload from the upload form and relays it. A
	// non-empty userID records an audit_submitted event.
	Submit(ctx context.Context, form AuditForm, userID string) ([]byte, int, error)
}

type auditService struct {
	proxy  *AuditProxy
	events EventWorker
	now    func() time.Time
}

// NewAuditService constructs an AuditService.
func NewAuditService(proxy *AuditProxy, events EventWorker) AuditService {
	return &auditService{
		proxy:  proxy,
		events: events,
		now:    time.Now,
	}
}

func (s *auditService) Relay(ctx context.Context, body []byte) ([]byte, int) {
	return s.proxy.Run(ctx, body)
}

func (s *auditService) Submit(ctx context.Context, form AuditForm, userID string) ([]byte, int, error) {
	req, err := BuildAuditRequest(form)
	if err != nil {
		return nil, 0, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("encode audit request: %w", err)
	}

	body, status := s.proxy.Run(ctx, payload)

	if userID != "" && s.events != nil {
		s.events.Enqueue(model.UsageEvent{
			ID:          uuid.NewString(),
			UserID:      userID,
			EventType:   model.EventAuditSubmitted,
			AmountTerms: int64(len(req.SearchTerms)),
			Metadata: map[string]any{
				"search_terms_rows": len(req.SearchTerms),
				"keywords_rows":     len(req.Keywords),
				"status":            status,
			},
			CreatedAt: s.now().UTC(),
		})
	}

	return body, status, nil
}
