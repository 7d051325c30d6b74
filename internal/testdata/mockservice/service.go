package mockservice

import (
	"context"

	"github.com/stretchr/testify/mock"

	"termtidy-web/internal/auth"
	"termtidy-web/internal/model"
	"termtidy-web/internal/service"
)

// AuditService mocks service.AuditService.
type AuditService struct {
	mock.Mock
}

var _ service.AuditService = &AuditService{}

func (m *AuditService) Relay(ctx context.Context, body []byte) ([]byte, int) {
	args := m.Called(ctx, body)
	return args.Get(0).([]byte), args.Int(1)
}

func (m *AuditService) Submit(ctx context.Context, form service.AuditForm, userID string) ([]byte, int, error) {
	args := m.Called(ctx, form, userID)
	body, _ := args.Get(0).([]byte)
	return body, args.Int(1), args.Error(2)
}

// UsageService mocks service.UsageService.
type UsageService struct {
	mock.Mock
}

var _ service.UsageService = &UsageService{}

func (m *UsageService) Summary(ctx context.Context, userID string) (model.UsageSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UsageSummary), args.Error(1)
}

// AccountService mocks service.AccountService.
type AccountService struct {
	mock.Mock
}

var _ service.AccountService = &AccountService{}

func (m *AccountService) Bootstrap(ctx context.Context, id *auth.Identity) error {
	return m.Called(ctx, id).Error(0)
}
