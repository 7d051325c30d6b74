package mockrepository

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"termtidy-web/internal/model"
	"termtidy-web/internal/repository"
)

// EventRepository mocks repository.EventRepository.
type EventRepository struct {
	mock.Mock
}

var _ repository.EventRepository = &EventRepository{}

func (m *EventRepository) CreateBatch(ctx context.Context, events []model.UsageEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// AccountRepository mocks repository.AccountRepository.
type AccountRepository struct {
	mock.Mock
}

var _ repository.AccountRepository = &AccountRepository{}

func (m *AccountRepository) UpsertUser(ctx context.Context, user model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *AccountRepository) CreateUsageBucketIfAbsent(ctx context.Context, bucket model.UsageBucket) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *AccountRepository) EnsureMonthlyUsage(ctx context.Context, userID string, monthStart time.Time, quota int64) (bool, error) {
	args := m.Called(ctx, userID, monthStart, quota)
	return args.Bool(0), args.Error(1)
}

func (m *AccountRepository) GetMonthlyUsage(ctx context.Context, userID string, monthStart time.Time) (*model.MonthlyUsage, error) {
	args := m.Called(ctx, userID, monthStart)
	// a nil row arrives untyped
	row, _ := args.Get(0).(*model.MonthlyUsage)
	return row, args.Error(1)
}
