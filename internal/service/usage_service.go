package service

import (
	"context"
	"time"

	"termtidy-web/internal/model"
	"termtidy-web/internal/repository"
)

// UsageService reports current-month term consumption.
type UsageService interface {
	Summary(ctx context.Context, userID string) (model.UsageSummary, error)
}

type usageService struct {
	repo repository.AccountRepository
	now  func() time.Time
}

// NewUsageService constructs a UsageService.
func NewUsageService(repo repository.AccountRepository) UsageService {
	return &usageService{
		repo: repo,
		now:  time.Now,
	}
}

// Summary reads the counter row for the current UTC month. A missing row
// or NULL counters read as zero.
func (s *usageService) Summary(ctx context.Context, userID string) (model.UsageSummary, error) {
	if userID == "" {
		return model.UsageSummary{}, ErrUnauthenticated
	}

	monthStart := model.MonthStart(s.now())

	row, err := s.repo.GetMonthlyUsage(ctx, userID, monthStart)
	if err != nil {
		return model.UsageSummary{}, err
	}

	var used, quota int64
	if row != nil {
		used = valueOrZero(row.TermsUsed)
		quota = valueOrZero(row.TermsQuota)
	}

	return model.NewUsageSummary(monthStart, used, quota), nil
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
