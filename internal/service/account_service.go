package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"termtidy-web/internal/auth"
	"termtidy-web/internal/model"
	"termtidy-web/internal/repository"
)

// AccountService prepares account state for a freshly signed-in user.
type AccountService interface {
	Bootstrap(ctx context.Context, id *auth.Identity) error
}

type accountService struct {
	repo         repository.AccountRepository
	events       EventWorker
	logger       *slog.Logger
	trialTerms   int64
	monthlyQuota int64
	now          func() time.Time
	newID        func() string
}

// NewAccountService constructs an AccountService.
func NewAccountService(repo repository.AccountRepository, events EventWorker, logger *slog.Logger, trialTerms, monthlyQuota int64) AccountService {
	return &accountService{
		repo:         repo,
		events:       events,
		logger:       logger,
		trialTerms:   trialTerms,
		monthlyQuota: monthlyQuota,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Bootstrap is idempotent. The trial allowance and its trial_granted event
// are written only by the call that creates the usage bucket.
func (s *accountService) Bootstrap(ctx context.Context, id *auth.Identity) error {
	if id == nil || id.UserID == "" {
		return ErrUnauthenticated
	}

	if err := s.repo.UpsertUser(ctx, model.User{ID: id.UserID, Email: id.Email, Plan: model.PlanTrial}); err != nil {
		return err
	}

	created, err := s.repo.CreateUsageBucketIfAbsent(ctx, model.UsageBucket{
		UserID:         id.UserID,
		RemainingTerms: s.trialTerms,
		Plan:           model.PlanTrial,
	})
	if err != nil {
		return err
	}

	now := s.now().UTC()

	if created {
		s.logger.Info("trial granted", "user_id", id.UserID, "terms", s.trialTerms)
		s.events.Enqueue(model.UsageEvent{
			ID:          s.newID(),
			UserID:      id.UserID,
			EventType:   model.EventTrialGranted,
			AmountTerms: s.trialTerms,
			Metadata:    map[string]any{"source": "signup"},
			CreatedAt:   now,
		})
	}

	if _, err := s.repo.EnsureMonthlyUsage(ctx, id.UserID, model.MonthStart(now), s.monthlyQuota); err != nil {
		return err
	}
	return nil
}
