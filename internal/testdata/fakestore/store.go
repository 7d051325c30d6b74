// Package fakestore is an in-memory account and event store for tests that
// need real insert-if-absent behaviour.
package fakestore

import (
	"context"
	"sync"
	"time"

	"termtidy-web/internal/model"
	"termtidy-web/internal/repository"
)

type monthKey struct {
	userID string
	month  string
}

// Store implements repository.AccountRepository and
// repository.EventRepository.
type Store struct {
	mu      sync.Mutex
	Users   map[string]model.User
	Buckets map[string]model.UsageBucket
	Monthly map[monthKey]model.MonthlyUsage
	Events  []model.UsageEvent
}

var (
	_ repository.AccountRepository = &Store{}
	_ repository.EventRepository   = &Store{}
)

func New() *Store {
	return &Store{
		Users:   map[string]model.User{},
		Buckets: map[string]model.UsageBucket{},
		Monthly: map[monthKey]model.MonthlyUsage{},
	}
}

func (s *Store) UpsertUser(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.Users[user.ID]; ok {
		existing.Email = user.Email
		s.Users[user.ID] = existing
		return nil
	}
	s.Users[user.ID] = user
	return nil
}

func (s *Store) CreateUsageBucketIfAbsent(_ context.Context, bucket model.UsageBucket) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Buckets[bucket.UserID]; ok {
		return false, nil
	}
	s.Buckets[bucket.UserID] = bucket
	return true, nil
}

func (s *Store) EnsureMonthlyUsage(_ context.Context, userID string, monthStart time.Time, quota int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := monthKey{userID: userID, month: monthStart.Format(model.MonthStartLayout)}
	if _, ok := s.Monthly[key]; ok {
		return false, nil
	}
	var used, runs int64
	s.Monthly[key] = model.MonthlyUsage{
		UserID:     userID,
		MonthStart: monthStart,
		TermsUsed:  &used,
		TermsQuota: &quota,
		RunsUsed:   &runs,
	}
	return true, nil
}

func (s *Store) GetMonthlyUsage(_ context.Context, userID string, monthStart time.Time) (*model.MonthlyUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.Monthly[monthKey{userID: userID, month: monthStart.Format(model.MonthStartLayout)}]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// MonthlyRows returns how many monthly rows exist for userID.
func (s *Store) MonthlyRows(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k := range s.Monthly {
		if k.userID == userID {
			n++
		}
	}
	return n
}

func (s *Store) CreateBatch(_ context.Context, events []model.UsageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Events = append(s.Events, events...)
	return nil
}

// EventsOfType returns the recorded events with the given type.
func (s *Store) EventsOfType(eventType string) []model.UsageEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.UsageEvent
	for _, e := range s.Events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Enqueue lets the store stand in for an event worker that writes
// synchronously.
func (s *Store) Enqueue(event model.UsageEvent) {
	_ = s.CreateBatch(context.Background(), []model.UsageEvent{event})
}

func (s *Store) Shutdown() {}
