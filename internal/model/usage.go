package model

import (
	"math"
	"time"
)

// MonthStartLayout formats month keys as calendar dates.
const MonthStartLayout = "2006-01-02"

// Plans and usage event types.
const (
	PlanTrial = "trial"

	EventTrialGranted   = "trial_granted"
	EventAuditSubmitted = "audit_submitted"
)

// User is the account record keyed by the authenticated identity.
type User struct {
	ID    string
	Email string
	Plan  string
}

// UsageBucket is the lifetime allowance seeded at account creation.
type UsageBucket struct {
	UserID         string
	RemainingTerms int64
	Plan           string
}

// MonthlyUsage is a per-calendar-month counter row. Counters are nullable
// in storage.
type MonthlyUsage struct {
	UserID     string
	MonthStart time.Time
	TermsUsed  *int64
	TermsQuota *int64
	RunsUsed   *int64
}

// UsageEvent records a change or action against a user's allowance.
type UsageEvent struct {
	ID          string
	UserID      string
	EventType   string
	AmountTerms int64
	Metadata    map[string]any
	CreatedAt   time.Time
}

// UsageSummary is the read-only view of current-month consumption.
type UsageSummary struct {
	OK         bool   `json:"ok"`
	MonthStart string `json:"month_start"`
	Used       int64  `json:"used"`
	Quota      int64  `json:"quota"`
	Remaining  int64  `json:"remaining"`
}

// NewUsageSummary derives remaining as max(0, quota-used).
func NewUsageSummary(monthStart time.Time, used, quota int64) UsageSummary {
	remaining := quota - used
	if remaining < 0 {
		remaining = 0
	}
	return UsageSummary{
		OK:         true,
		MonthStart: monthStart.Format(MonthStartLayout),
		Used:       used,
		Quota:      quota,
		Remaining:  remaining,
	}
}

// Percent is min(100, round(used/quota*100)); 0 when there is no quota.
func (u UsageSummary) Percent() int {
	if u.Quota <= 0 || u.Used <= 0 {
		return 0
	}
	pct := math.Floor(float64(u.Used)/float64(u.Quota)*100 + 0.5)
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// MonthStart returns midnight UTC on the first day of t's UTC month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
