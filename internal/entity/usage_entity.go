package entity

import (
	"time"

	"github.com/google/uuid"
)

// UsageTracking holds per-user counters for one calendar month. Rows are
// created lazily on first quota-consuming action in a period and are never
// reset; the entitlement check reads the row for the current month.
type UsageTracking struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	PeriodStart    time.Time // first day of the calendar month, UTC
	Uploads        int
	Assessments    int
	QuestionsAsked int
	FlashCardSets  int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UsagePeriodStart normalizes an instant to its calendar-month anchor.
func UsagePeriodStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
