package specification

import (
	"time"

	"gorm.io/gorm"
)

// ActiveOnly keeps rows with is_active=true (plans, prices).
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// StatusIn filters by a set of status values.
type StatusIn struct {
	Statuses []string
}

func (s StatusIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// PeriodCovering keeps subscriptions whose [period_start, period_end) window
// contains the given instant.
type PeriodCovering struct {
	At time.Time
}

func (s PeriodCovering) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("period_start <= ? AND period_end > ?", s.At, s.At)
}

// PriceScope filters plan prices by provider/currency/interval. Scope
// preference (country over continent over global) is resolved by the caller
// on the returned set.
type PriceScope struct {
	Provider string
	Currency string
	Interval string
}

func (s PriceScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider = ? AND currency = ? AND billing_interval = ?",
		s.Provider, s.Currency, s.Interval)
}
