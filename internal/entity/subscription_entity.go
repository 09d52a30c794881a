package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type PaymentProvider string

const (
	SubscriptionStatusActive         SubscriptionStatus = "active"
	SubscriptionStatusCancelled      SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired        SubscriptionStatus = "expired"
	SubscriptionStatusPendingPayment SubscriptionStatus = "pending_payment"

	ProviderStripe   PaymentProvider = "stripe"
	ProviderPaystack PaymentProvider = "paystack"
)

// Subscription is the stateful core of the billing engine. Period dates are
// provider-supplied; the Freemium tier is the only case computed locally.
type Subscription struct {
	Id                   uuid.UUID
	UserId               uuid.UUID
	PlanId               uuid.UUID
	Status               SubscriptionStatus
	PeriodStart          time.Time
	PeriodEnd            time.Time
	BillingInterval      BillingInterval
	AutoRenew            bool
	CanceledAt           *time.Time
	IsInRetryPeriod      bool
	RetryAttemptCount    int
	LastPaymentFailureAt *time.Time

	// Provider linkage. A subscription belongs to exactly one provider;
	// the Freemium tier has neither.
	Provider                 PaymentProvider
	StripeSubscriptionId     *string
	StripeCustomerId         *string
	PaystackSubscriptionCode *string
	PaystackCustomerCode     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionState is the disambiguated view of a subscription at a point in
// time. The persisted status alone overloads "cancelled" (scheduled to lapse
// vs already lapsed); callers should branch on StateAt instead of
// cross-referencing auto_renew/canceled_at/period_end themselves.
type SubscriptionState string

const (
	StateActive          SubscriptionState = "active"
	StateScheduledCancel SubscriptionState = "active_scheduled_cancel"
	StateRetrying        SubscriptionState = "active_retrying"
	StateCancelled       SubscriptionState = "cancelled"
	StateExpired         SubscriptionState = "expired"
	StatePendingPayment  SubscriptionState = "pending_payment"
)

func (s *Subscription) StateAt(now time.Time) SubscriptionState {
	switch s.Status {
	case SubscriptionStatusPendingPayment:
		return StatePendingPayment
	case SubscriptionStatusExpired:
		return StateExpired
	case SubscriptionStatusCancelled:
		if s.PeriodEnd.After(now) {
			return StateScheduledCancel
		}
		return StateCancelled
	case SubscriptionStatusActive:
		if !s.PeriodEnd.After(now) {
			return StateExpired
		}
		if s.IsInRetryPeriod {
			return StateRetrying
		}
		if !s.AutoRenew {
			return StateScheduledCancel
		}
		return StateActive
	}
	return StateExpired
}

// UsableAt reports whether the subscription still grants access at the given
// instant. Dunning keeps access; a scheduled cancel keeps access until
// period_end.
func (s *Subscription) UsableAt(now time.Time) bool {
	switch s.StateAt(now) {
	case StateActive, StateRetrying, StateScheduledCancel:
		return true
	}
	return false
}

func (s *Subscription) IsFreeTier() bool {
	return s.Provider == ""
}
