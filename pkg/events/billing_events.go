package events

import "time"

// Billing event codes published on the EVENTS stream for downstream
// consumers (notifications, admin feeds).
const (
	TypeSubscriptionActivated = "SUBSCRIPTION_ACTIVATED"
	TypeSubscriptionExtended  = "SUBSCRIPTION_EXTENDED"
	TypePaymentFailed         = "PAYMENT_FAILED"
	TypeSubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	TypeSubscriptionDowngrade = "SUBSCRIPTION_DOWNGRADED"
)

func NewBillingEvent(eventType string, data map[string]interface{}) Event {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}
