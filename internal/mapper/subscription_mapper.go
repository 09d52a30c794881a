package mapper

import (
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                       s.Id,
		UserId:                   s.UserId,
		PlanId:                   s.PlanId,
		Status:                   entity.SubscriptionStatus(s.Status),
		PeriodStart:              s.PeriodStart,
		PeriodEnd:                s.PeriodEnd,
		BillingInterval:          entity.BillingInterval(s.BillingInterval),
		AutoRenew:                s.AutoRenew,
		CanceledAt:               s.CanceledAt,
		IsInRetryPeriod:          s.IsInRetryPeriod,
		RetryAttemptCount:        s.RetryAttemptCount,
		LastPaymentFailureAt:     s.LastPaymentFailureAt,
		Provider:                 entity.PaymentProvider(s.Provider),
		StripeSubscriptionId:     s.StripeSubscriptionId,
		StripeCustomerId:         s.StripeCustomerId,
		PaystackSubscriptionCode: s.PaystackSubscriptionCode,
		PaystackCustomerCode:     s.PaystackCustomerCode,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                       s.Id,
		UserId:                   s.UserId,
		PlanId:                   s.PlanId,
		Status:                   string(s.Status),
		PeriodStart:              s.PeriodStart,
		PeriodEnd:                s.PeriodEnd,
		BillingInterval:          string(s.BillingInterval),
		AutoRenew:                s.AutoRenew,
		CanceledAt:               s.CanceledAt,
		IsInRetryPeriod:          s.IsInRetryPeriod,
		RetryAttemptCount:        s.RetryAttemptCount,
		LastPaymentFailureAt:     s.LastPaymentFailureAt,
		Provider:                 string(s.Provider),
		StripeSubscriptionId:     s.StripeSubscriptionId,
		StripeCustomerId:         s.StripeCustomerId,
		PaystackSubscriptionCode: s.PaystackSubscriptionCode,
		PaystackCustomerCode:     s.PaystackCustomerCode,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
}
