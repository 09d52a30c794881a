// FILE: internal/service/subscription_service.go
package service

import (
	"context"
	"time"

	"ai-studyassistant-be/internal/dto"
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/pkg/payments"

	"github.com/google/uuid"
)

// refundWindow is how long after the first charge a cancellation still
// qualifies for a refund request.
const refundWindow = 14 * 24 * time.Hour

type ISubscriptionService interface {
	Status(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
	Cancel(ctx context.Context, userId uuid.UUID, req *dto.CancelRequest) (*dto.CancelResponse, error)
	PortalURL(ctx context.Context, userId uuid.UUID) (*dto.PortalResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *payments.Registry
	lifecycle  ISubscriptionLifecycleService
	clientURL  string
	logger     logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	registry *payments.Registry,
	lifecycle ISubscriptionLifecycleService,
	clientURL string,
	log logger.ILogger,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		registry:   registry,
		lifecycle:  lifecycle,
		clientURL:  clientURL,
		logger:     log,
	}
}

func (s *subscriptionService) Status(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now().UTC()

	sub, err := uow.SubscriptionRepository().FindEffective(ctx, userId, now)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		// A lapsed free-tier window is invisible to the covering lookup;
		// it rolls forward on read rather than through billing.
		latest, err := uow.SubscriptionRepository().FindLatestByUser(ctx, userId)
		if err != nil {
			return nil, err
		}
		if latest == nil || !latest.IsFreeTier() || latest.Status != entity.SubscriptionStatusActive {
			return &dto.SubscriptionStatusResponse{HasSubscription: false}, nil
		}
		latest.PeriodStart = now
		latest.PeriodEnd = now.AddDate(0, 0, freemiumPeriodDays)
		latest.UpdatedAt = now
		if err := uow.SubscriptionRepository().Update(ctx, latest); err != nil {
			return nil, err
		}
		sub = latest
	}

	plan, err := uow.PlanRepository().FindPlanById(ctx, sub.PlanId)
	if err != nil {
		return nil, err
	}

	res := &dto.SubscriptionStatusResponse{
		HasSubscription: true,
		Status:          string(sub.Status),
		State:           string(sub.StateAt(now)),
		PlanId:          &sub.PlanId,
		BillingInterval: string(sub.BillingInterval),
		PeriodStart:     &sub.PeriodStart,
		PeriodEnd:       &sub.PeriodEnd,
		AutoRenew:       sub.AutoRenew,
		IsInRetryPeriod: sub.IsInRetryPeriod,
		Provider:        string(sub.Provider),
	}
	if plan != nil {
		res.PlanName = plan.Name
		res.PlanSku = plan.Sku
	}
	return res, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userId uuid.UUID, req *dto.CancelRequest) (*dto.CancelResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now().UTC()

	sub, err := uow.SubscriptionRepository().FindEffective(ctx, userId, now)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNoActiveSub
	}
	if sub.IsFreeTier() {
		return nil, ErrFreeTierCancel
	}

	// The provider call is best-effort: local entitlement is authoritative,
	// and a provider outage must not keep the user subscribed. Webhooks
	// reconcile the remote side once it recovers.
	if providerSubId := providerSubscriptionId(sub); providerSubId != "" {
		if provider, err := s.registry.ForSubscription(sub); err != nil {
			s.logger.Warn("Subscription", "No provider adapter for cancellation", map[string]interface{}{
				"user_id":  userId.String(),
				"provider": string(sub.Provider),
				"error":    err.Error(),
			})
		} else if err := provider.CancelSubscription(ctx, providerSubId, !req.Immediate); err != nil {
			s.logger.Warn("Subscription", "Provider cancellation failed, proceeding locally", map[string]interface{}{
				"user_id":  userId.String(),
				"provider": string(sub.Provider),
				"error":    err.Error(),
			})
		}
	}

	accessUntil := sub.PeriodEnd
	if req.Immediate {
		if err := s.lifecycle.CancelImmediate(ctx, sub.Id); err != nil {
			return nil, err
		}
		accessUntil = now
	} else {
		if err := s.lifecycle.MirrorCancelFlag(ctx, sub.Id, true); err != nil {
			return nil, err
		}
	}

	res := &dto.CancelResponse{
		Status:      string(entity.SubscriptionStatusCancelled),
		AccessUntil: accessUntil,
	}
	if !req.Immediate {
		res.Status = string(entity.StateScheduledCancel)
	}
	if deadline := sub.CreatedAt.Add(refundWindow); now.Before(deadline) {
		res.RefundEligible = true
		res.RefundEligibleTil = &deadline
	}

	s.logger.Info("Subscription", "Cancellation processed", map[string]interface{}{
		"user_id":   userId.String(),
		"immediate": req.Immediate,
		"provider":  string(sub.Provider),
	})
	return res, nil
}

// PortalURL returns the provider-hosted billing management surface.
func (s *subscriptionService) PortalURL(ctx context.Context, userId uuid.UUID) (*dto.PortalResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindEffective(ctx, userId, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.IsFreeTier() {
		return nil, ErrNoActiveSub
	}

	provider, err := s.registry.ForSubscription(sub)
	if err != nil {
		return nil, err
	}
	url, err := provider.ManageURL(ctx, sub, s.clientURL+"/billing")
	if err != nil {
		return nil, err
	}
	return &dto.PortalResponse{URL: url}, nil
}

func providerSubscriptionId(sub *entity.Subscription) string {
	switch sub.Provider {
	case entity.ProviderStripe:
		if sub.StripeSubscriptionId != nil {
			return *sub.StripeSubscriptionId
		}
	case entity.ProviderPaystack:
		if sub.PaystackSubscriptionCode != nil {
			return *sub.PaystackSubscriptionCode
		}
	}
	return ""
}
