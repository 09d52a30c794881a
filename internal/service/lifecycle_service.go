// FILE: internal/service/lifecycle_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/pkg/events"
	pktNats "ai-studyassistant-be/pkg/nats"
	"ai-studyassistant-be/pkg/payments"

	"github.com/google/uuid"
)

// freemiumPeriodDays is the only billing window computed locally; every paid
// window comes from the provider.
const freemiumPeriodDays = 30

// ProviderLink carries the provider-side identity of a newly created
// subscription into an activation.
type ProviderLink struct {
	Provider       entity.PaymentProvider
	SubscriptionId string // Stripe subscription id or Paystack subscription code
	CustomerId     string // Stripe customer id or Paystack customer code
	Period         payments.Period
}

// PaymentFailure describes a failed renewal charge for the ledger.
type PaymentFailure struct {
	Reference   string
	AmountMinor int64
	Currency    string
	Message     string
}

// ISubscriptionLifecycleService owns every subscription state transition.
// Webhook handlers and the checkout verifier resolve WHICH subscription an
// event refers to, then delegate the transition here; each method is
// idempotent so duplicate deliveries converge on the same state.
type ISubscriptionLifecycleService interface {
	Activate(ctx context.Context, reference string, link ProviderLink) (*entity.Subscription, error)
	Extend(ctx context.Context, subId uuid.UUID, period payments.Period, renewal *PaymentRenewal) error
	EnterRetry(ctx context.Context, subId uuid.UUID, failure *PaymentFailure) error
	MirrorCancelFlag(ctx context.Context, subId uuid.UUID, cancelAtPeriodEnd bool) error
	SetAutoRenew(ctx context.Context, subId uuid.UUID, autoRenew bool) error
	HandleTerminated(ctx context.Context, subId uuid.UUID) error
	CancelImmediate(ctx context.Context, subId uuid.UUID) error
	DowngradeToFreemium(ctx context.Context, userId uuid.UUID) error
	GrantFreemium(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Subscription, error)
}

// PaymentRenewal describes a successful renewal charge for the ledger.
type PaymentRenewal struct {
	Reference   string
	AmountMinor int64
	Currency    string
}

type subscriptionLifecycleService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewSubscriptionLifecycleService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISubscriptionLifecycleService {
	return &subscriptionLifecycleService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Activate settles the checkout transaction, replaces any previous active
// subscription, creates the new one from the provider-supplied period and
// repoints the user's entitlement. Safe to call from both the webhook and the
// redirect verifier: the second caller finds the work already done.
func (s *subscriptionLifecycleService) Activate(ctx context.Context, reference string, link ProviderLink) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	txn, err := uow.TransactionRepository().FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}

	// Duplicate delivery: the transaction already settled and got linked.
	if txn.Status == entity.TransactionStatusSuccess && txn.SubscriptionId != nil {
		existing, err := uow.SubscriptionRepository().FindById(ctx, *txn.SubscriptionId)
		if err != nil {
			return nil, err
		}
		return existing, nil
	}

	// A row the TTL expirer or a checkout-closed event already ended stays
	// ended; a late completion cannot resurrect it.
	if txn.IsTerminal() && txn.Status != entity.TransactionStatusSuccess {
		return nil, ErrCheckoutLapsed
	}

	if txn.PlanId == nil {
		return nil, fmt.Errorf("transaction %s has no plan attached", reference)
	}

	now := time.Now().UTC()

	// Upgrades replace: the previous paid subscription is closed out so at
	// most one active row exists per user.
	if prev, err := uow.SubscriptionRepository().FindCurrentActive(ctx, txn.UserId, now); err != nil {
		return nil, err
	} else if prev != nil {
		prev.Status = entity.SubscriptionStatusCancelled
		prev.AutoRenew = false
		prev.CanceledAt = &now
		prev.UpdatedAt = now
		if err := uow.SubscriptionRepository().Update(ctx, prev); err != nil {
			return nil, err
		}
	}

	sub := &entity.Subscription{
		Id:          uuid.New(),
		UserId:      txn.UserId,
		PlanId:      *txn.PlanId,
		Status:      entity.SubscriptionStatusActive,
		PeriodStart: link.Period.Start,
		PeriodEnd:   link.Period.End,
		AutoRenew:   true,
		Provider:    link.Provider,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if interval, ok := txn.Metadata["billing_interval"].(string); ok {
		sub.BillingInterval = entity.BillingInterval(interval)
	}
	switch link.Provider {
	case entity.ProviderStripe:
		sub.StripeSubscriptionId = &link.SubscriptionId
		if link.CustomerId != "" {
			sub.StripeCustomerId = &link.CustomerId
		}
	case entity.ProviderPaystack:
		sub.PaystackSubscriptionCode = &link.SubscriptionId
		if link.CustomerId != "" {
			sub.PaystackCustomerCode = &link.CustomerId
		}
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}

	if txn.Status == entity.TransactionStatusSuccess {
		// Paystack path: charge.success already settled the row, only the
		// linkage is missing.
		if err := uow.TransactionRepository().LinkSubscription(ctx, txn.Id, sub.Id); err != nil {
			return nil, err
		}
	} else {
		txn.Status = entity.TransactionStatusSuccess
		txn.StatusReason = ""
		txn.SubscriptionId = &sub.Id
		txn.PaidAt = &now
		if err := uow.TransactionRepository().Update(ctx, txn); err != nil {
			return nil, err
		}
	}

	if err := uow.UserRepository().UpdatePlan(ctx, txn.UserId, *txn.PlanId); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeSubscriptionActivated, map[string]interface{}{
		"user_id":         txn.UserId.String(),
		"subscription_id": sub.Id.String(),
		"plan_id":         txn.PlanId.String(),
		"provider":        string(link.Provider),
		"amount_minor":    txn.AmountMinor,
		"currency":        txn.Currency,
	})
	s.logger.Info("Lifecycle", "Subscription activated", map[string]interface{}{
		"user_id":   txn.UserId.String(),
		"provider":  string(link.Provider),
		"reference": reference,
	})
	return sub, nil
}

// Extend advances the billing window after a successful renewal charge and
// clears any dunning state. A renewal ledger row is written when the charge
// details are known.
func (s *subscriptionLifecycleService) Extend(ctx context.Context, subId uuid.UUID, period payments.Period, renewal *PaymentRenewal) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindById(ctx, subId)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNoActiveSub
	}

	// Duplicate delivery: the window already advanced to this period.
	if !sub.PeriodEnd.Before(period.End) && !sub.IsInRetryPeriod {
		return uow.Commit()
	}

	now := time.Now().UTC()
	sub.Status = entity.SubscriptionStatusActive
	sub.PeriodStart = period.Start
	sub.PeriodEnd = period.End
	sub.IsInRetryPeriod = false
	sub.RetryAttemptCount = 0
	sub.LastPaymentFailureAt = nil
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	if renewal != nil && renewal.Reference != "" {
		if existing, err := uow.TransactionRepository().FindByReference(ctx, renewal.Reference); err != nil {
			return err
		} else if existing == nil {
			txn := &entity.Transaction{
				Id:              uuid.New(),
				Reference:       renewal.Reference,
				UserId:          sub.UserId,
				PlanId:          &sub.PlanId,
				SubscriptionId:  &sub.Id,
				Provider:        sub.Provider,
				AmountMinor:     renewal.AmountMinor,
				Currency:        renewal.Currency,
				Status:          entity.TransactionStatusSuccess,
				TransactionType: entity.TransactionTypeRecurring,
				PaidAt:          &now,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
				return err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.TypeSubscriptionExtended, map[string]interface{}{
		"user_id":         sub.UserId.String(),
		"subscription_id": sub.Id.String(),
		"period_end":      period.End.Format(time.RFC3339),
	})
	return nil
}

// EnterRetry flags the subscription as dunning. Access is kept; the provider
// keeps retrying the charge and either Extend or HandleTerminated ends the
// episode.
func (s *subscriptionLifecycleService) EnterRetry(ctx context.Context, subId uuid.UUID, failure *PaymentFailure) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindById(ctx, subId)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNoActiveSub
	}

	now := time.Now().UTC()

	if failure != nil && failure.Reference != "" {
		existing, err := uow.TransactionRepository().FindByReference(ctx, failure.Reference)
		if err != nil {
			return err
		}
		if existing != nil {
			// Replayed failure event: this episode is already recorded, and
			// counting it again would inflate the dunning attempt number.
			return uow.Commit()
		}
		msg := failure.Message
		txn := &entity.Transaction{
			Id:              uuid.New(),
			Reference:       failure.Reference,
			UserId:          sub.UserId,
			PlanId:          &sub.PlanId,
			SubscriptionId:  &sub.Id,
			Provider:        sub.Provider,
			AmountMinor:     failure.AmountMinor,
			Currency:        failure.Currency,
			Status:          entity.TransactionStatusFailed,
			StatusReason:    entity.ReasonProviderFailed,
			StatusMessage:   &msg,
			TransactionType: entity.TransactionTypeRecurring,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
			return err
		}
	}

	sub.IsInRetryPeriod = true
	sub.RetryAttemptCount++
	sub.LastPaymentFailureAt = &now
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.TypePaymentFailed, map[string]interface{}{
		"user_id":         sub.UserId.String(),
		"subscription_id": sub.Id.String(),
		"attempt":         sub.RetryAttemptCount,
	})
	s.logger.Warn("Lifecycle", "Subscription entered payment retry", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"attempt":         sub.RetryAttemptCount,
	})
	return nil
}

// MirrorCancelFlag copies the provider's cancel-at-period-end flag onto the
// local row. The subscription stays usable until the window lapses.
func (s *subscriptionLifecycleService) MirrorCancelFlag(ctx context.Context, subId uuid.UUID, cancelAtPeriodEnd bool) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindById(ctx, subId)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNoActiveSub
	}

	now := time.Now().UTC()
	sub.AutoRenew = !cancelAtPeriodEnd
	if cancelAtPeriodEnd {
		if sub.CanceledAt == nil {
			sub.CanceledAt = &now
		}
	} else {
		// Cancellation reverted from the provider side.
		sub.CanceledAt = nil
	}
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *subscriptionLifecycleService) SetAutoRenew(ctx context.Context, subId uuid.UUID, autoRenew bool) error {
	return s.MirrorCancelFlag(ctx, subId, !autoRenew)
}

// HandleTerminated processes a provider-side termination. A termination that
// lands during dunning means the charge could not be recovered, so the user
// drops to the free tier immediately; otherwise it is the natural end of an
// already cancelled subscription.
func (s *subscriptionLifecycleService) HandleTerminated(ctx context.Context, subId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindById(ctx, subId)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNoActiveSub
	}
	if sub.Status == entity.SubscriptionStatusCancelled || sub.Status == entity.SubscriptionStatusExpired {
		return uow.Commit()
	}

	wasRetrying := sub.IsInRetryPeriod
	now := time.Now().UTC()
	sub.Status = entity.SubscriptionStatusCancelled
	sub.AutoRenew = false
	sub.IsInRetryPeriod = false
	if sub.CanceledAt == nil {
		sub.CanceledAt = &now
	}
	if wasRetrying {
		// Dunning exhausted: access ends now, not at the period boundary.
		sub.PeriodEnd = now
	}
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	if wasRetrying {
		if _, err := s.grantFreemiumTx(ctx, uow, sub.UserId, now); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if wasRetrying {
		s.publish(ctx, events.TypeSubscriptionDowngrade, map[string]interface{}{
			"user_id":         sub.UserId.String(),
			"subscription_id": sub.Id.String(),
		})
	} else {
		s.publish(ctx, events.TypeSubscriptionCancelled, map[string]interface{}{
			"user_id":         sub.UserId.String(),
			"subscription_id": sub.Id.String(),
			"access_until":    sub.PeriodEnd.Format(time.RFC3339),
		})
	}
	return nil
}

// CancelImmediate ends a user-initiated cancellation on the spot: the paid
// window is cut to now and the free tier granted in the same unit of work,
// so exactly one subscription row covers any instant.
func (s *subscriptionLifecycleService) CancelImmediate(ctx context.Context, subId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindById(ctx, subId)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNoActiveSub
	}

	now := time.Now().UTC()
	sub.Status = entity.SubscriptionStatusCancelled
	sub.AutoRenew = false
	sub.IsInRetryPeriod = false
	if sub.CanceledAt == nil {
		sub.CanceledAt = &now
	}
	if sub.PeriodEnd.After(now) {
		sub.PeriodEnd = now
	}
	sub.UpdatedAt = now
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	if _, err := s.grantFreemiumTx(ctx, uow, sub.UserId, now); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.TypeSubscriptionCancelled, map[string]interface{}{
		"user_id":         sub.UserId.String(),
		"subscription_id": sub.Id.String(),
		"access_until":    sub.PeriodEnd.Format(time.RFC3339),
	})
	return nil
}

// DowngradeToFreemium puts the user back on the free tier outside of a
// termination flow (lapsed subscriptions discovered on read).
func (s *subscriptionLifecycleService) DowngradeToFreemium(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if _, err := s.grantFreemiumTx(ctx, uow, userId, time.Now().UTC()); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.TypeSubscriptionDowngrade, map[string]interface{}{
		"user_id": userId.String(),
	})
	return nil
}

// GrantFreemium creates the free-tier subscription inside the caller's unit
// of work. Used at signup and after downgrades.
func (s *subscriptionLifecycleService) GrantFreemium(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Subscription, error) {
	return s.grantFreemiumTx(ctx, uow, userId, time.Now().UTC())
}

func (s *subscriptionLifecycleService) grantFreemiumTx(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, now time.Time) (*entity.Subscription, error) {
	// Idempotent: a live free-tier row is reused, not duplicated.
	if current, err := uow.SubscriptionRepository().FindCurrentActive(ctx, userId, now); err != nil {
		return nil, err
	} else if current != nil && current.IsFreeTier() {
		return current, nil
	}

	plan, err := uow.PlanRepository().FindPlanBySku(ctx, entity.PlanSkuFreemium)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.New("freemium plan is not seeded")
	}

	sub := &entity.Subscription{
		Id:          uuid.New(),
		UserId:      userId,
		PlanId:      plan.Id,
		Status:      entity.SubscriptionStatusActive,
		PeriodStart: now,
		PeriodEnd:   now.AddDate(0, 0, freemiumPeriodDays),
		AutoRenew:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := uow.UserRepository().UpdatePlan(ctx, userId, plan.Id); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionLifecycleService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewBillingEvent(eventType, data)); err != nil {
		s.logger.Warn("Lifecycle", "Failed to publish billing event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
