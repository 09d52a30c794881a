// FILE: internal/service/checkout_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-studyassistant-be/internal/dto"
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/pkg/payments"

	"github.com/google/uuid"
)

// paystackCheckoutTTL bounds Paystack checkouts locally; Stripe sessions
// carry their own expiry.
const paystackCheckoutTTL = 24 * time.Hour

type ICheckoutService interface {
	CreateCheckout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	// VerifyRedirect reconciles the post-payment redirect with the ledger.
	// It converges with the webhook path: whichever lands first settles the
	// transaction, the other becomes a no-op.
	VerifyRedirect(ctx context.Context, userId uuid.UUID, reference string) (*dto.VerifyRedirectResponse, error)
}

type checkoutService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *payments.Registry
	lifecycle  ISubscriptionLifecycleService
	clientURL  string
	logger     logger.ILogger
}

func NewCheckoutService(
	uowFactory unitofwork.RepositoryFactory,
	registry *payments.Registry,
	lifecycle ISubscriptionLifecycleService,
	clientURL string,
	log logger.ILogger,
) ICheckoutService {
	return &checkoutService{
		uowFactory: uowFactory,
		registry:   registry,
		lifecycle:  lifecycle,
		clientURL:  clientURL,
		logger:     log,
	}
}

func (s *checkoutService) CreateCheckout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	plan, err := uow.PlanRepository().FindPlanById(ctx, req.PlanId)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, ErrPlanNotFound
	}
	if plan.IsFreemium() {
		return nil, ErrFreePlanCheckout
	}

	country := req.CountryCode
	if country == "" && user.CountryCode != nil {
		country = *user.CountryCode
	}
	region := ResolveBillingRegion(country)

	prices, err := uow.PlanRepository().FindActivePrices(ctx, plan.Id, region.Provider, region.Currency, req.BillingInterval)
	if err != nil {
		return nil, err
	}
	price := PickPrice(prices, country, region.Continent)
	if price == nil {
		// A missing price row is a configuration gap, not a user error.
		s.logger.Error("Checkout", "No active price configured", map[string]interface{}{
			"plan_sku": plan.Sku,
			"provider": string(region.Provider),
			"currency": region.Currency,
			"interval": req.BillingInterval,
		})
		return nil, ErrPriceNotConfigured
	}

	provider, err := s.registry.Get(region.Provider)
	if err != nil {
		return nil, err
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.clientURL + "/billing/success"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.clientURL + "/billing/cancelled"
	}

	session, err := provider.CreateCheckout(ctx, payments.CheckoutParams{
		UserId:          userId,
		UserEmail:       user.Email,
		PlanId:          plan.Id,
		PlanSku:         plan.Sku,
		BillingInterval: entity.BillingInterval(req.BillingInterval),
		Currency:        price.Currency,
		AmountMinor:     price.PriceMinor,
		ProviderPriceId: price.ProviderPriceId,
		SuccessURL:      successURL,
		CancelURL:       cancelURL,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(paystackCheckoutTTL)
	if session.ExpiresAt != nil {
		expiresAt = *session.ExpiresAt
	}

	txn := &entity.Transaction{
		Id:              uuid.New(),
		Reference:       session.Reference,
		UserId:          userId,
		PlanId:          &plan.Id,
		Provider:        region.Provider,
		AmountMinor:     session.AmountMinor,
		Currency:        session.Currency,
		Status:          entity.TransactionStatusPending,
		StatusReason:    entity.ReasonAwaitingPayment,
		TransactionType: entity.TransactionTypeInitial,
		ExpiresAt:       &expiresAt,
		Metadata: map[string]interface{}{
			"plan_sku":         plan.Sku,
			"billing_interval": req.BillingInterval,
			"country_code":     country,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// A new checkout replaces any still-open one for the same provider.
	if err := uow.TransactionRepository().SupersedePending(ctx, userId, region.Provider); err != nil {
		return nil, err
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout", "Checkout session created", map[string]interface{}{
		"user_id":   userId.String(),
		"provider":  string(region.Provider),
		"reference": session.Reference,
	})

	return &dto.CheckoutResponse{
		Provider:    string(region.Provider),
		CheckoutURL: session.CheckoutURL,
		Reference:   session.Reference,
	}, nil
}

func (s *checkoutService) VerifyRedirect(ctx context.Context, userId uuid.UUID, reference string) (*dto.VerifyRedirectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	txn, err := uow.TransactionRepository().FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if txn == nil || txn.UserId != userId {
		return nil, ErrTransactionNotFound
	}

	// Webhook already finished the job.
	if txn.Status == entity.TransactionStatusSuccess && txn.SubscriptionId != nil {
		return &dto.VerifyRedirectResponse{
			Reference: reference,
			Status:    string(txn.Status),
			Activated: true,
		}, nil
	}

	provider, err := s.registry.Get(txn.Provider)
	if err != nil {
		return nil, err
	}
	result, err := provider.VerifyCheckout(ctx, reference)
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case payments.CheckoutPaid:
		if result.SubscriptionId != "" {
			period, err := provider.SubscriptionPeriod(ctx, result.SubscriptionId)
			if err != nil {
				return nil, err
			}
			if _, err := s.lifecycle.Activate(ctx, reference, ProviderLink{
				Provider:       txn.Provider,
				SubscriptionId: result.SubscriptionId,
				CustomerId:     result.CustomerId,
				Period:         *period,
			}); err != nil {
				return nil, err
			}
			return &dto.VerifyRedirectResponse{
				Reference: reference,
				Status:    string(entity.TransactionStatusSuccess),
				Activated: true,
			}, nil
		}
		// Paid, but the provider has not created the subscription object
		// yet (Paystack). Settle the charge and let the webhook finish.
		if txn.Status == entity.TransactionStatusPending {
			if err := s.settle(ctx, txn, entity.TransactionStatusSuccess, entity.ReasonAwaitingWebhook, nil); err != nil {
				return nil, err
			}
		}
		return &dto.VerifyRedirectResponse{
			Reference: reference,
			Status:    string(entity.TransactionStatusSuccess),
			Activated: false,
		}, nil

	case payments.CheckoutFailed:
		if txn.Status == entity.TransactionStatusPending {
			msg := "payment failed at provider"
			if err := s.settle(ctx, txn, entity.TransactionStatusFailed, entity.ReasonProviderFailed, &msg); err != nil {
				return nil, err
			}
		}
		return &dto.VerifyRedirectResponse{Reference: reference, Status: string(entity.TransactionStatusFailed)}, nil

	case payments.CheckoutExpired:
		if txn.Status == entity.TransactionStatusPending {
			if err := s.settle(ctx, txn, entity.TransactionStatusExpired, entity.ReasonTTLElapsed, nil); err != nil {
				return nil, err
			}
		}
		return &dto.VerifyRedirectResponse{Reference: reference, Status: string(entity.TransactionStatusExpired)}, nil

	default:
		return &dto.VerifyRedirectResponse{Reference: reference, Status: string(txn.Status)}, nil
	}
}

func (s *checkoutService) settle(ctx context.Context, txn *entity.Transaction, status entity.TransactionStatus, reason entity.TransactionStatusReason, message *string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now().UTC()
	txn.Status = status
	txn.StatusReason = reason
	txn.StatusMessage = message
	if status == entity.TransactionStatusSuccess {
		txn.PaidAt = &now
	}
	if err := uow.TransactionRepository().Update(ctx, txn); err != nil {
		// Terminal guard tripping here means the webhook won the race.
		return fmt.Errorf("settle %s: %w", txn.Reference, err)
	}
	return uow.Commit()
}
