// FILE: internal/service/stripe_webhook_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/pkg/payments"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

type IStripeWebhookService interface {
	// HandleWebhook verifies the Stripe-Signature header and dispatches the
	// event. A nil return acknowledges the delivery; an error asks Stripe to
	// redeliver.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type stripeWebhookService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   *payments.StripeProvider
	lifecycle  ISubscriptionLifecycleService
	deduper    *payments.EventDeduper
	logger     logger.ILogger
}

func NewStripeWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	provider *payments.StripeProvider,
	lifecycle ISubscriptionLifecycleService,
	deduper *payments.EventDeduper,
	log logger.ILogger,
) IStripeWebhookService {
	return &stripeWebhookService{
		uowFactory: uowFactory,
		provider:   provider,
		lifecycle:  lifecycle,
		deduper:    deduper,
		logger:     log,
	}
}

func (s *stripeWebhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.provider.WebhookSecret())
	if err != nil {
		return ErrInvalidSignature
	}

	if !s.deduper.FirstDelivery(ctx, entity.ProviderStripe, event.ID) {
		s.logger.Info("StripeWebhook", "Duplicate event suppressed", map[string]interface{}{"event_id": event.ID})
		return nil
	}

	s.logger.Info("StripeWebhook", "Event received", map[string]interface{}{
		"event_id": event.ID,
		"type":     string(event.Type),
	})

	switch event.Type {
	case "checkout.session.completed":
		return s.onCheckoutCompleted(ctx, event)
	case "checkout.session.expired":
		return s.onCheckoutClosed(ctx, event, entity.TransactionStatusExpired, entity.ReasonTTLElapsed)
	case "checkout.session.async_payment_failed":
		return s.onCheckoutClosed(ctx, event, entity.TransactionStatusFailed, entity.ReasonProviderFailed)
	case "invoice.payment_succeeded":
		return s.onInvoicePaid(ctx, event)
	case "invoice.payment_failed":
		return s.onInvoiceFailed(ctx, event)
	case "customer.subscription.updated":
		return s.onSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return s.onSubscriptionDeleted(ctx, event)
	default:
		// Unknown types are acknowledged so Stripe stops redelivering them.
		s.logger.Debug("StripeWebhook", "Ignoring event type", map[string]interface{}{"type": string(event.Type)})
		return nil
	}
}

func (s *stripeWebhookService) onCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.logger.Warn("StripeWebhook", "Malformed checkout.session.completed payload", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		// Async payment methods complete the session before the charge
		// settles; the paid invoice event follows later.
		return nil
	}
	if session.Subscription == nil {
		s.logger.Warn("StripeWebhook", "Completed session without subscription", map[string]interface{}{"reference": session.ID})
		return nil
	}

	// Check the ledger before calling out to Stripe: a session we never
	// issued or one the TTL expirer already closed is a deterministic gap,
	// acknowledged so Stripe stops redelivering.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	txn, err := uow.TransactionRepository().FindByReference(ctx, session.ID)
	if err != nil {
		return err
	}
	if txn == nil {
		s.logger.Warn("StripeWebhook", "No transaction for session", map[string]interface{}{"reference": session.ID})
		return nil
	}
	if txn.IsTerminal() && txn.Status != entity.TransactionStatusSuccess {
		s.logger.Warn("StripeWebhook", "Late completion for a closed checkout", map[string]interface{}{
			"reference": session.ID,
			"status":    string(txn.Status),
		})
		return nil
	}

	period, err := s.provider.SubscriptionPeriod(ctx, session.Subscription.ID)
	if err != nil {
		return err
	}

	link := ProviderLink{
		Provider:       entity.ProviderStripe,
		SubscriptionId: session.Subscription.ID,
		Period:         *period,
	}
	if session.Customer != nil {
		link.CustomerId = session.Customer.ID
	}
	if _, err := s.lifecycle.Activate(ctx, session.ID, link); err != nil {
		// The row may have lapsed between the pre-check and the activation
		// transaction; both outcomes stay acknowledged.
		if errors.Is(err, ErrTransactionNotFound) || errors.Is(err, ErrCheckoutLapsed) {
			s.logger.Warn("StripeWebhook", "Activation skipped", map[string]interface{}{
				"reference": session.ID,
				"reason":    err.Error(),
			})
			return nil
		}
		return err
	}
	return nil
}

// onCheckoutClosed settles the pending checkout transaction as a terminal
// failure or expiry.
func (s *stripeWebhookService) onCheckoutClosed(ctx context.Context, event stripe.Event, status entity.TransactionStatus, reason entity.TransactionStatusReason) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.logger.Warn("StripeWebhook", "Malformed checkout session payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	txn, err := uow.TransactionRepository().FindByReference(ctx, session.ID)
	if err != nil {
		return err
	}
	if txn == nil || txn.IsTerminal() {
		return nil
	}

	txn.Status = status
	txn.StatusReason = reason
	txn.UpdatedAt = time.Now().UTC()
	if err := uow.TransactionRepository().Update(ctx, txn); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *stripeWebhookService) onInvoicePaid(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		s.logger.Warn("StripeWebhook", "Malformed invoice payload", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if invoice.BillingReason == stripe.InvoiceBillingReasonSubscriptionCreate {
		// First invoice of a subscription is handled by checkout.session.completed.
		return nil
	}
	if invoice.Subscription == nil {
		return nil
	}

	sub, err := s.findByStripeId(ctx, invoice.Subscription.ID)
	if err != nil || sub == nil {
		return err
	}

	// Re-fetch the window instead of trusting event ordering.
	period, err := s.provider.SubscriptionPeriod(ctx, invoice.Subscription.ID)
	if err != nil {
		return err
	}
	return s.lifecycle.Extend(ctx, sub.Id, *period, &PaymentRenewal{
		Reference:   invoice.ID,
		AmountMinor: invoice.AmountPaid,
		Currency:    string(invoice.Currency),
	})
}

func (s *stripeWebhookService) onInvoiceFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		s.logger.Warn("StripeWebhook", "Malformed invoice payload", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if invoice.Subscription == nil {
		return nil
	}

	sub, err := s.findByStripeId(ctx, invoice.Subscription.ID)
	if err != nil || sub == nil {
		return err
	}
	return s.lifecycle.EnterRetry(ctx, sub.Id, &PaymentFailure{
		Reference:   invoice.ID,
		AmountMinor: invoice.AmountDue,
		Currency:    string(invoice.Currency),
		Message:     fmt.Sprintf("invoice payment failed (attempt %d)", invoice.AttemptCount),
	})
}

func (s *stripeWebhookService) onSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var remote stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &remote); err != nil {
		s.logger.Warn("StripeWebhook", "Malformed subscription payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	sub, err := s.findByStripeId(ctx, remote.ID)
	if err != nil || sub == nil {
		return err
	}
	return s.lifecycle.MirrorCancelFlag(ctx, sub.Id, remote.CancelAtPeriodEnd)
}

func (s *stripeWebhookService) onSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var remote stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &remote); err != nil {
		s.logger.Warn("StripeWebhook", "Malformed subscription payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	sub, err := s.findByStripeId(ctx, remote.ID)
	if err != nil || sub == nil {
		return err
	}
	return s.lifecycle.HandleTerminated(ctx, sub.Id)
}

// findByStripeId resolves a Stripe subscription id to the local row. An
// unknown id is a deterministic gap: logged and acknowledged, never retried.
func (s *stripeWebhookService) findByStripeId(ctx context.Context, stripeSubId string) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindByStripeSubscriptionId(ctx, stripeSubId)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		s.logger.Warn("StripeWebhook", "No local subscription for Stripe id", map[string]interface{}{"stripe_subscription_id": stripeSubId})
	}
	return sub, nil
}
