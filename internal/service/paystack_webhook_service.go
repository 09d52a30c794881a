// FILE: internal/service/paystack_webhook_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/pkg/payments"

	"github.com/google/uuid"
)

type IPaystackWebhookService interface {
	// HandleWebhook verifies the x-paystack-signature header and dispatches
	// the event. A nil return acknowledges the delivery.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// paystackEvent is the common envelope of every Paystack webhook.
type paystackEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type paystackChargeData struct {
	Id        int64  `json:"id"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	PaidAt    string `json:"paid_at"`
	Customer  struct {
		Email        string `json:"email"`
		CustomerCode string `json:"customer_code"`
	} `json:"customer"`
	Metadata map[string]interface{} `json:"metadata"`
}

type paystackSubscriptionData struct {
	Id               int64  `json:"id"`
	SubscriptionCode string `json:"subscription_code"`
	Status           string `json:"status"`
	NextPaymentDate  string `json:"next_payment_date"`
	CreatedAt        string `json:"createdAt"`
	Customer         struct {
		Email        string `json:"email"`
		CustomerCode string `json:"customer_code"`
	} `json:"customer"`
	Plan struct {
		PlanCode string `json:"plan_code"`
	} `json:"plan"`
}

type paystackWebhookService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   *payments.PaystackProvider
	lifecycle  ISubscriptionLifecycleService
	deduper    *payments.EventDeduper
	logger     logger.ILogger

	// Paystack sends subscription.create and charge.success in either
	// order; the linkage lookup retries briefly to let the charge land.
	lookupRetries int
	lookupDelay   time.Duration
}

func NewPaystackWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	provider *payments.PaystackProvider,
	lifecycle ISubscriptionLifecycleService,
	deduper *payments.EventDeduper,
	log logger.ILogger,
) IPaystackWebhookService {
	return &paystackWebhookService{
		uowFactory:    uowFactory,
		provider:      provider,
		lifecycle:     lifecycle,
		deduper:       deduper,
		logger:        log,
		lookupRetries: 3,
		lookupDelay:   time.Second,
	}
}

func (s *paystackWebhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.provider.VerifyWebhookSignature(payload, signature) {
		return ErrInvalidSignature
	}

	var event paystackEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn("PaystackWebhook", "Malformed webhook payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	// Paystack carries no top-level event id; the event name plus the
	// object's own identity is the closest stable key.
	if !s.deduper.FirstDelivery(ctx, entity.ProviderPaystack, s.dedupeKey(event)) {
		s.logger.Info("PaystackWebhook", "Duplicate event suppressed", map[string]interface{}{"event": event.Event})
		return nil
	}

	s.logger.Info("PaystackWebhook", "Event received", map[string]interface{}{"event": event.Event})

	switch event.Event {
	case "charge.success":
		return s.onChargeSuccess(ctx, event.Data)
	case "charge.failed":
		return s.onChargeFailed(ctx, event.Data)
	case "subscription.create":
		return s.onSubscriptionCreate(ctx, event.Data)
	case "subscription.not_renew":
		return s.onSubscriptionNotRenew(ctx, event.Data)
	case "subscription.disable":
		return s.onSubscriptionDisable(ctx, event.Data)
	default:
		s.logger.Debug("PaystackWebhook", "Ignoring event type", map[string]interface{}{"event": event.Event})
		return nil
	}
}

func (s *paystackWebhookService) dedupeKey(event paystackEvent) string {
	var ident struct {
		Id        int64  `json:"id"`
		Reference string `json:"reference"`
	}
	_ = json.Unmarshal(event.Data, &ident)
	if ident.Reference != "" {
		return event.Event + ":" + ident.Reference
	}
	return fmt.Sprintf("%s:%d", event.Event, ident.Id)
}

// onChargeSuccess settles the ledger row only. The subscription itself is
// created by subscription.create, which may arrive before or after this.
func (s *paystackWebhookService) onChargeSuccess(ctx context.Context, raw json.RawMessage) error {
	var data paystackChargeData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("PaystackWebhook", "Malformed charge.success payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	txn, err := uow.TransactionRepository().FindByReference(ctx, data.Reference)
	if err != nil {
		return err
	}
	if txn == nil {
		s.logger.Warn("PaystackWebhook", "No transaction for charge reference", map[string]interface{}{"reference": data.Reference})
		return nil
	}
	if txn.IsTerminal() {
		return nil
	}

	now := time.Now().UTC()
	txn.Status = entity.TransactionStatusSuccess
	txn.StatusReason = entity.ReasonAwaitingWebhook
	txn.PaidAt = &now
	if data.Channel != "" {
		txn.Channel = &data.Channel
	}
	txn.UpdatedAt = now
	if err := uow.TransactionRepository().Update(ctx, txn); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *paystackWebhookService) onChargeFailed(ctx context.Context, raw json.RawMessage) error {
	var data paystackChargeData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("PaystackWebhook", "Malformed charge.failed payload", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if data.Customer.CustomerCode == "" {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindLatestActiveByPaystackCustomerCode(ctx, data.Customer.CustomerCode)
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.Warn("PaystackWebhook", "No subscription for failed charge", map[string]interface{}{"customer_code": data.Customer.CustomerCode})
		return nil
	}
	return s.lifecycle.EnterRetry(ctx, sub.Id, &PaymentFailure{
		Reference:   data.Reference,
		AmountMinor: data.Amount,
		Currency:    data.Currency,
		Message:     "renewal charge failed",
	})
}

// onSubscriptionCreate links the new subscription to the charge that paid for
// it. The matching transaction is the user's newest successful, still
// unlinked Paystack row.
func (s *paystackWebhookService) onSubscriptionCreate(ctx context.Context, raw json.RawMessage) error {
	var data paystackSubscriptionData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("PaystackWebhook", "Malformed subscription.create payload", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if data.SubscriptionCode == "" {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Duplicate delivery: this code is already linked.
	if existing, err := uow.SubscriptionRepository().FindByPaystackSubscriptionCode(ctx, data.SubscriptionCode); err != nil {
		return err
	} else if existing != nil {
		return nil
	}

	var userId *uuid.UUID
	if data.Customer.Email != "" {
		user, err := uow.UserRepository().FindByEmail(ctx, data.Customer.Email)
		if err != nil {
			return err
		}
		if user != nil {
			userId = &user.Id
		}
	}

	txn, err := s.findSettledCharge(ctx, userId)
	if err != nil {
		return err
	}
	if txn == nil {
		s.logger.Warn("PaystackWebhook", "No settled charge found for new subscription", map[string]interface{}{
			"subscription_code": data.SubscriptionCode,
			"customer_email":    data.Customer.Email,
		})
		return nil
	}

	period, err := s.periodFromEvent(ctx, data)
	if err != nil {
		return err
	}

	if _, err := s.lifecycle.Activate(ctx, txn.Reference, ProviderLink{
		Provider:       entity.ProviderPaystack,
		SubscriptionId: data.SubscriptionCode,
		CustomerId:     data.Customer.CustomerCode,
		Period:         *period,
	}); err != nil {
		return err
	}
	return nil
}

// findSettledCharge polls briefly for the charge.success row, since the two
// webhooks race.
func (s *paystackWebhookService) findSettledCharge(ctx context.Context, userId *uuid.UUID) (*entity.Transaction, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	for attempt := 0; ; attempt++ {
		txn, err := uow.TransactionRepository().FindLatestUnlinkedSuccess(ctx, entity.ProviderPaystack, userId)
		if err != nil {
			return nil, err
		}
		if txn != nil {
			return txn, nil
		}
		if attempt >= s.lookupRetries-1 {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.lookupDelay):
		}
	}
}

// periodFromEvent prefers the window carried in the event itself, falling
// back to a subscription fetch when the fields are absent.
func (s *paystackWebhookService) periodFromEvent(ctx context.Context, data paystackSubscriptionData) (*payments.Period, error) {
	if data.CreatedAt != "" && data.NextPaymentDate != "" {
		start, errStart := payments.ParsePaystackTime(data.CreatedAt)
		end, errEnd := payments.ParsePaystackTime(data.NextPaymentDate)
		if errStart == nil && errEnd == nil {
			return &payments.Period{Start: start, End: end}, nil
		}
	}
	return s.provider.SubscriptionPeriod(ctx, data.SubscriptionCode)
}

func (s *paystackWebhookService) onSubscriptionNotRenew(ctx context.Context, raw json.RawMessage) error {
	var data paystackSubscriptionData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("PaystackWebhook", "Malformed subscription.not_renew payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	sub, err := s.findByCode(ctx, data.SubscriptionCode)
	if err != nil || sub == nil {
		return err
	}
	return s.lifecycle.SetAutoRenew(ctx, sub.Id, false)
}

func (s *paystackWebhookService) onSubscriptionDisable(ctx context.Context, raw json.RawMessage) error {
	var data paystackSubscriptionData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("PaystackWebhook", "Malformed subscription.disable payload", map[string]interface{}{"error": err.Error()})
		return nil
	}

	sub, err := s.findByCode(ctx, data.SubscriptionCode)
	if err != nil || sub == nil {
		return err
	}
	return s.lifecycle.HandleTerminated(ctx, sub.Id)
}

func (s *paystackWebhookService) findByCode(ctx context.Context, code string) (*entity.Subscription, error) {
	if code == "" {
		return nil, nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindByPaystackSubscriptionCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		s.logger.Warn("PaystackWebhook", "No local subscription for code", map[string]interface{}{"subscription_code": code})
	}
	return sub, nil
}
