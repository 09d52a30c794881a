package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/pkg/payments"

	"github.com/stretchr/testify/assert"
)

const paystackTestSecret = "sk_test_paystack"

func signPaystackBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(paystackTestSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type paystackWebhookFixture struct {
	store *memStore
	svc   *paystackWebhookService
}

func newPaystackWebhookFixture(t *testing.T) *paystackWebhookFixture {
	t.Helper()
	store := newMemStore()
	factory := &memFactory{store}
	lifecycle := NewSubscriptionLifecycleService(factory, nil, nopLogger{})
	svc := &paystackWebhookService{
		uowFactory:    factory,
		provider:      payments.NewPaystackProvider(paystackTestSecret),
		lifecycle:     lifecycle,
		logger:        nopLogger{},
		lookupRetries: 2,
		lookupDelay:   50 * time.Millisecond,
	}
	return &paystackWebhookFixture{store: store, svc: svc}
}

func (f *paystackWebhookFixture) deliver(t *testing.T, body string) error {
	t.Helper()
	return f.svc.HandleWebhook(context.Background(), []byte(body), signPaystackBody([]byte(body)))
}

func TestPaystackWebhookRejectsBadSignature(t *testing.T) {
	f := newPaystackWebhookFixture(t)

	body := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)
	err := f.svc.HandleWebhook(context.Background(), body, "not-a-signature")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPaystackWebhookAcknowledgesUnknownEvent(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	assert.NoError(t, f.deliver(t, `{"event":"transfer.success","data":{"id":42}}`))
}

func TestPaystackChargeSuccessSettlesPendingRow(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	user := f.store.addUser(&entity.User{Email: "a@example.com"})
	txn := f.store.addTransaction(&entity.Transaction{
		Reference: "ref_1",
		UserId:    user.Id,
		Provider:  entity.ProviderPaystack,
		Status:    entity.TransactionStatusPending,
	})

	body := `{"event":"charge.success","data":{"reference":"ref_1","amount":500000,"currency":"NGN","channel":"card","status":"success","customer":{"email":"a@example.com"}}}`
	assert.NoError(t, f.deliver(t, body))

	assert.Equal(t, entity.TransactionStatusSuccess, txn.Status)
	assert.Equal(t, entity.ReasonAwaitingWebhook, txn.StatusReason)
	assert.NotNil(t, txn.PaidAt)
	assert.Equal(t, "card", *txn.Channel)
}

func TestPaystackChargeSuccessUnknownReferenceIsAcked(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	assert.NoError(t, f.deliver(t, `{"event":"charge.success","data":{"reference":"ref_nobody"}}`))
}

func TestPaystackSubscriptionCreateLinksSettledCharge(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	now := time.Now().UTC()

	plan := f.store.addPlan(&entity.Plan{Sku: "scholar", Name: "Scholar", IsActive: true})
	user := f.store.addUser(&entity.User{Email: "a@example.com"})
	paidAt := now.Add(-time.Minute)
	txn := f.store.addTransaction(&entity.Transaction{
		Reference: "ref_1",
		UserId:    user.Id,
		PlanId:    &plan.Id,
		Provider:  entity.ProviderPaystack,
		Status:    entity.TransactionStatusSuccess,
		PaidAt:    &paidAt,
		CreatedAt: now.Add(-time.Minute),
	})

	body := `{"event":"subscription.create","data":{"subscription_code":"SUB_1","createdAt":"2025-06-15T12:00:00.000Z","next_payment_date":"2025-07-15T12:00:00.000Z","customer":{"email":"a@example.com","customer_code":"CUS_1"}}}`
	assert.NoError(t, f.deliver(t, body))

	sub, _ := (&memSubscriptionRepo{f.store}).FindByPaystackSubscriptionCode(context.Background(), "SUB_1")
	assert.NotNil(t, sub)
	assert.Equal(t, user.Id, sub.UserId)
	assert.Equal(t, "CUS_1", *sub.PaystackCustomerCode)
	assert.True(t, sub.PeriodStart.Equal(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)))
	assert.True(t, sub.PeriodEnd.Equal(time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, sub.Id, *txn.SubscriptionId)
}

func TestPaystackSubscriptionCreateRetriesForLateCharge(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	now := time.Now().UTC()

	plan := f.store.addPlan(&entity.Plan{Sku: "scholar", Name: "Scholar", IsActive: true})
	user := f.store.addUser(&entity.User{Email: "a@example.com"})

	// The charge lands between the first and second lookup attempt.
	go func() {
		time.Sleep(f.svc.lookupDelay / 2)
		paidAt := now
		f.store.addTransaction(&entity.Transaction{
			Reference: "ref_late",
			UserId:    user.Id,
			PlanId:    &plan.Id,
			Provider:  entity.ProviderPaystack,
			Status:    entity.TransactionStatusSuccess,
			PaidAt:    &paidAt,
			CreatedAt: now,
		})
	}()

	body := `{"event":"subscription.create","data":{"subscription_code":"SUB_2","createdAt":"2025-06-15T12:00:00.000Z","next_payment_date":"2025-07-15T12:00:00.000Z","customer":{"email":"a@example.com","customer_code":"CUS_1"}}}`
	assert.NoError(t, f.deliver(t, body))

	sub, _ := (&memSubscriptionRepo{f.store}).FindByPaystackSubscriptionCode(context.Background(), "SUB_2")
	assert.NotNil(t, sub)
}

func TestPaystackSubscriptionCreateWithoutChargeIsAcked(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	f.store.addUser(&entity.User{Email: "a@example.com"})

	body := `{"event":"subscription.create","data":{"subscription_code":"SUB_3","createdAt":"2025-06-15T12:00:00.000Z","next_payment_date":"2025-07-15T12:00:00.000Z","customer":{"email":"a@example.com"}}}`
	assert.NoError(t, f.deliver(t, body))
	assert.Empty(t, f.store.subscriptions)
}

func TestPaystackSubscriptionCreateDuplicateCodeIsAcked(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	user := f.store.addUser(&entity.User{Email: "a@example.com"})
	code := "SUB_1"
	f.store.addSubscription(&entity.Subscription{
		UserId:                   user.Id,
		Status:                   entity.SubscriptionStatusActive,
		Provider:                 entity.ProviderPaystack,
		PaystackSubscriptionCode: &code,
	})

	body := `{"event":"subscription.create","data":{"subscription_code":"SUB_1","customer":{"email":"a@example.com"}}}`
	assert.NoError(t, f.deliver(t, body))
	assert.Len(t, f.store.subscriptions, 1)
}

func TestPaystackChargeFailedEntersRetry(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	now := time.Now().UTC()
	plan := f.store.addPlan(&entity.Plan{Sku: "scholar", Name: "Scholar", IsActive: true})
	user := f.store.addUser(&entity.User{Email: "a@example.com"})
	customerCode := "CUS_1"
	sub := f.store.addSubscription(&entity.Subscription{
		UserId:               user.Id,
		PlanId:               plan.Id,
		Status:               entity.SubscriptionStatusActive,
		PeriodEnd:            now.AddDate(0, 0, 5),
		AutoRenew:            true,
		Provider:             entity.ProviderPaystack,
		PaystackCustomerCode: &customerCode,
	})

	body := `{"event":"charge.failed","data":{"reference":"ref_fail","amount":500000,"currency":"NGN","customer":{"customer_code":"CUS_1"}}}`
	assert.NoError(t, f.deliver(t, body))

	got := f.store.subscriptions[sub.Id]
	assert.True(t, got.IsInRetryPeriod)
	assert.Equal(t, 1, got.RetryAttemptCount)
}

func TestPaystackSubscriptionNotRenewDisablesAutoRenew(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	now := time.Now().UTC()
	user := f.store.addUser(&entity.User{Email: "a@example.com"})
	code := "SUB_1"
	sub := f.store.addSubscription(&entity.Subscription{
		UserId:                   user.Id,
		Status:                   entity.SubscriptionStatusActive,
		PeriodEnd:                now.AddDate(0, 1, 0),
		AutoRenew:                true,
		Provider:                 entity.ProviderPaystack,
		PaystackSubscriptionCode: &code,
	})

	body := `{"event":"subscription.not_renew","data":{"subscription_code":"SUB_1"}}`
	assert.NoError(t, f.deliver(t, body))

	got := f.store.subscriptions[sub.Id]
	assert.False(t, got.AutoRenew)
	assert.True(t, got.UsableAt(now))
}

func TestPaystackSubscriptionDisableTerminates(t *testing.T) {
	f := newPaystackWebhookFixture(t)
	now := time.Now().UTC()
	plan := f.store.addPlan(&entity.Plan{Sku: "scholar", Name: "Scholar", IsActive: true})
	user := f.store.addUser(&entity.User{Email: "a@example.com"})
	code := "SUB_1"
	sub := f.store.addSubscription(&entity.Subscription{
		UserId:                   user.Id,
		PlanId:                   plan.Id,
		Status:                   entity.SubscriptionStatusActive,
		PeriodEnd:                now.AddDate(0, 0, 5),
		AutoRenew:                false,
		Provider:                 entity.ProviderPaystack,
		PaystackSubscriptionCode: &code,
	})

	body := `{"event":"subscription.disable","data":{"subscription_code":"SUB_1"}}`
	assert.NoError(t, f.deliver(t, body))

	assert.Equal(t, entity.SubscriptionStatusCancelled, f.store.subscriptions[sub.Id].Status)
}

func TestPaystackDedupeKey(t *testing.T) {
	f := newPaystackWebhookFixture(t)

	withRef := paystackEvent{Event: "charge.success", Data: json.RawMessage(`{"id":7,"reference":"ref_1"}`)}
	assert.Equal(t, "charge.success:ref_1", f.svc.dedupeKey(withRef))

	withoutRef := paystackEvent{Event: "subscription.create", Data: json.RawMessage(`{"id":7}`)}
	assert.Equal(t, "subscription.create:7", f.svc.dedupeKey(withoutRef))
}
