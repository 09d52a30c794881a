package service

import (
	"context"
	"testing"
	"time"

	"ai-studyassistant-be/internal/dto"
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/pkg/payments"

	"github.com/stretchr/testify/assert"
)

type checkoutFixture struct {
	store    *memStore
	stripe   *stubProvider
	paystack *stubProvider
	svc      ICheckoutService
	plan     *entity.Plan
	user     *entity.User
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := newMemStore()
	factory := &memFactory{store}
	lifecycle := NewSubscriptionLifecycleService(factory, nil, nopLogger{})

	stripe := &stubProvider{
		name: entity.ProviderStripe,
		session: &payments.CheckoutSession{
			Reference:   "cs_test_1",
			CheckoutURL: "https://checkout.stripe.com/cs_test_1",
			AmountMinor: 999,
			Currency:    "USD",
		},
	}
	paystack := &stubProvider{
		name: entity.ProviderPaystack,
		session: &payments.CheckoutSession{
			Reference:   "ps_ref_1",
			CheckoutURL: "https://checkout.paystack.com/ps_ref_1",
			AmountMinor: 500000,
			Currency:    "NGN",
		},
	}
	registry := payments.NewRegistry(stripe, paystack)
	svc := NewCheckoutService(factory, registry, lifecycle, "https://app.example.com", nopLogger{})

	plan := store.addPlan(&entity.Plan{Sku: "scholar", Name: "Scholar", IsActive: true})
	store.prices = []*entity.PlanPrice{
		{PlanId: plan.Id, Provider: entity.ProviderStripe, Currency: "USD", BillingInterval: entity.BillingIntervalMonth, ScopeType: entity.PriceScopeGlobal, PriceMinor: 999, ProviderPriceId: "price_usd", IsActive: true},
		{PlanId: plan.Id, Provider: entity.ProviderPaystack, Currency: "NGN", BillingInterval: entity.BillingIntervalMonth, ScopeType: entity.PriceScopeCountry, ScopeValue: "NG", PriceMinor: 500000, ProviderPriceId: "PLN_ng", IsActive: true},
	}
	user := store.addUser(&entity.User{Email: "a@example.com"})

	return &checkoutFixture{store: store, stripe: stripe, paystack: paystack, svc: svc, plan: plan, user: user}
}

func TestCreateCheckoutRoutesNigeriaToPaystack(t *testing.T) {
	f := newCheckoutFixture(t)

	res, err := f.svc.CreateCheckout(context.Background(), f.user.Id, &dto.CheckoutRequest{
		PlanId:          f.plan.Id,
		BillingInterval: "month",
		CountryCode:     "NG",
	})
	assert.NoError(t, err)
	assert.Equal(t, "paystack", res.Provider)
	assert.Equal(t, "ps_ref_1", res.Reference)

	assert.Len(t, f.paystack.checkoutParams, 1)
	assert.Equal(t, "NGN", f.paystack.checkoutParams[0].Currency)
	assert.Equal(t, "PLN_ng", f.paystack.checkoutParams[0].ProviderPriceId)
	assert.Empty(t, f.stripe.checkoutParams)

	// Paystack sessions get the local TTL.
	txn, _ := (&memTransactionRepo{f.store}).FindByReference(context.Background(), "ps_ref_1")
	assert.NotNil(t, txn.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), *txn.ExpiresAt, time.Minute)
}

func TestCreateCheckoutDefaultsToStripeUSD(t *testing.T) {
	f := newCheckoutFixture(t)

	res, err := f.svc.CreateCheckout(context.Background(), f.user.Id, &dto.CheckoutRequest{
		PlanId:          f.plan.Id,
		BillingInterval: "month",
		CountryCode:     "US",
	})
	assert.NoError(t, err)
	assert.Equal(t, "stripe", res.Provider)
	assert.Equal(t, "https://checkout.stripe.com/cs_test_1", res.CheckoutURL)
	assert.Equal(t, "USD", f.stripe.checkoutParams[0].Currency)
}

func TestCreateCheckoutUsesProfileCountryWhenRequestOmitsIt(t *testing.T) {
	f := newCheckoutFixture(t)
	ng := "NG"
	f.user.CountryCode = &ng

	res, err := f.svc.CreateCheckout(context.Background(), f.user.Id, &dto.CheckoutRequest{
		PlanId:          f.plan.Id,
		BillingInterval: "month",
	})
	assert.NoError(t, err)
	assert.Equal(t, "paystack", res.Provider)
}

func TestCreateCheckoutRejectsFreemiumPlan(t *testing.T) {
	f := newCheckoutFixture(t)
	freemium := f.store.addPlan(&entity.Plan{Sku: entity.PlanSkuFreemium, Name: "Freemium", IsActive: true})

	_, err := f.svc.CreateCheckout(context.Background(), f.user.Id, &dto.CheckoutRequest{
		PlanId:          freemium.Id,
		BillingInterval: "month",
	})
	assert.ErrorIs(t, err, ErrFreePlanCheckout)
}

func TestCreateCheckoutRejectsInactivePlan(t *testing.T) {
	f := newCheckoutFixture(t)
	f.plan.IsActive = false

	_, err := f.svc.CreateCheckout(context.Background(), f.user.Id, &dto.CheckoutRequest{
		PlanId:          f.plan.Id,
		BillingInterval: "month",
	})
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCreateCheckoutMissingPriceIsConfigError(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.CreateCheckout(context.Background(), f.user.Id, &dto.CheckoutRequest{
		PlanId:          f.plan.Id,
		BillingInterval: "year", // no yearly price seeded
		CountryCode:     "US",
	})
	assert.ErrorIs(t, err, ErrPriceNotConfigured)
}

func TestCreateCheckoutSupersedesOpenPending(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	stale := f.store.addTransaction(&entity.Transaction{
		Reference: "cs_old",
		UserId:    f.user.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusPending,
	})

	_, err := f.svc.CreateCheckout(ctx, f.user.Id, &dto.CheckoutRequest{
		PlanId:          f.plan.Id,
		BillingInterval: "month",
		CountryCode:     "US",
	})
	assert.NoError(t, err)

	assert.Equal(t, entity.TransactionStatusExpired, stale.Status)
	assert.Equal(t, entity.ReasonSuperseded, stale.StatusReason)

	fresh, _ := (&memTransactionRepo{f.store}).FindByReference(ctx, "cs_test_1")
	assert.Equal(t, entity.TransactionStatusPending, fresh.Status)
	assert.Equal(t, "month", fresh.Metadata["billing_interval"])
}

func TestVerifyRedirectActivatesOnPaidWithSubscription(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	f.store.addTransaction(&entity.Transaction{
		Reference: "cs_test_1",
		UserId:    f.user.Id,
		PlanId:    &f.plan.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusPending,
	})
	f.stripe.result = &payments.CheckoutResult{
		Reference:      "cs_test_1",
		Status:         payments.CheckoutPaid,
		SubscriptionId: "sub_123",
		CustomerId:     "cus_123",
	}
	f.stripe.period = &payments.Period{Start: now, End: now.AddDate(0, 1, 0)}

	res, err := f.svc.VerifyRedirect(ctx, f.user.Id, "cs_test_1")
	assert.NoError(t, err)
	assert.True(t, res.Activated)

	sub, _ := (&memSubscriptionRepo{f.store}).FindByStripeSubscriptionId(ctx, "sub_123")
	assert.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
}

func TestVerifyRedirectPaidWithoutSubscriptionWaitsForWebhook(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	txn := f.store.addTransaction(&entity.Transaction{
		Reference: "ps_ref_1",
		UserId:    f.user.Id,
		PlanId:    &f.plan.Id,
		Provider:  entity.ProviderPaystack,
		Status:    entity.TransactionStatusPending,
	})
	f.paystack.result = &payments.CheckoutResult{
		Reference: "ps_ref_1",
		Status:    payments.CheckoutPaid,
	}

	res, err := f.svc.VerifyRedirect(ctx, f.user.Id, "ps_ref_1")
	assert.NoError(t, err)
	assert.False(t, res.Activated)

	assert.Equal(t, entity.TransactionStatusSuccess, txn.Status)
	assert.Equal(t, entity.ReasonAwaitingWebhook, txn.StatusReason)
	assert.Nil(t, txn.SubscriptionId)
	assert.Empty(t, f.store.subscriptions)
}

func TestVerifyRedirectIsIdempotentAfterWebhook(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	subId := f.store.addSubscription(&entity.Subscription{UserId: f.user.Id, Status: entity.SubscriptionStatusActive}).Id

	f.store.addTransaction(&entity.Transaction{
		Reference:      "cs_test_1",
		UserId:         f.user.Id,
		Provider:       entity.ProviderStripe,
		Status:         entity.TransactionStatusSuccess,
		SubscriptionId: &subId,
	})

	res, err := f.svc.VerifyRedirect(ctx, f.user.Id, "cs_test_1")
	assert.NoError(t, err)
	assert.True(t, res.Activated)
	// Provider never called.
	assert.Nil(t, f.stripe.result)
}

func TestVerifyRedirectRejectsForeignTransaction(t *testing.T) {
	f := newCheckoutFixture(t)
	other := f.store.addUser(&entity.User{Email: "b@example.com"})
	f.store.addTransaction(&entity.Transaction{
		Reference: "cs_test_1",
		UserId:    other.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusPending,
	})

	_, err := f.svc.VerifyRedirect(context.Background(), f.user.Id, "cs_test_1")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestVerifyRedirectExpiredSession(t *testing.T) {
	f := newCheckoutFixture(t)
	txn := f.store.addTransaction(&entity.Transaction{
		Reference: "cs_test_1",
		UserId:    f.user.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusPending,
	})
	f.stripe.result = &payments.CheckoutResult{Reference: "cs_test_1", Status: payments.CheckoutExpired}

	res, err := f.svc.VerifyRedirect(context.Background(), f.user.Id, "cs_test_1")
	assert.NoError(t, err)
	assert.Equal(t, string(entity.TransactionStatusExpired), res.Status)
	assert.Equal(t, entity.ReasonTTLElapsed, txn.StatusReason)
}
