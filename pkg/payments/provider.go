// Package payments wraps the Stripe and Paystack APIs behind one Provider
// interface. Adapters are pure API translators: no persistence, no lifecycle
// decisions.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-studyassistant-be/internal/entity"

	"github.com/google/uuid"
)

// ErrProviderCall wraps any transport or API-level failure from a provider so
// callers can classify without inspecting provider-specific error types.
var ErrProviderCall = errors.New("payment provider call failed")

// errMissingLinkage signals a subscription row without the provider ids the
// requested call needs.
var errMissingLinkage = errors.New("subscription is missing provider linkage")

func providerErr(provider entity.PaymentProvider, op string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrProviderCall, provider, op, err)
}

// CheckoutParams carries everything an adapter needs to open a hosted
// checkout. The metadata fields round-trip through the provider so webhooks
// can reconstruct intent without a second lookup.
type CheckoutParams struct {
	UserId          uuid.UUID
	UserEmail       string
	PlanId          uuid.UUID
	PlanSku         string
	BillingInterval entity.BillingInterval
	Currency        string
	AmountMinor     int64
	ProviderPriceId string
	SuccessURL      string
	CancelURL       string
}

type CheckoutSession struct {
	Reference   string
	CheckoutURL string
	AmountMinor int64
	Currency    string
	// ExpiresAt is set when the provider supplies its own session TTL
	// (Stripe); nil means the caller applies a local TTL (Paystack).
	ExpiresAt *time.Time
}

type CheckoutStatus string

const (
	CheckoutPending CheckoutStatus = "pending"
	CheckoutPaid    CheckoutStatus = "paid"
	CheckoutFailed  CheckoutStatus = "failed"
	CheckoutExpired CheckoutStatus = "expired"
)

// CheckoutResult is the normalized view of a verified checkout.
type CheckoutResult struct {
	Reference      string
	Status         CheckoutStatus
	SubscriptionId string // provider subscription id / code, empty until created
	CustomerId     string
	Metadata       map[string]string
}

// InvoiceLinks are the provider-hosted documents for a settled transaction.
// Either URL may be empty when the provider exposes no public document.
type InvoiceLinks struct {
	InvoiceURL string
	ReceiptURL string
}

// Period is the provider-authoritative billing window.
type Period struct {
	Start time.Time
	End   time.Time
}

type Provider interface {
	Name() entity.PaymentProvider

	CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	VerifyCheckout(ctx context.Context, reference string) (*CheckoutResult, error)

	// SubscriptionPeriod re-fetches the current billing window; period dates
	// are never computed locally.
	SubscriptionPeriod(ctx context.Context, providerSubscriptionId string) (*Period, error)

	CancelSubscription(ctx context.Context, providerSubscriptionId string, atPeriodEnd bool) error

	// InvoiceLinks resolves the hosted invoice or receipt for a checkout
	// reference, when the provider publishes one.
	InvoiceLinks(ctx context.Context, reference string) (*InvoiceLinks, error)

	// ManageURL returns the provider-hosted management surface for the
	// subscription (Stripe billing portal, Paystack manage link).
	ManageURL(ctx context.Context, sub *entity.Subscription, returnURL string) (string, error)
}

// Registry resolves the adapter for a provider tag at the edges (webhooks,
// stored subscriptions); everything past the edge holds a Provider value.
type Registry struct {
	providers map[entity.PaymentProvider]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[entity.PaymentProvider]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name entity.PaymentProvider) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("no payment provider registered for %q", name)
	}
	return p, nil
}

// ForSubscription picks the adapter a subscription row belongs to.
func (r *Registry) ForSubscription(sub *entity.Subscription) (Provider, error) {
	if sub.IsFreeTier() {
		return nil, fmt.Errorf("free tier subscription has no payment provider")
	}
	return r.Get(sub.Provider)
}
