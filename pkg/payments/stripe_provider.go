package payments

import (
	"context"
	"time"

	"ai-studyassistant-be/internal/entity"

	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/subscription"
)

type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider sets the package-level API key once at construction.
// stripe-go authenticates every call through it.
func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

func (p *StripeProvider) Name() entity.PaymentProvider {
	return entity.ProviderStripe
}

func (p *StripeProvider) WebhookSecret() string {
	return p.webhookSecret
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, cp CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(cp.ProviderPriceId),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(cp.SuccessURL),
		CancelURL:     stripe.String(cp.CancelURL),
		CustomerEmail: stripe.String(cp.UserEmail),
	}
	params.Context = ctx
	params.AddMetadata("user_id", cp.UserId.String())
	params.AddMetadata("plan_id", cp.PlanId.String())
	params.AddMetadata("plan_sku", cp.PlanSku)
	params.AddMetadata("billing_interval", string(cp.BillingInterval))

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, providerErr(entity.ProviderStripe, "create checkout session", err)
	}

	result := &CheckoutSession{
		Reference:   s.ID,
		CheckoutURL: s.URL,
		AmountMinor: s.AmountTotal,
		Currency:    string(s.Currency),
	}
	if s.ExpiresAt > 0 {
		t := time.Unix(s.ExpiresAt, 0).UTC()
		result.ExpiresAt = &t
	}
	return result, nil
}

func (p *StripeProvider) VerifyCheckout(ctx context.Context, reference string) (*CheckoutResult, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := checkoutsession.Get(reference, params)
	if err != nil {
		return nil, providerErr(entity.ProviderStripe, "retrieve checkout session", err)
	}

	result := &CheckoutResult{
		Reference: s.ID,
		Status:    checkoutStatusFromSession(s),
		Metadata:  s.Metadata,
	}
	if s.Subscription != nil {
		result.SubscriptionId = s.Subscription.ID
	}
	if s.Customer != nil {
		result.CustomerId = s.Customer.ID
	}
	return result, nil
}

func checkoutStatusFromSession(s *stripe.CheckoutSession) CheckoutStatus {
	switch s.Status {
	case stripe.CheckoutSessionStatusExpired:
		return CheckoutExpired
	case stripe.CheckoutSessionStatusComplete:
		if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			return CheckoutPaid
		}
		return CheckoutPending
	default:
		return CheckoutPending
	}
}

// InvoiceLinks prefers the hosted invoice; when the session has none it
// falls back to the latest charge's receipt.
func (p *StripeProvider) InvoiceLinks(ctx context.Context, reference string) (*InvoiceLinks, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("invoice")
	params.AddExpand("payment_intent.latest_charge")

	s, err := checkoutsession.Get(reference, params)
	if err != nil {
		return nil, providerErr(entity.ProviderStripe, "retrieve checkout session", err)
	}

	links := &InvoiceLinks{}
	if s.Invoice != nil {
		links.InvoiceURL = s.Invoice.HostedInvoiceURL
		links.ReceiptURL = s.Invoice.InvoicePDF
	}
	if links.InvoiceURL == "" && s.PaymentIntent != nil && s.PaymentIntent.LatestCharge != nil {
		links.ReceiptURL = s.PaymentIntent.LatestCharge.ReceiptURL
	}
	return links, nil
}

func (p *StripeProvider) SubscriptionPeriod(ctx context.Context, providerSubscriptionId string) (*Period, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := subscription.Get(providerSubscriptionId, params)
	if err != nil {
		return nil, providerErr(entity.ProviderStripe, "retrieve subscription", err)
	}
	return &Period{
		Start: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		End:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}, nil
}

func (p *StripeProvider) CancelSubscription(ctx context.Context, providerSubscriptionId string, atPeriodEnd bool) error {
	if atPeriodEnd {
		params := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		params.Context = ctx
		if _, err := subscription.Update(providerSubscriptionId, params); err != nil {
			return providerErr(entity.ProviderStripe, "schedule cancellation", err)
		}
		return nil
	}
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := subscription.Cancel(providerSubscriptionId, params); err != nil {
		return providerErr(entity.ProviderStripe, "cancel subscription", err)
	}
	return nil
}

func (p *StripeProvider) ManageURL(ctx context.Context, sub *entity.Subscription, returnURL string) (string, error) {
	if sub.StripeCustomerId == nil {
		return "", providerErr(entity.ProviderStripe, "billing portal", errMissingLinkage)
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*sub.StripeCustomerId),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	s, err := portalsession.New(params)
	if err != nil {
		return "", providerErr(entity.ProviderStripe, "billing portal", err)
	}
	return s.URL, nil
}
