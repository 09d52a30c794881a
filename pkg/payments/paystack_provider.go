package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ai-studyassistant-be/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

const paystackBaseURL = "https://api.paystack.co"

// Paystack has no maintained Go SDK; this client is a thin wrapper over its
// REST API with bounded timeouts.
type PaystackProvider struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewPaystackProvider(secretKey string) *PaystackProvider {
	return &PaystackProvider{
		secretKey: secretKey,
		baseURL:   paystackBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *PaystackProvider) Name() entity.PaymentProvider {
	return entity.ProviderPaystack
}

// VerifyWebhookSignature checks the x-paystack-signature header: a hex
// HMAC-SHA512 of the raw body under the secret key.
func (p *PaystackProvider) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// envelope is Paystack's standard response wrapper.
type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *PaystackProvider) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("paystack %s %s: http %d: %s", method, path, resp.StatusCode, string(raw))
	}

	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("paystack %s %s: decode: %w", method, path, err)
	}
	if !envelope.Status {
		return fmt.Errorf("paystack %s %s: status=false: %s", method, path, envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("paystack %s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

func (p *PaystackProvider) CreateCheckout(ctx context.Context, cp CheckoutParams) (*CheckoutSession, error) {
	payload := map[string]interface{}{
		"email":        cp.UserEmail,
		"amount":       cp.AmountMinor,
		"currency":     cp.Currency,
		"plan":         cp.ProviderPriceId, // plan code turns the charge into a subscription
		"callback_url": cp.SuccessURL,
		"metadata": map[string]string{
			"user_id":          cp.UserId.String(),
			"plan_id":          cp.PlanId.String(),
			"plan_sku":         cp.PlanSku,
			"billing_interval": string(cp.BillingInterval),
		},
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := p.call(ctx, http.MethodPost, "/transaction/initialize", payload, &data); err != nil {
		return nil, providerErr(entity.ProviderPaystack, "initialize transaction", err)
	}
	if data.AuthorizationURL == "" || data.Reference == "" {
		return nil, providerErr(entity.ProviderPaystack, "initialize transaction",
			fmt.Errorf("response missing authorization_url or reference"))
	}

	// Paystack supplies no session TTL; the orchestrator applies a local one.
	return &CheckoutSession{
		Reference:   data.Reference,
		CheckoutURL: data.AuthorizationURL,
		AmountMinor: cp.AmountMinor,
		Currency:    cp.Currency,
	}, nil
}

func (p *PaystackProvider) VerifyCheckout(ctx context.Context, reference string) (*CheckoutResult, error) {
	var data struct {
		Status   string                 `json:"status"`
		Amount   int64                  `json:"amount"`
		Currency string                 `json:"currency"`
		Metadata map[string]interface{} `json:"metadata"`
		Customer struct {
			CustomerCode string `json:"customer_code"`
			Email        string `json:"email"`
		} `json:"customer"`
	}
	if err := p.call(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return nil, providerErr(entity.ProviderPaystack, "verify transaction", err)
	}

	result := &CheckoutResult{
		Reference:  reference,
		CustomerId: data.Customer.CustomerCode,
		Metadata:   stringifyMetadata(data.Metadata),
	}
	switch data.Status {
	case "success":
		result.Status = CheckoutPaid
	case "failed":
		result.Status = CheckoutFailed
	case "abandoned":
		result.Status = CheckoutExpired
	default:
		result.Status = CheckoutPending
	}
	return result, nil
}

// InvoiceLinks: Paystack publishes no hosted invoice document; the receipt
// number from verification is the closest public artifact, so both URLs stay
// empty and callers fall back to their own transaction record.
func (p *PaystackProvider) InvoiceLinks(ctx context.Context, reference string) (*InvoiceLinks, error) {
	var data struct {
		Status string `json:"status"`
	}
	if err := p.call(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return nil, providerErr(entity.ProviderPaystack, "verify transaction", err)
	}
	return &InvoiceLinks{}, nil
}

func stringifyMetadata(metadata map[string]interface{}) map[string]string {
	if metadata == nil {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

type paystackSubscription struct {
	SubscriptionCode string `json:"subscription_code"`
	Status           string `json:"status"`
	EmailToken       string `json:"email_token"`
	NextPaymentDate  string `json:"next_payment_date"`
	CreatedAt        string `json:"createdAt"`
}

func (p *PaystackProvider) getSubscription(ctx context.Context, code string) (*paystackSubscription, error) {
	var data paystackSubscription
	if err := p.call(ctx, http.MethodGet, "/subscription/"+url.PathEscape(code), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SubscriptionPeriod maps Paystack's createdAt/next_payment_date pair to the
// current billing window.
func (p *PaystackProvider) SubscriptionPeriod(ctx context.Context, providerSubscriptionId string) (*Period, error) {
	sub, err := p.getSubscription(ctx, providerSubscriptionId)
	if err != nil {
		return nil, providerErr(entity.ProviderPaystack, "get subscription", err)
	}
	if sub.CreatedAt == "" || sub.NextPaymentDate == "" {
		return nil, providerErr(entity.ProviderPaystack, "get subscription",
			fmt.Errorf("missing createdAt or next_payment_date"))
	}
	start, err := ParsePaystackTime(sub.CreatedAt)
	if err != nil {
		return nil, providerErr(entity.ProviderPaystack, "get subscription", err)
	}
	end, err := ParsePaystackTime(sub.NextPaymentDate)
	if err != nil {
		return nil, providerErr(entity.ProviderPaystack, "get subscription", err)
	}
	return &Period{Start: start, End: end}, nil
}

func ParsePaystackTime(value string) (time.Time, error) {
	// Paystack emits both "2024-11-13T00:00:00.000Z" and second precision.
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable paystack timestamp %q", value)
}

// CancelSubscription disables the subscription. Paystack has a single disable
// operation: renewal stops and the subscription lapses at the end of the
// period already paid for, so atPeriodEnd and immediate map to the same call;
// local state carries the distinction.
func (p *PaystackProvider) CancelSubscription(ctx context.Context, providerSubscriptionId string, atPeriodEnd bool) error {
	payload := map[string]string{
		"code": providerSubscriptionId,
	}
	// Customer-scoped disables need the email token embedded in the manage
	// link; fall back to a merchant-initiated disable when it cannot be
	// obtained.
	if token, err := p.emailToken(ctx, providerSubscriptionId); err == nil && token != "" {
		payload["token"] = token
	}
	if err := p.call(ctx, http.MethodPost, "/subscription/disable", payload, nil); err != nil {
		return providerErr(entity.ProviderPaystack, "disable subscription", err)
	}
	return nil
}

func (p *PaystackProvider) ManageURL(ctx context.Context, sub *entity.Subscription, returnURL string) (string, error) {
	if sub.PaystackSubscriptionCode == nil {
		return "", providerErr(entity.ProviderPaystack, "manage link", errMissingLinkage)
	}
	link, err := p.getManageLink(ctx, *sub.PaystackSubscriptionCode)
	if err != nil {
		return "", providerErr(entity.ProviderPaystack, "manage link", err)
	}
	return link, nil
}

func (p *PaystackProvider) getManageLink(ctx context.Context, subscriptionCode string) (string, error) {
	var data struct {
		Link string `json:"link"`
	}
	path := "/subscription/" + url.PathEscape(subscriptionCode) + "/manage/link"
	if err := p.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return "", err
	}
	if data.Link == "" {
		return "", fmt.Errorf("response missing link")
	}
	return data.Link, nil
}

func (p *PaystackProvider) emailToken(ctx context.Context, subscriptionCode string) (string, error) {
	link, err := p.getManageLink(ctx, subscriptionCode)
	if err != nil {
		return "", err
	}
	return extractEmailToken(link)
}

// extractEmailToken pulls the email_token out of the JWT Paystack embeds in
// the manage link's subscription_token query parameter. The token is decoded,
// not verified; it only ever goes straight back to Paystack.
func extractEmailToken(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("unparseable manage link: %w", err)
	}
	token := parsed.Query().Get("subscription_token")
	if token == "" {
		return "", fmt.Errorf("no subscription_token in manage link")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse subscription_token: %w", err)
	}
	emailToken, _ := claims["email_token"].(string)
	if emailToken == "" {
		return "", fmt.Errorf("no email_token in JWT payload")
	}
	return emailToken, nil
}
