package dto

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	PlanId          uuid.UUID `json:"plan_id" validate:"required"`
	BillingInterval string    `json:"billing_interval" validate:"required,oneof=month year"`
	CountryCode     string    `json:"country_code" validate:"omitempty,min=2,max=2"`
	SuccessURL      string    `json:"success_url" validate:"omitempty,url"`
	CancelURL       string    `json:"cancel_url" validate:"omitempty,url"`
}

type CheckoutResponse struct {
	Provider    string `json:"provider"`
	CheckoutURL string `json:"checkout_url"`
	Reference   string `json:"reference"`
}

type CancelRequest struct {
	Immediate bool `json:"immediate"`
}

type CancelResponse struct {
	Status            string     `json:"status"`
	AccessUntil       time.Time  `json:"access_until"`
	RefundEligible    bool       `json:"refund_eligible"`
	RefundEligibleTil *time.Time `json:"refund_eligible_until,omitempty"`
}

type SubscriptionStatusResponse struct {
	HasSubscription bool       `json:"has_subscription"`
	Status          string     `json:"status,omitempty"`
	State           string     `json:"state,omitempty"`
	PlanId          *uuid.UUID `json:"plan_id,omitempty"`
	PlanName        string     `json:"plan_name,omitempty"`
	PlanSku         string     `json:"plan_sku,omitempty"`
	BillingInterval string     `json:"billing_interval,omitempty"`
	PeriodStart     *time.Time `json:"period_start,omitempty"`
	PeriodEnd       *time.Time `json:"period_end,omitempty"`
	AutoRenew       bool       `json:"auto_renew"`
	IsInRetryPeriod bool       `json:"is_in_retry_period"`
	Provider        string     `json:"provider,omitempty"`
}

type PortalResponse struct {
	URL string `json:"url"`
}

type TransactionDTO struct {
	Id              uuid.UUID  `json:"id"`
	Reference       string     `json:"reference"`
	Provider        string     `json:"provider"`
	AmountMinor     int64      `json:"amount_minor"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	StatusReason    string     `json:"status_reason"`
	TransactionType string     `json:"transaction_type"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	// DisplayAt is the settlement time for successful rows and the creation
	// time for everything else; lists are ordered by it.
	DisplayAt time.Time `json:"display_at"`
}

type TransactionListResponse struct {
	Transactions []TransactionDTO `json:"transactions"`
}

type InvoiceLinkResponse struct {
	Provider   string `json:"provider"`
	InvoiceURL string `json:"invoice_url,omitempty"`
	ReceiptURL string `json:"receipt_url,omitempty"`
	Reference  string `json:"reference"`
}

type VerifyRedirectResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Activated bool   `json:"activated"`
}
