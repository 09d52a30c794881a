package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string
type TransactionStatusReason string
type TransactionType string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusSuccess  TransactionStatus = "success"
	TransactionStatusFailed   TransactionStatus = "failed"
	TransactionStatusExpired  TransactionStatus = "expired"
	TransactionStatusCanceled TransactionStatus = "canceled"

	ReasonAwaitingPayment TransactionStatusReason = "awaiting_payment"
	ReasonAwaitingWebhook TransactionStatusReason = "awaiting_webhook"
	ReasonTTLElapsed      TransactionStatusReason = "ttl_elapsed"
	ReasonSuperseded      TransactionStatusReason = "superseded"
	ReasonProviderFailed  TransactionStatusReason = "provider_failed"
	ReasonUserCancelled   TransactionStatusReason = "user_cancelled"

	TransactionTypeInitial   TransactionType = "initial"
	TransactionTypeRecurring TransactionType = "recurring"
	TransactionTypeRefund    TransactionType = "refund"
)

// Transaction is one ledger row per payment attempt. Terminal statuses are
// final; the repository refuses transitions out of them.
type Transaction struct {
	Id              uuid.UUID
	Reference       string
	UserId          uuid.UUID
	PlanId          *uuid.UUID
	SubscriptionId  *uuid.UUID
	Provider        PaymentProvider
	AmountMinor     int64
	Currency        string
	Status          TransactionStatus
	StatusReason    TransactionStatusReason
	StatusMessage   *string
	FailureCode     *string
	Channel         *string
	TransactionType TransactionType
	ExpiresAt       *time.Time
	PaidAt          *time.Time
	Metadata        map[string]interface{}
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case TransactionStatusSuccess, TransactionStatusFailed,
		TransactionStatusExpired, TransactionStatusCanceled:
		return true
	}
	return false
}
