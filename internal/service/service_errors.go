// FILE: internal/service/service_errors.go
package service

import "fmt"

// DomainError carries a machine-readable code alongside the human message so
// controllers can map failures to stable API error codes.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrPlanNotFound        = NewDomainError("PLAN_NOT_FOUND", "plan not found or inactive")
	ErrPriceNotConfigured  = NewDomainError("PRICE_NOT_CONFIGURED", "no active price configured for this plan, provider and currency")
	ErrNoActiveSub         = NewDomainError("NO_ACTIVE_SUBSCRIPTION", "no active subscription")
	ErrFreePlanCheckout    = NewDomainError("FREE_TIER_NOT_PURCHASABLE", "the free tier does not go through checkout")
	ErrFreeTierCancel      = NewDomainError("FREE_TIER_NOT_CANCELLABLE", "the free tier cannot be cancelled")
	ErrEmailTaken          = NewDomainError("EMAIL_ALREADY_REGISTERED", "email already registered")
	ErrInvalidCredentials  = NewDomainError("INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidSignature    = NewDomainError("INVALID_WEBHOOK_SIGNATURE", "webhook signature verification failed")
	ErrCheckoutLapsed      = NewDomainError("CHECKOUT_LAPSED", "checkout already closed as expired or failed")
	ErrMaterialNotFound    = NewDomainError("MATERIAL_NOT_FOUND", "study material not found")
	ErrTransactionNotFound = NewDomainError("TRANSACTION_NOT_FOUND", "transaction not found")

	ErrUploadLimit       = NewDomainError("MONTHLY_UPLOAD_LIMIT_EXCEEDED", "monthly upload limit reached for your plan")
	ErrAssessmentLimit   = NewDomainError("MONTHLY_ASSESSMENT_LIMIT_EXCEEDED", "monthly assessment limit reached for your plan")
	ErrFlashCardSetLimit = NewDomainError("FLASH_CARD_SET_LIMIT_EXCEEDED", "flash card set limit reached for your plan")
	ErrPagesPerUpload    = NewDomainError("PAGES_PER_UPLOAD_LIMIT_EXCEEDED", "document exceeds the page limit for your plan")
)
