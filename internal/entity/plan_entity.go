package entity

import (
	"time"

	"github.com/google/uuid"
)

type SummaryDetail string
type AIFeedbackLevel string
type BillingInterval string
type PriceScopeType string

const (
	SummaryDetailLimited SummaryDetail = "limited_detail"
	SummaryDetailDeep    SummaryDetail = "deep_insights"

	AIFeedbackBasic   AIFeedbackLevel = "basic"
	AIFeedbackConcise AIFeedbackLevel = "concise"
	AIFeedbackFull    AIFeedbackLevel = "full_in_depth"

	BillingIntervalMonth BillingInterval = "month"
	BillingIntervalYear  BillingInterval = "year"

	PriceScopeGlobal    PriceScopeType = "global"
	PriceScopeContinent PriceScopeType = "continent"
	PriceScopeCountry   PriceScopeType = "country"
)

// PlanSkuFreemium is the tier every user lands on at signup and after downgrade.
const PlanSkuFreemium = "freemium"

// Limit value of -1 means unlimited.
type Plan struct {
	Id                     uuid.UUID
	Sku                    string
	Name                   string
	MonthlyUploadLimit     int
	MonthlyAssessmentLimit int
	QuestionsPerAssessment int
	FlashCardSetLimit      int
	CardsPerDeckLimit      int
	PagesPerUploadLimit    int
	SummaryDetail          SummaryDetail
	AIFeedbackLevel        AIFeedbackLevel
	IsActive               bool
	SortOrder              int
	CreatedAt              time.Time
	UpdatedAt              time.Time

	// Relations
	Prices []PlanPrice
}

// PlanPrice maps (plan, currency, provider, interval, scope) to a minor-unit
// amount plus the provider's own price identifier (Stripe price id, Paystack
// plan code). At most one active row may exist per tuple.
type PlanPrice struct {
	Id              uuid.UUID
	PlanId          uuid.UUID
	Currency        string
	Provider        PaymentProvider
	BillingInterval BillingInterval
	ScopeType       PriceScopeType
	ScopeValue      string
	PriceMinor      int64
	ProviderPriceId string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *Plan) IsFreemium() bool {
	return p.Sku == PlanSkuFreemium
}

// Unlimited reports whether a plan limit value disables the quota check.
func Unlimited(limit int) bool {
	return limit < 0
}
