package dto

import (
	"github.com/google/uuid"
)

type PlanPriceDTO struct {
	Currency        string `json:"currency"`
	Provider        string `json:"provider"`
	BillingInterval string `json:"billing_interval"`
	PriceMinor      int64  `json:"price_minor"`
}

type PlanResponse struct {
	Id                     uuid.UUID      `json:"id"`
	Sku                    string         `json:"sku"`
	Name                   string         `json:"name"`
	MonthlyUploadLimit     int            `json:"monthly_upload_limit"`
	MonthlyAssessmentLimit int            `json:"monthly_assessment_limit"`
	QuestionsPerAssessment int            `json:"questions_per_assessment"`
	FlashCardSetLimit      int            `json:"flash_card_set_limit"`
	CardsPerDeckLimit      int            `json:"cards_per_deck_limit"`
	PagesPerUploadLimit    int            `json:"pages_per_upload_limit"`
	SummaryDetail          string         `json:"summary_detail"`
	AIFeedbackLevel        string         `json:"ai_feedback_level"`
	Prices                 []PlanPriceDTO `json:"prices"`
}
