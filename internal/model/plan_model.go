package model

import (
	"time"

	"github.com/google/uuid"
)

type Plan struct {
	Id                     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Sku                    string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name                   string    `gorm:"type:varchar(255);not null"`
	MonthlyUploadLimit     int       `gorm:"default:0"` // -1 = unlimited
	MonthlyAssessmentLimit int       `gorm:"default:0"`
	QuestionsPerAssessment int       `gorm:"default:0"`
	FlashCardSetLimit      int       `gorm:"default:0"`
	CardsPerDeckLimit      int       `gorm:"default:0"`
	PagesPerUploadLimit    int       `gorm:"default:0"`
	SummaryDetail          string    `gorm:"type:varchar(50);not null;default:'limited_detail'"`
	AIFeedbackLevel        string    `gorm:"column:ai_feedback_level;type:varchar(50);not null;default:'basic'"`
	IsActive               bool      `gorm:"default:true"`
	SortOrder              int       `gorm:"default:0"`
	CreatedAt              time.Time `gorm:"autoCreateTime"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`

	// Relations
	Prices []*PlanPrice `gorm:"foreignKey:PlanId"`
}

func (Plan) TableName() string {
	return "plans"
}

type PlanPrice struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlanId          uuid.UUID `gorm:"type:uuid;not null;index"`
	Currency        string    `gorm:"type:varchar(3);not null"`
	Provider        string    `gorm:"type:varchar(50);not null"`
	BillingInterval string    `gorm:"type:varchar(10);not null"`
	ScopeType       string    `gorm:"type:varchar(20);not null;default:'global'"`
	ScopeValue      string    `gorm:"type:varchar(10);default:''"`
	PriceMinor      int64     `gorm:"not null"`
	ProviderPriceId string    `gorm:"type:varchar(255);not null;index"`
	IsActive        bool      `gorm:"default:true"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (PlanPrice) TableName() string {
	return "plan_prices"
}
