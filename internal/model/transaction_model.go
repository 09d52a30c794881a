package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Transaction struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference       string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserId          uuid.UUID      `gorm:"type:uuid;not null;index"`
	PlanId          *uuid.UUID     `gorm:"type:uuid;index"`
	SubscriptionId  *uuid.UUID     `gorm:"type:uuid;index"`
	Provider        string         `gorm:"type:varchar(50);not null;index"`
	AmountMinor     int64          `gorm:"not null"`
	Currency        string         `gorm:"type:varchar(3);not null"`
	Status          string         `gorm:"type:varchar(50);not null;index"`
	StatusReason    string         `gorm:"type:varchar(50);not null"`
	StatusMessage   *string        `gorm:"type:text"`
	FailureCode     *string        `gorm:"type:varchar(100)"`
	Channel         *string        `gorm:"type:varchar(50)"`
	TransactionType string         `gorm:"type:varchar(20);not null;default:'initial'"`
	ExpiresAt       *time.Time     `gorm:"index"`
	PaidAt          *time.Time     `gorm:""`
	Metadata        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
