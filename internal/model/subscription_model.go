package model

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	Id                   uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId               uuid.UUID  `gorm:"type:uuid;not null;index"`
	PlanId               uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status               string     `gorm:"type:varchar(50);not null;index"`
	PeriodStart          time.Time  `gorm:"not null"`
	PeriodEnd            time.Time  `gorm:"not null;index"`
	BillingInterval      string     `gorm:"type:varchar(10);not null"`
	AutoRenew            bool       `gorm:"default:true"`
	CanceledAt           *time.Time `gorm:""`
	IsInRetryPeriod      bool       `gorm:"default:false"`
	RetryAttemptCount    int        `gorm:"default:0"`
	LastPaymentFailureAt *time.Time `gorm:""`

	Provider                 string  `gorm:"type:varchar(50);default:''"`
	StripeSubscriptionId     *string `gorm:"type:varchar(255);index"`
	StripeCustomerId         *string `gorm:"type:varchar(255);index"`
	PaystackSubscriptionCode *string `gorm:"type:varchar(255);index"`
	PaystackCustomerCode     *string `gorm:"type:varchar(255);index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
