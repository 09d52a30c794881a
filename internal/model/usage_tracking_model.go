package model

import (
	"time"

	"github.com/google/uuid"
)

type UsageTracking struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_period"`
	PeriodStart    time.Time `gorm:"not null;uniqueIndex:idx_usage_user_period"`
	Uploads        int       `gorm:"default:0"`
	Assessments    int       `gorm:"default:0"`
	QuestionsAsked int       `gorm:"default:0"`
	FlashCardSets  int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (UsageTracking) TableName() string {
	return "usage_tracking"
}
