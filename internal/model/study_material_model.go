package model

import (
	"time"

	"github.com/google/uuid"
)

type StudyMaterial struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	SizeBytes   int64     `gorm:"not null"`
	StorageKey  string    `gorm:"type:varchar(512);not null"`
	PageCount   int       `gorm:"default:0"`
	Status      string    `gorm:"type:varchar(50);not null;default:'idle'"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (StudyMaterial) TableName() string {
	return "study_materials"
}
