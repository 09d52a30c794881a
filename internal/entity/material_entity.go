package entity

import (
	"time"

	"github.com/google/uuid"
)

type MaterialStatus string

const (
	MaterialStatusIdle       MaterialStatus = "idle"
	MaterialStatusProcessing MaterialStatus = "processing"
	MaterialStatusReady      MaterialStatus = "ready"
	MaterialStatusFailed     MaterialStatus = "failed"
)

// StudyMaterial is an uploaded document. Rows are created in status idle;
// the content pipeline that advances them runs elsewhere.
type StudyMaterial struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	FileName    string
	ContentType string
	SizeBytes   int64
	StorageKey  string
	PageCount   int
	Status      MaterialStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
