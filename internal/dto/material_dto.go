package dto

import (
	"time"

	"github.com/google/uuid"
)

type MaterialResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type MaterialListResponse struct {
	Materials []MaterialResponse `json:"materials"`
}
