// DTOs for monthly quota status checking
package dto

import (
	"time"

	"github.com/google/uuid"
)

// UsageLimit represents a single limit status
type UsageLimit struct {
	Used   int  `json:"used"`
	Limit  int  `json:"limit"` // -1 = unlimited
	CanUse bool `json:"can_use"`
}

// UsageStatusResponse is returned by GET /api/usage
type UsageStatusResponse struct {
	Plan          PlanInfo   `json:"plan"`
	PeriodStart   time.Time  `json:"period_start"`
	Uploads       UsageLimit `json:"uploads"`
	Assessments   UsageLimit `json:"assessments"`
	FlashCardSets UsageLimit `json:"flash_card_sets"`
}

type PlanInfo struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Sku  string    `json:"sku"`
}
