package contract

import (
	"context"
	"time"

	"ai-studyassistant-be/internal/entity"

	"github.com/google/uuid"
)

type UsageRepository interface {
	Create(ctx context.Context, usage *entity.UsageTracking) error
	Update(ctx context.Context, usage *entity.UsageTracking) error
	FindForPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time) (*entity.UsageTracking, error)
}
