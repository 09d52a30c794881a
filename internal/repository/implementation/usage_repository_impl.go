package implementation

import (
	"context"
	"errors"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/mapper"
	"ai-studyassistant-be/internal/model"
	"ai-studyassistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UsageMapper
}

func NewUsageRepository(db *gorm.DB) contract.UsageRepository {
	return &UsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewUsageMapper(),
	}
}

func (r *UsageRepositoryImpl) Create(ctx context.Context, usage *entity.UsageTracking) error {
	m := r.mapper.ToModel(usage)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*usage = *r.mapper.ToEntity(m)
	return nil
}

func (r *UsageRepositoryImpl) Update(ctx context.Context, usage *entity.UsageTracking) error {
	m := r.mapper.ToModel(usage)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*usage = *r.mapper.ToEntity(m)
	return nil
}

func (r *UsageRepositoryImpl) FindForPeriod(ctx context.Context, userId uuid.UUID, periodStart time.Time) (*entity.UsageTracking, error) {
	var m model.UsageTracking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_start = ?", userId, periodStart).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
