package implementation

import (
	"context"
	"errors"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/mapper"
	"ai-studyassistant-be/internal/model"
	"ai-studyassistant-be/internal/repository/contract"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlanMapper
}

func NewPlanRepository(db *gorm.DB) contract.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mapper.NewPlanMapper(),
	}
}

func (r *PlanRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PlanRepositoryImpl) CreatePlan(ctx context.Context, plan *entity.Plan) error {
	m := r.mapper.ToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.ToEntity(m)
	return nil
}

func (r *PlanRepositoryImpl) UpdatePlan(ctx context.Context, plan *entity.Plan) error {
	m := r.mapper.ToModel(plan)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.ToEntity(m)
	return nil
}

func (r *PlanRepositoryImpl) FindOnePlan(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error) {
	var m model.Plan
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	query = query.Preload("Prices")
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PlanRepositoryImpl) FindPlanById(ctx context.Context, id uuid.UUID) (*entity.Plan, error) {
	return r.FindOnePlan(ctx, specification.ByID{ID: id})
}

func (r *PlanRepositoryImpl) FindPlanBySku(ctx context.Context, sku string) (*entity.Plan, error) {
	return r.FindOnePlan(ctx, specification.Filter("sku", sku))
}

func (r *PlanRepositoryImpl) FindAllPlans(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error) {
	var models []*model.Plan
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	query = query.Preload("Prices")
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Plan, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PlanRepositoryImpl) CreatePrice(ctx context.Context, price *entity.PlanPrice) error {
	m := r.mapper.PriceToModel(price)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*price = *r.mapper.PriceToEntity(m)
	return nil
}

func (r *PlanRepositoryImpl) FindActivePrices(ctx context.Context, planId uuid.UUID, provider entity.PaymentProvider, currency, interval string) ([]*entity.PlanPrice, error) {
	var models []*model.PlanPrice
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND provider = ? AND currency = ? AND billing_interval = ? AND is_active = ?",
			planId, string(provider), currency, interval, true).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	prices := make([]*entity.PlanPrice, len(models))
	for i, m := range models {
		prices[i] = r.mapper.PriceToEntity(m)
	}
	return prices, nil
}

func (r *PlanRepositoryImpl) FindPriceByProviderPriceId(ctx context.Context, provider entity.PaymentProvider, providerPriceId string) (*entity.PlanPrice, error) {
	var m model.PlanPrice
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_price_id = ? AND is_active = ?", string(provider), providerPriceId, true).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PriceToEntity(&m), nil
}

func (r *PlanRepositoryImpl) FindPricesForPlan(ctx context.Context, planId uuid.UUID) ([]*entity.PlanPrice, error) {
	var models []*model.PlanPrice
	if err := r.db.WithContext(ctx).Where("plan_id = ?", planId).Find(&models).Error; err != nil {
		return nil, err
	}
	prices := make([]*entity.PlanPrice, len(models))
	for i, m := range models {
		prices[i] = r.mapper.PriceToEntity(m)
	}
	return prices, nil
}
