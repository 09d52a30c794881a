package implementation

import (
	"context"
	"errors"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/mapper"
	"ai-studyassistant-be/internal/model"
	"ai-studyassistant-be/internal/repository/contract"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func (r *SubscriptionRepositoryImpl) FindCurrentActive(ctx context.Context, userId uuid.UUID, at time.Time) (*entity.Subscription, error) {
	return r.FindOne(ctx,
		specification.ByUser{UserID: userId},
		specification.Filter("status", string(entity.SubscriptionStatusActive)),
		specification.PeriodCovering{At: at},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *SubscriptionRepositoryImpl) FindEffective(ctx context.Context, userId uuid.UUID, at time.Time) (*entity.Subscription, error) {
	return r.FindOne(ctx,
		specification.ByUser{UserID: userId},
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusActive),
			string(entity.SubscriptionStatusCancelled),
		}},
		specification.PeriodCovering{At: at},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *SubscriptionRepositoryImpl) FindLatestByUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	return r.FindOne(ctx,
		specification.ByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (r *SubscriptionRepositoryImpl) FindByStripeSubscriptionId(ctx context.Context, stripeSubscriptionId string) (*entity.Subscription, error) {
	return r.FindOne(ctx, specification.Filter("stripe_subscription_id", stripeSubscriptionId))
}

func (r *SubscriptionRepositoryImpl) FindByPaystackSubscriptionCode(ctx context.Context, code string) (*entity.Subscription, error) {
	return r.FindOne(ctx, specification.Filter("paystack_subscription_code", code))
}

func (r *SubscriptionRepositoryImpl) FindLatestActiveByPaystackCustomerCode(ctx context.Context, customerCode string) (*entity.Subscription, error) {
	return r.FindOne(ctx,
		specification.Filter("paystack_customer_code", customerCode),
		specification.Filter("status", string(entity.SubscriptionStatusActive)),
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}
