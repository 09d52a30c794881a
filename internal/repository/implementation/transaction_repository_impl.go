package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/mapper"
	"ai-studyassistant-be/internal/model"
	"ai-studyassistant-be/internal/repository/contract"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var terminalStatuses = []string{
	string(entity.TransactionStatusSuccess),
	string(entity.TransactionStatusFailed),
	string(entity.TransactionStatusExpired),
	string(entity.TransactionStatusCanceled),
}

type TransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TransactionMapper
}

func NewTransactionRepository(db *gorm.DB) contract.TransactionRepository {
	return &TransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewTransactionMapper(),
	}
}

func (r *TransactionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, transaction *entity.Transaction) error {
	m := r.mapper.ToModel(transaction)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*transaction = *r.mapper.ToEntity(m)
	return nil
}

// Update enforces ledger immutability: rows already in a terminal status are
// never rewritten. The status guard lives in the WHERE clause so concurrent
// webhook deliveries cannot both win.
func (r *TransactionRepositoryImpl) Update(ctx context.Context, transaction *entity.Transaction) error {
	m := r.mapper.ToModel(transaction)
	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND status NOT IN ?", m.Id, terminalStatuses).
		Updates(map[string]interface{}{
			"subscription_id":  m.SubscriptionId,
			"status":           m.Status,
			"status_reason":    m.StatusReason,
			"status_message":   m.StatusMessage,
			"failure_code":     m.FailureCode,
			"channel":          m.Channel,
			"transaction_type": m.TransactionType,
			"paid_at":          m.PaidAt,
			"metadata":         m.Metadata,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("transaction %s is terminal or missing", m.Reference)
	}
	return nil
}

func (r *TransactionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error) {
	var m model.Transaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error) {
	var models []*model.Transaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Transaction, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *TransactionRepositoryImpl) LinkSubscription(ctx context.Context, txnId, subscriptionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ?", txnId).
		Update("subscription_id", subscriptionId).Error
}

func (r *TransactionRepositoryImpl) FindByReference(ctx context.Context, reference string) (*entity.Transaction, error) {
	return r.FindOne(ctx, specification.Filter("reference", reference))
}

func (r *TransactionRepositoryImpl) FindLatestUnlinkedSuccess(ctx context.Context, provider entity.PaymentProvider, userId *uuid.UUID) (*entity.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("provider = ? AND status = ? AND subscription_id IS NULL",
			string(provider), string(entity.TransactionStatusSuccess))
	if userId != nil {
		query = query.Where("user_id = ?", *userId)
	}
	var m model.Transaction
	if err := query.Order("created_at DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TransactionRepositoryImpl) ListByUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	return r.FindAll(ctx,
		specification.ByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
}

func (r *TransactionRepositoryImpl) ExpireStalePending(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			string(entity.TransactionStatusPending), now).
		Updates(map[string]interface{}{
			"status":        string(entity.TransactionStatusExpired),
			"status_reason": string(entity.ReasonTTLElapsed),
		})
	return result.RowsAffected, result.Error
}

func (r *TransactionRepositoryImpl) SupersedePending(ctx context.Context, userId uuid.UUID, provider entity.PaymentProvider) error {
	return r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("user_id = ? AND provider = ? AND status = ?",
			userId, string(provider), string(entity.TransactionStatusPending)).
		Updates(map[string]interface{}{
			"status":        string(entity.TransactionStatusExpired),
			"status_reason": string(entity.ReasonSuperseded),
		}).Error
}
