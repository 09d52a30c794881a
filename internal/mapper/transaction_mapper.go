package mapper

import (
	"encoding/json"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/model"

	"gorm.io/datatypes"
)

type TransactionMapper struct{}

func NewTransactionMapper() *TransactionMapper {
	return &TransactionMapper{}
}

func (m *TransactionMapper) ToEntity(t *model.Transaction) *entity.Transaction {
	if t == nil {
		return nil
	}
	var metadata map[string]interface{}
	if len(t.Metadata) > 0 {
		// Corrupt metadata is non-fatal; the ledger fields stand on their own.
		_ = json.Unmarshal(t.Metadata, &metadata)
	}
	return &entity.Transaction{
		Id:              t.Id,
		Reference:       t.Reference,
		UserId:          t.UserId,
		PlanId:          t.PlanId,
		SubscriptionId:  t.SubscriptionId,
		Provider:        entity.PaymentProvider(t.Provider),
		AmountMinor:     t.AmountMinor,
		Currency:        t.Currency,
		Status:          entity.TransactionStatus(t.Status),
		StatusReason:    entity.TransactionStatusReason(t.StatusReason),
		StatusMessage:   t.StatusMessage,
		FailureCode:     t.FailureCode,
		Channel:         t.Channel,
		TransactionType: entity.TransactionType(t.TransactionType),
		ExpiresAt:       t.ExpiresAt,
		PaidAt:          t.PaidAt,
		Metadata:        metadata,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (m *TransactionMapper) ToModel(t *entity.Transaction) *model.Transaction {
	if t == nil {
		return nil
	}
	var metadata datatypes.JSON
	if t.Metadata != nil {
		if raw, err := json.Marshal(t.Metadata); err == nil {
			metadata = raw
		}
	}
	return &model.Transaction{
		Id:              t.Id,
		Reference:       t.Reference,
		UserId:          t.UserId,
		PlanId:          t.PlanId,
		SubscriptionId:  t.SubscriptionId,
		Provider:        string(t.Provider),
		AmountMinor:     t.AmountMinor,
		Currency:        t.Currency,
		Status:          string(t.Status),
		StatusReason:    string(t.StatusReason),
		StatusMessage:   t.StatusMessage,
		FailureCode:     t.FailureCode,
		Channel:         t.Channel,
		TransactionType: string(t.TransactionType),
		ExpiresAt:       t.ExpiresAt,
		PaidAt:          t.PaidAt,
		Metadata:        metadata,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
