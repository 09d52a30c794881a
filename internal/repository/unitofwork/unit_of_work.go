package unitofwork

import (
	"context"

	"ai-studyassistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PlanRepository() contract.PlanRepository
	SubscriptionRepository() contract.SubscriptionRepository
	TransactionRepository() contract.TransactionRepository
	UsageRepository() contract.UsageRepository
	MaterialRepository() contract.MaterialRepository
}
