package contract

import (
	"context"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PlanRepository interface {
	CreatePlan(ctx context.Context, plan *entity.Plan) error
	UpdatePlan(ctx context.Context, plan *entity.Plan) error
	FindOnePlan(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error)
	FindPlanById(ctx context.Context, id uuid.UUID) (*entity.Plan, error)
	FindPlanBySku(ctx context.Context, sku string) (*entity.Plan, error)
	FindAllPlans(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error)

	CreatePrice(ctx context.Context, price *entity.PlanPrice) error
	// FindActivePrices returns all active rows for a plan under the given
	// provider/currency/interval; scope preference is applied by the caller.
	FindActivePrices(ctx context.Context, planId uuid.UUID, provider entity.PaymentProvider, currency, interval string) ([]*entity.PlanPrice, error)
	FindPriceByProviderPriceId(ctx context.Context, provider entity.PaymentProvider, providerPriceId string) (*entity.PlanPrice, error)
	FindPricesForPlan(ctx context.Context, planId uuid.UUID) ([]*entity.PlanPrice, error)
}
