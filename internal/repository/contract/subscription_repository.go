package contract

import (
	"context"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	Update(ctx context.Context, subscription *entity.Subscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.Subscription, error)

	// FindCurrentActive returns the user's status=active subscription whose
	// period covers "at", or nil.
	FindCurrentActive(ctx context.Context, userId uuid.UUID, at time.Time) (*entity.Subscription, error)
	// FindEffective additionally admits cancelled-but-not-yet-lapsed rows;
	// this is the access-control view.
	FindEffective(ctx context.Context, userId uuid.UUID, at time.Time) (*entity.Subscription, error)
	// FindLatestByUser returns the user's newest subscription regardless of
	// status or window, for lapsed-row handling on read.
	FindLatestByUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)

	FindByStripeSubscriptionId(ctx context.Context, stripeSubscriptionId string) (*entity.Subscription, error)
	FindByPaystackSubscriptionCode(ctx context.Context, code string) (*entity.Subscription, error)
	// FindLatestActiveByPaystackCustomerCode locates the subscription a
	// customer-scoped Paystack event (charge.failed) refers to.
	FindLatestActiveByPaystackCustomerCode(ctx context.Context, customerCode string) (*entity.Subscription, error)
}
