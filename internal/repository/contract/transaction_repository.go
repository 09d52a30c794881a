package contract

import (
	"context"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *entity.Transaction) error
	// Update refuses to move a row out of a terminal status.
	Update(ctx context.Context, transaction *entity.Transaction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error)
	FindByReference(ctx context.Context, reference string) (*entity.Transaction, error)

	// LinkSubscription attaches a subscription to a settled row without
	// touching its status, so reconciliation can link after the fact.
	LinkSubscription(ctx context.Context, txnId, subscriptionId uuid.UUID) error

	// FindLatestUnlinkedSuccess returns the provider's newest successful
	// transaction not yet linked to a subscription (Paystack out-of-order
	// reconciliation).
	FindLatestUnlinkedSuccess(ctx context.Context, provider entity.PaymentProvider, userId *uuid.UUID) (*entity.Transaction, error)
	ListByUser(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Transaction, error)

	// ExpireStalePending bulk-transitions pending rows whose expires_at has
	// passed to expired/ttl_elapsed. Returns the number of rows moved.
	ExpireStalePending(ctx context.Context, now time.Time) (int64, error)
	// SupersedePending marks the user's open pending rows for a provider as
	// expired/superseded before a new checkout is created.
	SupersedePending(ctx context.Context, userId uuid.UUID, provider entity.PaymentProvider) error
}
