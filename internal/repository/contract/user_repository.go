package contract

import (
	"context"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdatePlan repoints the denormalized entitlement pointer.
	UpdatePlan(ctx context.Context, userId uuid.UUID, planId uuid.UUID) error
}
