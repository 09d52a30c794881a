package contract

import (
	"context"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *entity.StudyMaterial) error
	Update(ctx context.Context, material *entity.StudyMaterial) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudyMaterial, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.StudyMaterial, error)
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.StudyMaterial, error)
}
