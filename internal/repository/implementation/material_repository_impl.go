package implementation

import (
	"context"
	"errors"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/mapper"
	"ai-studyassistant-be/internal/model"
	"ai-studyassistant-be/internal/repository/contract"
	"ai-studyassistant-be/internal/repository/scope"
	"ai-studyassistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MaterialMapper
}

func NewMaterialRepository(db *gorm.DB) contract.MaterialRepository {
	return &MaterialRepositoryImpl{
		db:     db,
		mapper: mapper.NewMaterialMapper(),
	}
}

func (r *MaterialRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MaterialRepositoryImpl) Create(ctx context.Context, material *entity.StudyMaterial) error {
	m := r.mapper.ToModel(material)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*material = *r.mapper.ToEntity(m)
	return nil
}

func (r *MaterialRepositoryImpl) Update(ctx context.Context, material *entity.StudyMaterial) error {
	m := r.mapper.ToModel(material)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*material = *r.mapper.ToEntity(m)
	return nil
}

func (r *MaterialRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.StudyMaterial{}).Error
}

func (r *MaterialRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.StudyMaterial, error) {
	return r.FindOne(ctx, specification.ByID{ID: id})
}

func (r *MaterialRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StudyMaterial, error) {
	var m model.StudyMaterial
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MaterialRepositoryImpl) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.StudyMaterial, error) {
	var models []*model.StudyMaterial
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Scopes(scope.OrderByCreatedDesc).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.StudyMaterial, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
