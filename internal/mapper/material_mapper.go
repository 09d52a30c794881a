package mapper

import (
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/model"
)

type MaterialMapper struct{}

func NewMaterialMapper() *MaterialMapper {
	return &MaterialMapper{}
}

func (m *MaterialMapper) ToEntity(s *model.StudyMaterial) *entity.StudyMaterial {
	if s == nil {
		return nil
	}
	return &entity.StudyMaterial{
		Id:          s.Id,
		UserId:      s.UserId,
		Title:       s.Title,
		FileName:    s.FileName,
		ContentType: s.ContentType,
		SizeBytes:   s.SizeBytes,
		StorageKey:  s.StorageKey,
		PageCount:   s.PageCount,
		Status:      entity.MaterialStatus(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *MaterialMapper) ToModel(s *entity.StudyMaterial) *model.StudyMaterial {
	if s == nil {
		return nil
	}
	return &model.StudyMaterial{
		Id:          s.Id,
		UserId:      s.UserId,
		Title:       s.Title,
		FileName:    s.FileName,
		ContentType: s.ContentType,
		SizeBytes:   s.SizeBytes,
		StorageKey:  s.StorageKey,
		PageCount:   s.PageCount,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
