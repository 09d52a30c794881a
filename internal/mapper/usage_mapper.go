package mapper

import (
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/model"
)

type UsageMapper struct{}

func NewUsageMapper() *UsageMapper {
	return &UsageMapper{}
}

func (m *UsageMapper) ToEntity(u *model.UsageTracking) *entity.UsageTracking {
	if u == nil {
		return nil
	}
	return &entity.UsageTracking{
		Id:             u.Id,
		UserId:         u.UserId,
		PeriodStart:    u.PeriodStart,
		Uploads:        u.Uploads,
		Assessments:    u.Assessments,
		QuestionsAsked: u.QuestionsAsked,
		FlashCardSets:  u.FlashCardSets,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (m *UsageMapper) ToModel(u *entity.UsageTracking) *model.UsageTracking {
	if u == nil {
		return nil
	}
	return &model.UsageTracking{
		Id:             u.Id,
		UserId:         u.UserId,
		PeriodStart:    u.PeriodStart,
		Uploads:        u.Uploads,
		Assessments:    u.Assessments,
		QuestionsAsked: u.QuestionsAsked,
		FlashCardSets:  u.FlashCardSets,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
