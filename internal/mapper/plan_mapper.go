package mapper

import (
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/model"
)

type PlanMapper struct{}

func NewPlanMapper() *PlanMapper {
	return &PlanMapper{}
}

func (m *PlanMapper) ToEntity(p *model.Plan) *entity.Plan {
	if p == nil {
		return nil
	}
	return &entity.Plan{
		Id:                     p.Id,
		Sku:                    p.Sku,
		Name:                   p.Name,
		MonthlyUploadLimit:     p.MonthlyUploadLimit,
		MonthlyAssessmentLimit: p.MonthlyAssessmentLimit,
		QuestionsPerAssessment: p.QuestionsPerAssessment,
		FlashCardSetLimit:      p.FlashCardSetLimit,
		CardsPerDeckLimit:      p.CardsPerDeckLimit,
		PagesPerUploadLimit:    p.PagesPerUploadLimit,
		SummaryDetail:          entity.SummaryDetail(p.SummaryDetail),
		AIFeedbackLevel:        entity.AIFeedbackLevel(p.AIFeedbackLevel),
		IsActive:               p.IsActive,
		SortOrder:              p.SortOrder,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
		Prices:                 m.mapPricesToEntities(p.Prices),
	}
}

func (m *PlanMapper) ToModel(p *entity.Plan) *model.Plan {
	if p == nil {
		return nil
	}
	return &model.Plan{
		Id:                     p.Id,
		Sku:                    p.Sku,
		Name:                   p.Name,
		MonthlyUploadLimit:     p.MonthlyUploadLimit,
		MonthlyAssessmentLimit: p.MonthlyAssessmentLimit,
		QuestionsPerAssessment: p.QuestionsPerAssessment,
		FlashCardSetLimit:      p.FlashCardSetLimit,
		CardsPerDeckLimit:      p.CardsPerDeckLimit,
		PagesPerUploadLimit:    p.PagesPerUploadLimit,
		SummaryDetail:          string(p.SummaryDetail),
		AIFeedbackLevel:        string(p.AIFeedbackLevel),
		IsActive:               p.IsActive,
		SortOrder:              p.SortOrder,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
		Prices:                 m.mapPricesToModels(p.Prices),
	}
}

func (m *PlanMapper) PriceToEntity(p *model.PlanPrice) *entity.PlanPrice {
	if p == nil {
		return nil
	}
	return &entity.PlanPrice{
		Id:              p.Id,
		PlanId:          p.PlanId,
		Currency:        p.Currency,
		Provider:        entity.PaymentProvider(p.Provider),
		BillingInterval: entity.BillingInterval(p.BillingInterval),
		ScopeType:       entity.PriceScopeType(p.ScopeType),
		ScopeValue:      p.ScopeValue,
		PriceMinor:      p.PriceMinor,
		ProviderPriceId: p.ProviderPriceId,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (m *PlanMapper) PriceToModel(p *entity.PlanPrice) *model.PlanPrice {
	if p == nil {
		return nil
	}
	return &model.PlanPrice{
		Id:              p.Id,
		PlanId:          p.PlanId,
		Currency:        p.Currency,
		Provider:        string(p.Provider),
		BillingInterval: string(p.BillingInterval),
		ScopeType:       string(p.ScopeType),
		ScopeValue:      p.ScopeValue,
		PriceMinor:      p.PriceMinor,
		ProviderPriceId: p.ProviderPriceId,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (m *PlanMapper) mapPricesToEntities(models []*model.PlanPrice) []entity.PlanPrice {
	if models == nil {
		return nil
	}
	entities := make([]entity.PlanPrice, len(models))
	for i, mdl := range models {
		if val := m.PriceToEntity(mdl); val != nil {
			entities[i] = *val
		}
	}
	return entities
}

func (m *PlanMapper) mapPricesToModels(entities []entity.PlanPrice) []*model.PlanPrice {
	if entities == nil {
		return nil
	}
	models := make([]*model.PlanPrice, len(entities))
	for i, ent := range entities {
		models[i] = m.PriceToModel(&ent)
	}
	return models
}
