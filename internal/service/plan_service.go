// FILE: internal/service/plan_service.go
package service

import (
	"context"

	"ai-studyassistant-be/internal/dto"
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/repository/specification"
	"ai-studyassistant-be/internal/repository/unitofwork"
)

type IPlanService interface {
	// GetPlans returns the active catalog with prices, for the pricing page.
	GetPlans(ctx context.Context) ([]*dto.PlanResponse, error)
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory) IPlanService {
	return &planService{
		uowFactory: uowFactory,
	}
}

func (s *planService) GetPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plans, err := uow.PlanRepository().FindAllPlans(ctx,
		specification.ActiveOnly{},
		specification.OrderBy{Field: "sort_order", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		prices, err := uow.PlanRepository().FindPricesForPlan(ctx, plan.Id)
		if err != nil {
			return nil, err
		}
		priceDTOs := make([]dto.PlanPriceDTO, 0, len(prices))
		for _, price := range prices {
			if !price.IsActive {
				continue
			}
			priceDTOs = append(priceDTOs, dto.PlanPriceDTO{
				Currency:        price.Currency,
				Provider:        string(price.Provider),
				BillingInterval: string(price.BillingInterval),
				PriceMinor:      price.PriceMinor,
			})
		}
		result = append(result, toPlanResponse(plan, priceDTOs))
	}
	return result, nil
}

func toPlanResponse(plan *entity.Plan, prices []dto.PlanPriceDTO) *dto.PlanResponse {
	return &dto.PlanResponse{
		Id:                     plan.Id,
		Sku:                    plan.Sku,
		Name:                   plan.Name,
		MonthlyUploadLimit:     plan.MonthlyUploadLimit,
		MonthlyAssessmentLimit: plan.MonthlyAssessmentLimit,
		QuestionsPerAssessment: plan.QuestionsPerAssessment,
		FlashCardSetLimit:      plan.FlashCardSetLimit,
		CardsPerDeckLimit:      plan.CardsPerDeckLimit,
		PagesPerUploadLimit:    plan.PagesPerUploadLimit,
		SummaryDetail:          string(plan.SummaryDetail),
		AIFeedbackLevel:        string(plan.AIFeedbackLevel),
		Prices:                 prices,
	}
}
