// FILE: internal/service/usage_service.go
package service

import (
	"context"
	"errors"
	"time"

	"ai-studyassistant-be/internal/dto"
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/repository/memory"
	"ai-studyassistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IUsageService enforces the per-plan monthly quotas. Consume methods check
// the counter against the user's effective plan and increment atomically;
// hitting a limit returns the matching DomainError.
type IUsageService interface {
	Status(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error)
	ConsumeUpload(ctx context.Context, userId uuid.UUID, pageCount int) error
	ConsumeAssessment(ctx context.Context, userId uuid.UUID) error
	ConsumeFlashCardSet(ctx context.Context, userId uuid.UUID) error
}

type usageService struct {
	uowFactory unitofwork.RepositoryFactory
	planCache  *memory.PlanCache
}

func NewUsageService(uowFactory unitofwork.RepositoryFactory, planCache *memory.PlanCache) IUsageService {
	return &usageService{
		uowFactory: uowFactory,
		planCache:  planCache,
	}
}

// effectivePlan resolves the user's entitlement through the denormalized
// plan pointer, via cache when warm.
func (s *usageService) effectivePlan(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Plan, error) {
	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	if plan, ok := s.planCache.Get(user.PlanId); ok {
		return plan, nil
	}
	plan, err := uow.PlanRepository().FindPlanById(ctx, user.PlanId)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errors.New("user plan is not seeded")
	}
	s.planCache.Save(plan)
	return plan, nil
}

// currentUsage returns the month's counter row, materializing a fresh one
// when this is the first quota-consuming action of the period.
func (s *usageService) currentUsage(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, now time.Time) (*entity.UsageTracking, bool, error) {
	periodStart := entity.UsagePeriodStart(now)
	usage, err := uow.UsageRepository().FindForPeriod(ctx, userId, periodStart)
	if err != nil {
		return nil, false, err
	}
	if usage != nil {
		return usage, false, nil
	}
	return &entity.UsageTracking{
		Id:          uuid.New(),
		UserId:      userId,
		PeriodStart: periodStart,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, true, nil
}

func (s *usageService) Status(ctx context.Context, userId uuid.UUID) (*dto.UsageStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now().UTC()

	plan, err := s.effectivePlan(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	usage, _, err := s.currentUsage(ctx, uow, userId, now)
	if err != nil {
		return nil, err
	}

	return &dto.UsageStatusResponse{
		Plan: dto.PlanInfo{
			Id:   plan.Id,
			Name: plan.Name,
			Sku:  plan.Sku,
		},
		PeriodStart:   usage.PeriodStart,
		Uploads:       usageLimit(usage.Uploads, plan.MonthlyUploadLimit),
		Assessments:   usageLimit(usage.Assessments, plan.MonthlyAssessmentLimit),
		FlashCardSets: usageLimit(usage.FlashCardSets, plan.FlashCardSetLimit),
	}, nil
}

func usageLimit(used, limit int) dto.UsageLimit {
	return dto.UsageLimit{
		Used:   used,
		Limit:  limit,
		CanUse: entity.Unlimited(limit) || used < limit,
	}
}

func (s *usageService) ConsumeUpload(ctx context.Context, userId uuid.UUID, pageCount int) error {
	return s.consume(ctx, userId, func(plan *entity.Plan, usage *entity.UsageTracking) error {
		if !entity.Unlimited(plan.PagesPerUploadLimit) && pageCount > plan.PagesPerUploadLimit {
			return ErrPagesPerUpload
		}
		if !entity.Unlimited(plan.MonthlyUploadLimit) && usage.Uploads >= plan.MonthlyUploadLimit {
			return ErrUploadLimit
		}
		usage.Uploads++
		return nil
	})
}

func (s *usageService) ConsumeAssessment(ctx context.Context, userId uuid.UUID) error {
	return s.consume(ctx, userId, func(plan *entity.Plan, usage *entity.UsageTracking) error {
		if !entity.Unlimited(plan.MonthlyAssessmentLimit) && usage.Assessments >= plan.MonthlyAssessmentLimit {
			return ErrAssessmentLimit
		}
		usage.Assessments++
		return nil
	})
}

func (s *usageService) ConsumeFlashCardSet(ctx context.Context, userId uuid.UUID) error {
	return s.consume(ctx, userId, func(plan *entity.Plan, usage *entity.UsageTracking) error {
		if !entity.Unlimited(plan.FlashCardSetLimit) && usage.FlashCardSets >= plan.FlashCardSetLimit {
			return ErrFlashCardSetLimit
		}
		usage.FlashCardSets++
		return nil
	})
}

// consume runs the check-and-increment inside one transaction so concurrent
// requests cannot both pass a nearly-exhausted limit.
func (s *usageService) consume(ctx context.Context, userId uuid.UUID, apply func(*entity.Plan, *entity.UsageTracking) error) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now().UTC()
	plan, err := s.effectivePlan(ctx, uow, userId)
	if err != nil {
		return err
	}
	usage, isNew, err := s.currentUsage(ctx, uow, userId, now)
	if err != nil {
		return err
	}

	if err := apply(plan, usage); err != nil {
		return err
	}

	usage.UpdatedAt = now
	if isNew {
		if err := uow.UsageRepository().Create(ctx, usage); err != nil {
			return err
		}
	} else {
		if err := uow.UsageRepository().Update(ctx, usage); err != nil {
			return err
		}
	}
	return uow.Commit()
}
