package controller

import (
	"ai-studyassistant-be/internal/pkg/serverutils"
	"ai-studyassistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPlanController interface {
	RegisterRoutes(r fiber.Router)
	GetPlans(ctx *fiber.Ctx) error
}

type planController struct {
	planService service.IPlanService
}

func NewPlanController(planService service.IPlanService) IPlanController {
	return &planController{
		planService: planService,
	}
}

func (c *planController) RegisterRoutes(r fiber.Router) {
	// Public: the pricing page renders before login.
	r.Get("/plans", c.GetPlans)
}

func (c *planController) GetPlans(ctx *fiber.Ctx) error {
	plans, err := c.planService.GetPlans(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}
