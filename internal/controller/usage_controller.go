package controller

import (
	"ai-studyassistant-be/internal/pkg/serverutils"
	"ai-studyassistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUsageController interface {
	RegisterRoutes(r fiber.Router)
	GetStatus(ctx *fiber.Ctx) error
}

type usageController struct {
	usage service.IUsageService
}

func NewUsageController(usage service.IUsageService) IUsageController {
	return &usageController{usage: usage}
}

func (c *usageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/usage", serverutils.JwtMiddleware)
	h.Get("/", c.GetStatus)
}

func (c *usageController) GetStatus(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.usage.Status(ctx.Context(), userId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage status", res))
}
