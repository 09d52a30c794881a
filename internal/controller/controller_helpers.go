package controller

import (
	"errors"

	"ai-studyassistant-be/internal/pkg/serverutils"
	"ai-studyassistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserId reads the user id the JWT middleware stored in Locals.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("user_id").(string)
	if !ok || raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return userId, nil
}

// statusForCode maps the service error taxonomy to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case "INVALID_CREDENTIALS":
		return fiber.StatusUnauthorized
	case "EMAIL_ALREADY_REGISTERED":
		return fiber.StatusConflict
	case "PLAN_NOT_FOUND", "NO_ACTIVE_SUBSCRIPTION", "MATERIAL_NOT_FOUND", "TRANSACTION_NOT_FOUND":
		return fiber.StatusNotFound
	case "MONTHLY_UPLOAD_LIMIT_EXCEEDED", "MONTHLY_ASSESSMENT_LIMIT_EXCEEDED",
		"FLASH_CARD_SET_LIMIT_EXCEEDED", "PAGES_PER_UPLOAD_LIMIT_EXCEEDED":
		return fiber.StatusForbidden
	case "INVALID_WEBHOOK_SIGNATURE", "FREE_TIER_NOT_CANCELLABLE", "FREE_TIER_NOT_PURCHASABLE":
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders DomainErrors with their code; anything else falls
// through to the app-level error handler as a 500.
func respondError(ctx *fiber.Ctx, err error) error {
	var domainErr *service.DomainError
	if errors.As(err, &domainErr) {
		status := statusForCode(domainErr.Code)
		return ctx.Status(status).JSON(serverutils.ErrorResponseWithCode(status, domainErr.Message, domainErr.Code))
	}
	return err
}
