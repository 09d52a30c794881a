package controller

import (
	"errors"

	"ai-studyassistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// WebhookController terminates provider callbacks. These routes are
// unauthenticated; each service verifies the provider's signature before
// doing anything with the payload.
type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Stripe(ctx *fiber.Ctx) error
	Paystack(ctx *fiber.Ctx) error
}

type webhookController struct {
	stripe   service.IStripeWebhookService
	paystack service.IPaystackWebhookService
}

func NewWebhookController(stripe service.IStripeWebhookService, paystack service.IPaystackWebhookService) IWebhookController {
	return &webhookController{stripe: stripe, paystack: paystack}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payments")
	h.Post("/stripe/webhook", c.Stripe)
	h.Post("/paystack/webhook", c.Paystack)
}

func (c *webhookController) Stripe(ctx *fiber.Ctx) error {
	err := c.stripe.HandleWebhook(ctx.Context(), ctx.Body(), ctx.Get("Stripe-Signature"))
	return webhookResult(ctx, err)
}

func (c *webhookController) Paystack(ctx *fiber.Ctx) error {
	err := c.paystack.HandleWebhook(ctx.Context(), ctx.Body(), ctx.Get("x-paystack-signature"))
	return webhookResult(ctx, err)
}

// webhookResult maps handler outcomes to the status codes providers key
// retries off: 400 for a bad signature (no retry), 500 for transient
// failures (redeliver), 200 for everything handled or deliberately skipped.
func webhookResult(ctx *fiber.Ctx, err error) error {
	if err == nil {
		return ctx.SendStatus(fiber.StatusOK)
	}
	var domainErr *service.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == service.ErrInvalidSignature.Code {
		return ctx.SendStatus(fiber.StatusBadRequest)
	}
	return ctx.SendStatus(fiber.StatusInternalServerError)
}
