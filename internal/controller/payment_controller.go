package controller

import (
	"strconv"

	"ai-studyassistant-be/internal/dto"
	"ai-studyassistant-be/internal/pkg/serverutils"
	"ai-studyassistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Checkout(ctx *fiber.Ctx) error
	VerifyRedirect(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	CancelSubscription(ctx *fiber.Ctx) error
	Portal(ctx *fiber.Ctx) error
	ListTransactions(ctx *fiber.Ctx) error
	InvoiceLinks(ctx *fiber.Ctx) error
}

type paymentController struct {
	checkout      service.ICheckoutService
	subscriptions service.ISubscriptionService
	transactions  service.ITransactionService
}

func NewPaymentController(
	checkout service.ICheckoutService,
	subscriptions service.ISubscriptionService,
	transactions service.ITransactionService,
) IPaymentController {
	return &paymentController{
		checkout:      checkout,
		subscriptions: subscriptions,
		transactions:  transactions,
	}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/billing", serverutils.JwtMiddleware)
	h.Post("/checkout", c.Checkout)
	h.Get("/checkout/verify", c.VerifyRedirect)
	h.Get("/subscription", c.GetStatus)
	h.Post("/subscription/cancel", c.CancelSubscription)
	h.Get("/portal", c.Portal)
	h.Get("/transactions", c.ListTransactions)
	h.Get("/transactions/:id/invoice", c.InvoiceLinks)
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.checkout.CreateCheckout(ctx.Context(), userId, &req)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout initialized", res))
}

func (c *paymentController) VerifyRedirect(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	reference := ctx.Query("reference")
	if reference == "" {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "reference is required"))
	}

	res, err := c.checkout.VerifyRedirect(ctx.Context(), userId, reference)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout verified", res))
}

func (c *paymentController) GetStatus(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.subscriptions.Status(ctx.Context(), userId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", res))
}

func (c *paymentController) CancelSubscription(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CancelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.subscriptions.Cancel(ctx.Context(), userId, &req)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription cancelled", res))
}

func (c *paymentController) Portal(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.subscriptions.PortalURL(ctx.Context(), userId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing portal", res))
}

func (c *paymentController) ListTransactions(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	includeInactive, _ := strconv.ParseBool(ctx.Query("include_inactive", "false"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	offset, _ := strconv.Atoi(ctx.Query("offset", "0"))

	res, err := c.transactions.List(ctx.Context(), userId, includeInactive, limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Transactions", res))
}

func (c *paymentController) InvoiceLinks(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	txnId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid transaction id"))
	}

	res, err := c.transactions.InvoiceLinks(ctx.Context(), userId, txnId)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Invoice link", res))
}
