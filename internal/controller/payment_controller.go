package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/pkg/serverutils"
	"tutorlink-be/internal/service"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	CreateCheckout(ctx *fiber.Ctx) error
	HandleNotification(ctx *fiber.Ctx) error
	VerifyPayment(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
}

func NewPaymentController(service service.IPaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payments")
	// Unauthenticated: Midtrans calls this directly, the signature check
	// inside the service is the auth.
	h.Post("/notification", c.HandleNotification)

	h.Post("/checkout", serverutils.JwtMiddleware, c.CreateCheckout)
	h.Get("/:sessionId/verify", serverutils.JwtMiddleware, c.VerifyPayment)
}

func (c *paymentController) CreateCheckout(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.CreateCheckout(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout created", res))
}

func (c *paymentController) HandleNotification(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid notification payload")
	}

	if err := c.service.HandleWebhook(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Notification processed", nil))
}

func (c *paymentController) VerifyPayment(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}
	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.service.VerifyPayment(ctx.Context(), sessionId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment verified", res))
}
