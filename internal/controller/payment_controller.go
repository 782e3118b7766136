package controller

import (
	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const stripeSignatureHeader = "Stripe-Signature"

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	PurchaseCredits(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IBillingService
	guard   fiber.Handler
}

func NewPaymentController(service service.IBillingService, guard fiber.Handler) IPaymentController {
	return &paymentController{service: service, guard: guard}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	r.Post("/purchase-credits", c.guard, c.PurchaseCredits)
	r.Post("/stripe-webhook", c.Webhook)
}

func (c *paymentController) PurchaseCredits(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.PurchaseCreditsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("Invalid request body")
	}

	res, err := c.service.CreateCheckout(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout session created", res))
}

// Webhook needs the raw body for signature verification and answers in the
// plain shape Stripe expects.
func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	payload := append([]byte(nil), ctx.Body()...)
	if err := c.service.HandleWebhook(ctx.UserContext(), payload, ctx.Get(stripeSignatureHeader)); err != nil {
		if appErr, ok := serverutils.AsAppError(err); ok && appErr.Code == fiber.StatusBadRequest {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": appErr.Message})
		}
		return err
	}
	return ctx.JSON(dto.WebhookAckResponse{Received: true})
}
