package controller

import (
	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICreditController interface {
	RegisterRoutes(r fiber.Router)
	GetBalance(ctx *fiber.Ctx) error
	GetEligibility(ctx *fiber.Ctx) error
	ListTransactions(ctx *fiber.Ctx) error
	SetMode(ctx *fiber.Ctx) error
}

type creditController struct {
	service service.ICreditService
	guard   fiber.Handler
}

func NewCreditController(service service.ICreditService, guard fiber.Handler) ICreditController {
	return &creditController{service: service, guard: guard}
}

func (c *creditController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/credits", c.guard)
	h.Get("", c.GetBalance)
	h.Get("/eligibility", c.GetEligibility)
	h.Get("/transactions", c.ListTransactions)
	h.Put("/mode", c.SetMode)
}

func (c *creditController) GetBalance(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetBalance(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Credit balance", res))
}

func (c *creditController) GetEligibility(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetEligibility(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Generation eligibility", res))
}

func (c *creditController) ListTransactions(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ListTransactions(ctx.UserContext(), userID, ctx.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Credit transactions", res))
}

func (c *creditController) SetMode(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.SetModeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.SetMode(ctx.UserContext(), userID, *req.UseOwnAPIKeys)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing mode updated", res))
}
