package controller

import (
	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOnboardingController interface {
	RegisterRoutes(r fiber.Router)
}

type onboardingController struct {
	service service.IOnboardingService
	guard   fiber.Handler
}

func NewOnboardingController(service service.IOnboardingService, guard fiber.Handler) IOnboardingController {
	return &onboardingController{service: service, guard: guard}
}

func (c *onboardingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/onboarding", c.guard)
	h.Get("", c.State)
	h.Patch("/data", c.UpdateData)
	h.Post("/next", c.Next)
	h.Post("/back", c.Back)
	h.Post("/jump", c.Jump)
	h.Post("/complete", c.Complete)
}

func (c *onboardingController) State(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetState(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Onboarding state", res))
}

func (c *onboardingController) UpdateData(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.OnboardingPatchRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.UpdateData(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Onboarding data saved", res))
}

func (c *onboardingController) Next(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Next(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Moved to next step", res))
}

func (c *onboardingController) Back(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Back(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Moved to previous step", res))
}

func (c *onboardingController) Jump(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.OnboardingJumpRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.JumpTo(ctx.UserContext(), userID, req.Step)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Moved to step", res))
}

func (c *onboardingController) Complete(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Complete(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Onboarding completed", res))
}
