package controller

import (
	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFeedbackController interface {
	RegisterRoutes(r fiber.Router)
}

type feedbackController struct {
	service service.IFeedbackService
	guard   fiber.Handler
}

func NewFeedbackController(service service.IFeedbackService, guard fiber.Handler) IFeedbackController {
	return &feedbackController{service: service, guard: guard}
}

func (c *feedbackController) RegisterRoutes(r fiber.Router) {
	r.Post("/feedback", c.guard, c.Submit)
}

func (c *feedbackController) Submit(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Submit(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Thanks for the feedback", res))
}
