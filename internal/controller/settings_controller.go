package controller

import (
	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
}

type settingsController struct {
	service service.ISettingsService
	guard   fiber.Handler
}

func NewSettingsController(service service.ISettingsService, guard fiber.Handler) ISettingsController {
	return &settingsController{service: service, guard: guard}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/settings", c.guard)
	h.Get("", c.Get)
	h.Put("/api-keys", c.UpdateAPIKeys)
	h.Delete("/api-keys/:provider", c.DeleteAPIKey)
}

func (c *settingsController) Get(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetSettings(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings", res))
}

func (c *settingsController) UpdateAPIKeys(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateAPIKeysRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.UpdateAPIKeys(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("API keys updated", res))
}

func (c *settingsController) DeleteAPIKey(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.DeleteAPIKey(ctx.UserContext(), userID, ctx.Params("provider"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("API key removed", res))
}
