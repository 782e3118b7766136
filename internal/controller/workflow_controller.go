package controller

import (
	"encoding/json"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const webhookSecretHeader = "X-Webhook-Secret"

type IWorkflowController interface {
	RegisterRoutes(r fiber.Router)
}

type workflowController struct {
	workflows       service.IWorkflowService
	trigger         service.ITriggerService
	guard           fiber.Handler
	onboardingGuard fiber.Handler
}

func NewWorkflowController(workflows service.IWorkflowService, trigger service.ITriggerService, guard, onboardingGuard fiber.Handler) IWorkflowController {
	return &workflowController{
		workflows:       workflows,
		trigger:         trigger,
		guard:           guard,
		onboardingGuard: onboardingGuard,
	}
}

func (c *workflowController) RegisterRoutes(r fiber.Router) {
	r.Post("/trigger-workflow", c.guard, c.Trigger)
	r.Post("/workflow-webhook", c.Callback)

	h := r.Group("/workflows", c.guard, c.onboardingGuard)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Post("/generate", c.Generate)
	h.Get("/:id", c.Show)
	h.Get("/:id/download", c.Download)
	h.Delete("/:id", c.Delete)

	r.Get("/dashboard/summary", c.guard, c.onboardingGuard, c.Summary)
}

func relay(ctx *fiber.Ctx, res *dto.ProxyResponse) error {
	if res.ContentType != "" {
		ctx.Set(fiber.HeaderContentType, res.ContentType)
	}
	return ctx.Status(res.StatusCode).Send(res.Body)
}

// Trigger forwards an arbitrary JSON object to the generator and relays its
// reply unchanged.
func (c *workflowController) Trigger(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var body map[string]interface{}
	if err := json.Unmarshal(ctx.Body(), &body); err != nil {
		return serverutils.NewBadRequest("Request body must be a JSON object")
	}

	res, err := c.trigger.Trigger(ctx.UserContext(), userID, body)
	if err != nil {
		return err
	}
	return relay(ctx, res)
}

func (c *workflowController) Callback(ctx *fiber.Ctx) error {
	var req dto.WorkflowCallbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequest("Invalid request body")
	}
	res, err := c.workflows.HandleCallback(ctx.UserContext(), ctx.Get(webhookSecretHeader), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflow updated", res))
}

func (c *workflowController) List(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.workflows.List(ctx.UserContext(), userID, ctx.QueryInt("from", 0), ctx.QueryInt("to", 9), ctx.Query("q"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflows", res))
}

func (c *workflowController) Show(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	res, err := c.workflows.Get(ctx.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflow", res))
}

func (c *workflowController) Download(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	filename, body, err := c.workflows.Download(ctx.UserContext(), userID, id)
	if err != nil {
		return err
	}
	ctx.Attachment(filename)
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(body)
}

func (c *workflowController) Create(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateWorkflowRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.workflows.Create(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Workflow created", res))
}

func (c *workflowController) Delete(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := c.workflows.Delete(ctx.UserContext(), userID, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflow deleted", nil))
}

// Generate answers with the generator's reply. The placeholder id travels in
// a header so the body stays untouched.
func (c *workflowController) Generate(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	var req dto.GenerateWorkflowRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, id, err := c.workflows.Generate(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	if id != uuid.Nil {
		ctx.Set("X-Workflow-Id", id.String())
	}
	return relay(ctx, res)
}

func (c *workflowController) Summary(ctx *fiber.Ctx) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	res, err := c.workflows.Summary(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard summary", res))
}
