package controller

import (
	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
}

type authController struct {
	service   service.IAuthService
	jwtSecret string
	cookie    SessionCookie
}

func NewAuthController(service service.IAuthService, jwtSecret string, cookie SessionCookie) IAuthController {
	return &authController{service: service, jwtSecret: jwtSecret, cookie: cookie}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/logout", c.Logout)

	r.Get("/session", c.Session)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	c.cookie.set(ctx, res.Token)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("User registered successfully", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	c.cookie.set(ctx, res.Token)
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	c.cookie.clear(ctx)
	return ctx.JSON(serverutils.SuccessResponse("Logged out", fiber.Map{"redirect": serverutils.LoginPath}))
}

// Session never fails: anonymous visitors are told to log in.
func (c *authController) Session(ctx *fiber.Ctx) error {
	anonymous := &dto.SessionResponse{Redirect: serverutils.LoginPath}

	tokenStr := serverutils.TokenFromRequest(ctx, c.cookie.Name)
	if tokenStr == "" {
		return ctx.JSON(serverutils.SuccessResponse("Not signed in", anonymous))
	}
	userID, err := serverutils.ParseSessionToken(c.jwtSecret, tokenStr)
	if err != nil {
		return ctx.JSON(serverutils.SuccessResponse("Not signed in", anonymous))
	}

	res, err := c.service.Session(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session", res))
}
