package controller

import (
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service   service.IOAuthService
	clientURL string
	logger    logger.ILogger
}

func NewOAuthController(service service.IOAuthService, clientURL string, log logger.ILogger) IOAuthController {
	return &oauthController{service: service, clientURL: clientURL, logger: log}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	url, err := c.service.GetLoginURL(ctx.Params("provider"))
	if err != nil {
		return err
	}
	return ctx.Redirect(url, fiber.StatusTemporaryRedirect)
}

// Callback always ends in a browser redirect. Failures land on the login page
// with an error code instead of a JSON body.
func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")
	if code == "" {
		c.logger.Warn("OAUTH", "Callback without code", map[string]interface{}{"provider": provider, "error": ctx.Query("error")})
		return ctx.Redirect(c.clientURL+serverutils.LoginPath+"?error=oauth_cancelled", fiber.StatusTemporaryRedirect)
	}

	redirectURL, err := c.service.HandleCallback(ctx.UserContext(), provider, ctx.Query("state"), code)
	if err != nil {
		c.logger.Warn("OAUTH", "Callback failed", map[string]interface{}{"provider": provider, "error": err})
		return ctx.Redirect(c.clientURL+serverutils.LoginPath+"?error=oauth_failed", fiber.StatusTemporaryRedirect)
	}
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
