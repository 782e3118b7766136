package handler

import (
	"strings"

	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	internalWS "gen8n-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WorkflowSocketHandler upgrades dashboard connections that receive live
// workflow updates.
type WorkflowSocketHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewWorkflowSocketHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *WorkflowSocketHandler {
	return &WorkflowSocketHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (h *WorkflowSocketHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/workflows", h.ServeWs)
}

// ServeWs authenticates the handshake and hands the connection to the hub.
// Browsers cannot set headers on websocket requests, so the token travels in
// the query string; the bearer header is accepted for tooling.
func (h *WorkflowSocketHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			tokenStr = strings.TrimSpace(authHeader[7:])
		}
	}
	if tokenStr == "" {
		return serverutils.NewUnauthorized("Missing token").WithDetails(fiber.Map{"redirect": serverutils.LoginPath})
	}

	userID, err := serverutils.ParseSessionToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("WS", "Invalid token in websocket handshake", map[string]interface{}{"error": err})
		return serverutils.NewUnauthorized("Invalid token").WithDetails(fiber.Map{"redirect": serverutils.LoginPath})
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Debug("WS", "Websocket session started", map[string]interface{}{"user_id": userID.String()})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Debug("WS", "Websocket session ended", map[string]interface{}{"user_id": userID.String()})
	})(c)
}
