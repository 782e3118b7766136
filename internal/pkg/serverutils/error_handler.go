package serverutils

import (
	"errors"
	"fmt"

	"gen8n-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is installed as fiber.Config.ErrorHandler. Unknown errors become
// a generic 500 so internals never reach the client.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if appErr, ok := AsAppError(err); ok {
			if appErr.Code >= fiber.StatusInternalServerError {
				log.Error("HTTP", appErr.Message, map[string]interface{}{
					"path":   ctx.Path(),
					"method": ctx.Method(),
					"error":  err,
				})
			}
			return ctx.Status(appErr.Code).JSON(ErrorResponseWithDetails(appErr.Code, appErr.Message, appErr.Details))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":   ctx.Path(),
			"method": ctx.Method(),
			"error":  err,
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}

// ErrorHandlerMiddleware turns panics in handlers into 500 responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = NewInternal(fmt.Errorf("panic: %v", r))
			}
		}()
		return ctx.Next()
	}
}
