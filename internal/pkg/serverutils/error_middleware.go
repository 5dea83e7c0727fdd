package serverutils

import (
	"errors"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/rag/access"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler maps errors escaping handlers to JSON responses. Security
// violations deliberately return an opaque 403: the incident itself is logged
// and published elsewhere, the requester learns nothing.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		if access.IsSecurityViolation(err) {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse("access denied"))
		}

		code := fiber.StatusInternalServerError
		message := "internal server error"
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			log.Error(logger.ModuleChat, "unhandled request error", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(message))
	}
}
