package middleware

import (
	"log/slog"
	"time"

	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func LoggingMiddleware(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Передаем управление следующему обработчику
		err := c.Next()

		// The error handler has not run yet when err != nil, so derive the status from it.
		status := c.Response().StatusCode()
		if err != nil {
			status = utils.StatusFor(err)
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		attrs := []any{
			"request_id", c.Locals("requestid"),
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
		}
		if id, ok := CurrentIdentity(c); ok {
			attrs = append(attrs, "user_id", id.UserID)
		}

		logger.InfoContext(c.UserContext(), "request", attrs...)

		return err
	}
}
