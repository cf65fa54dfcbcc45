package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse структура для успешных ответов
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Message отправляет успешный ответ, содержащий только сообщение
func Message(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Message: message,
	})
}

// SendError создает JSON ответ с ошибкой
func SendError(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	message := PublicMessage(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		message = fe.Message
	}

	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: message,
	}

	if len(details) > 0 && details[0] != nil {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// ErrorHandler is the application-wide fiber error handler. Handlers return
// *Error values and this renders them. Causes are logged, never sent.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return SendError(c, fe.Code, fe)
		}

		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		}

		var details interface{}
		var appErr *Error
		if errors.As(err, &appErr) && len(appErr.Details) > 0 {
			details = appErr.Details
		}
		return SendError(c, status, err, details)
	}
}

// NotFound отправляет ответ с кодом 404
func NotFound(c *fiber.Ctx, message string) error {
	return SendError(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}
