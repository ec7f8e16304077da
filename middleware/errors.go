package middleware

import (
	"errors"
	"log/slog"

	"competition-system/services"

	"github.com/gofiber/fiber/v2"
)

// ErrorRecorder counts failures by kind.
type ErrorRecorder interface {
	ServiceError(kind string)
}

// ErrorStatus maps an error kind to its HTTP status.
func ErrorStatus(err error) int {
	var fe *fiber.Error
	switch {
	case errors.Is(err, services.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidValue):
		return fiber.StatusBadRequest
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, services.ErrStorageUnavailable):
		return "unavailable"
	case errors.Is(err, services.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, services.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, services.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, services.ErrNotFound):
		return "not_found"
	case errors.Is(err, services.ErrConflict):
		return "conflict"
	case errors.Is(err, services.ErrInvalidValue):
		return "invalid_value"
	default:
		return ""
	}
}

// ErrorHandler writes {"error": ...} with the mapped status. Unexpected errors are
// logged and answered with a generic message.
func ErrorHandler(recorder ErrorRecorder) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := ErrorStatus(err)
		message := err.Error()

		if kind := errorKind(err); kind != "" && recorder != nil {
			recorder.ServiceError(kind)
		}

		switch status {
		case fiber.StatusUnauthorized:
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		case fiber.StatusServiceUnavailable:
			slog.Error("Storage unavailable", "path", c.Path(), "error", err)
			message = services.ErrStorageUnavailable.Error()
		case fiber.StatusInternalServerError:
			slog.Error("Unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
			message = "internal server error"
		}

		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}

// BadRequest answers input that failed validation before reaching a service.
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
