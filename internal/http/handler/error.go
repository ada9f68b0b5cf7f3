package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/http/middleware"
	"docstore/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service errors onto the error envelope. Unknown
// errors become 500 and their text only reaches the access log.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "not enough permissions")
	case errors.Is(err, service.ErrReaderNil), errors.Is(err, service.ErrFilenameRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, service.ErrInvalidFile):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_TYPE", err.Error())
	case errors.Is(err, service.ErrTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", err.Error())
	case errors.Is(err, service.ErrInvalidType):
		return writeError(c, fiber.StatusBadRequest, "INVALID_TYPE", err.Error())
	case errors.Is(err, service.ErrKindMismatch):
		return writeError(c, fiber.StatusBadRequest, "KIND_MISMATCH", err.Error())
	case errors.Is(err, service.ErrNameRequired):
		return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
	case errors.Is(err, service.ErrConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "resource already exists")
	case errors.Is(err, service.ErrQueueUnavailable):
		c.Locals(middleware.ErrorLocalKey, err.Error())
		return writeError(c, fiber.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "tagging is unavailable")
	default:
		c.Locals(middleware.ErrorLocalKey, err.Error())
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
