package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/logger"
)

// ErrorLocalKey holds the internal error behind a 5xx response. Handlers set
// it so the cause is logged without being sent to the client.
const ErrorLocalKey = "error"

// Logger logs each HTTP request as one JSON line with request_id, method,
// path, status and latency (milliseconds, as float). Authenticated requests
// also carry user_id.
func Logger(log *logger.Logger) fiber.Handler {
	log = log.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := statusOf(c, err)
		fields := []any{
			"request_id", RequestIDFrom(c),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}
		if uid := UserID(c); uid != "" {
			fields = append(fields, "user_id", uid)
		}
		if cause, ok := c.Locals(ErrorLocalKey).(string); ok {
			fields = append(fields, "error", cause)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Errorw("http_request", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warnw("http_request", fields...)
		default:
			log.Infow("http_request", fields...)
		}
		return err
	}
}

// LoggerWithWriter is Logger writing to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logger.NewWithWriter(w, "info", loc))
}
