package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/database"
)

// HealthCheck reports healthy only when the database answers a ping.
//
// @Summary Readiness check
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router  /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Ping(c.UserContext(), db); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// Liveness always answers 200 while the process serves requests.
//
// @Summary Liveness check
// @Tags    health
// @Success 200
// @Router  /healthz [get]
func Liveness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
