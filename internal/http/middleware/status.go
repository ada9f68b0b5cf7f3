package middleware

import "github.com/gofiber/fiber/v2"

// statusOf returns the status the client will see. Errors returned down the
// chain are only rendered by the app's ErrorHandler after every middleware
// has returned, so the response status is not final yet when err != nil.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if fiberErr, ok := err.(*fiber.Error); ok {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}
