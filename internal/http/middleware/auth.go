package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocalKey holds the authenticated user's id in Fiber's context locals.
const UserIDLocalKey = "user_id"

// TokenVerifier resolves an access token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token with 401.
// The token may also be passed as ?token=, since EventSource cannot set headers.
func RequireAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing access token")
		}
		uid, err := v.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid access token")
		}
		c.Locals(UserIDLocalKey, uid)
		return c.Next()
	}
}

// UserID returns the id stored by RequireAuth, or "".
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDLocalKey).(string)
	return uid
}

func bearerToken(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
