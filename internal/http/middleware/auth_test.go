package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type staticVerifier map[string]string

func (s staticVerifier) Verify(token string) (string, error) {
	if uid, ok := s[token]; ok {
		return uid, nil
	}
	return "", errors.New("bad token")
}

func TestRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Use(RequireAuth(staticVerifier{"good": "user-1"}))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"bearer header", "/me", "Bearer good", fiber.StatusOK, "user-1"},
		{"lower-case scheme", "/me", "bearer good", fiber.StatusOK, "user-1"},
		{"query token", "/me?token=good", "", fiber.StatusOK, "user-1"},
		{"missing", "/me", "", fiber.StatusUnauthorized, ""},
		{"wrong scheme", "/me", "Basic good", fiber.StatusUnauthorized, ""},
		{"invalid token", "/me", "Bearer nope", fiber.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, _ := app.Test(req)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}
