package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1", "role": role}).
		SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestAdminRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", Protected("secret"), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendString(Role(c))
	})
	app.Get("/open", func(c *fiber.Ctx) error {
		assert.Nil(t, Claims(c))
		return c.SendString(Role(c))
	})

	cases := []struct {
		name   string
		path   string
		bearer string
		want   int
	}{
		{"admin", "/admin", signed(t, "secret", "admin"), http.StatusOK},
		{"student", "/admin", signed(t, "secret", "student"), http.StatusForbidden},
		{"wrong key", "/admin", signed(t, "other", "admin"), http.StatusUnauthorized},
		{"missing", "/admin", "", http.StatusBadRequest},
		{"unprotected", "/open", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
