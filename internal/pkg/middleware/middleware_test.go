package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/security"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

const testSecret = "test-secret"

func newTestApp() *fiber.App {
	app := fiber.New()
	store := fibersession.New()
	app.Use(UserContextMiddleware(store, testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(usercontext.GetUserContext(c))
	})
	app.Get("/member", RequireAPISessionAuth, func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/admin", RequireAPIAdmin, func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func bearer(t *testing.T, login, role string) string {
	t.Helper()
	token, err := security.IssueAuthToken(login, role, time.Hour, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRequireGuards(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{"anonymous member route", "/member", "", http.StatusUnauthorized},
		{"anonymous admin route", "/admin", "", http.StatusUnauthorized},
		{"user member route", "/member", bearer(t, "bob", "user"), http.StatusOK},
		{"user admin route", "/admin", bearer(t, "bob", "user"), http.StatusForbidden},
		{"admin admin route", "/admin", bearer(t, "admin", "admin"), http.StatusOK},
		{"bad token", "/member", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = extractBearerToken(c)
		return nil
	})

	for header, want := range map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		_, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, want, got, header)
	}
}
