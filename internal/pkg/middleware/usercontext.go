package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/security"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/session"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the user context for every request. A valid
// bearer token wins over the session cookie; an invalid one leaves the
// request anonymous.
func UserContextMiddleware(store *fibersession.Store, tokenSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := extractBearerToken(c); token != "" && tokenSecret != "" {
			claims, err := security.ParseAuthToken(token, tokenSecret)
			if err != nil {
				log.Debugf("rejecting bearer token: %v", err)
				usercontext.SetUserContext(c, usercontext.UserContext{})
				return c.Next()
			}
			usercontext.SetUserContext(c, usercontext.New(claims.Subject, claims.Role, usercontext.SourceToken))
			return c.Next()
		}

		login, role, ok := session.Identity(store, c)
		if !ok {
			usercontext.SetUserContext(c, usercontext.UserContext{})
			return c.Next()
		}

		usercontext.SetUserContext(c, usercontext.New(login, role, usercontext.SourceSession))
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
