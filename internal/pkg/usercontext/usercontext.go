package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

const localsKey = "USER_CONTEXT"

// How the request was authenticated
const (
	SourceSession = "session"
	SourceToken   = "token"
)

// UserContext represents the caller of a request
type UserContext struct {
	Login      string `json:"login,omitempty"`
	Role       string `json:"role,omitempty"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
	Source     string `json:"-"`
}

// New builds the context of an authenticated caller
func New(login, role, source string) UserContext {
	if role == "" {
		role = models.ROLE_USER
	}
	return UserContext{
		Login:      login,
		Role:       role,
		IsLoggedIn: login != "",
		IsAdmin:    login != "" && role == models.ROLE_ADMIN,
		Source:     source,
	}
}

// SetUserContext stores uc on the request
func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(localsKey, uc)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(localsKey).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}
