package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/NewsDesk/app/services"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/security"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/session"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

// TokenTTL is how long a bearer token issued at login stays valid
const TokenTTL = 24 * time.Hour

type registerRequest struct {
	Login    string `json:"login" form:"login"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
}

type loginRequest struct {
	Login    string `json:"login" form:"login"`
	Password string `json:"password" form:"password"`
}

// AuthController handles registration, login and logout
type AuthController struct {
	accounts    *services.AccountService
	sessions    *fibersession.Store
	tokenSecret string
}

func NewAuthController(accounts *services.AccountService, sessions *fibersession.Store, tokenSecret string) *AuthController {
	return &AuthController{accounts: accounts, sessions: sessions, tokenSecret: tokenSecret}
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgBadRequest)
	}
	if err := ac.accounts.Register(c.UserContext(), req.Login, req.Password, req.Email); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

// HandleLogin authenticates, starts a session and, when tokens are enabled,
// returns a bearer token for clients without cookies.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	identity, err := ac.accounts.Authenticate(c.UserContext(), req.Login, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	if err := session.Login(ac.sessions, c, identity.Login, identity.Role); err != nil {
		return respondError(c, err)
	}

	body := fiber.Map{"role": identity.Role, "login": identity.Login}
	if ac.tokenSecret != "" {
		token, err := security.IssueAuthToken(identity.Login, identity.Role, TokenTTL, ac.tokenSecret)
		if err != nil {
			log.Warnf("issue auth token: %v", err)
		} else {
			body["token"] = token
		}
	}
	return ok(c, body)
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := session.Logout(ac.sessions, c); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

// HandleMe returns who the caller is
func (ac *AuthController) HandleMe(c *fiber.Ctx) error {
	return c.JSON(usercontext.GetUserContext(c))
}
