package router

import (
	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/NewsDesk/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps bundles the controllers and shared stores the routes need
type Deps struct {
	News        *controllers.NewsController
	Questions   *controllers.QuestionController
	Auth        *controllers.AuthController
	System      *controllers.SystemController
	Sessions    *fibersession.Store
	TokenSecret string

	// LimiterStorage backs the /api rate limiter; nil keeps counters in memory
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Deps) {
	// Install HttpRouter first: it adds the UserContext middleware that the
	// /api group relies on as well.
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

// registerRoutes mounts every endpoint on r. It runs once for the root and
// once for the /api group.
func registerRoutes(r fiber.Router, deps Deps) {
	registerPublicRoutes(r, deps)
	registerAdminRoutes(r, deps)
}
