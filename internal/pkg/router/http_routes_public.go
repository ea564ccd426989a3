package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/middleware"
)

func registerPublicRoutes(r fiber.Router, deps Deps) {
	r.Get("/healthz", deps.System.HandleHealth)
	r.Get("/stats", deps.System.HandleStats)

	// news feed
	r.Get("/news", deps.News.HandleList)
	r.Post("/news/comment", middleware.RequireAPISessionAuth, deps.News.HandleAddComment)

	// questions
	r.Post("/ask", deps.Questions.HandleAsk)

	// accounts
	r.Post("/register", deps.Auth.HandleRegister)
	r.Post("/login", deps.Auth.HandleLogin)
	r.Post("/logout", deps.Auth.HandleLogout)
	r.Get("/me", deps.Auth.HandleMe)
}
