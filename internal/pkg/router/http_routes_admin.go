package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/middleware"
)

func registerAdminRoutes(r fiber.Router, deps Deps) {
	r.Post("/news", middleware.RequireAPIAdmin, deps.News.HandleCreate)
	r.Get("/questions", middleware.RequireAPIAdmin, deps.Questions.HandleList)
}
