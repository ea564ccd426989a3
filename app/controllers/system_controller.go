package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/statistics"
)

// SystemController serves health and statistics
type SystemController struct {
	stats  *statistics.Service
	driver string
}

func NewSystemController(stats *statistics.Service, driver string) *SystemController {
	return &SystemController{stats: stats, driver: driver}
}

func (sc *SystemController) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "store": sc.driver})
}

func (sc *SystemController) HandleStats(c *fiber.Ctx) error {
	data, err := sc.stats.Get(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}
