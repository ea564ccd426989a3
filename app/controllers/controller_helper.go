package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/NewsDesk/app/services"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

// User-facing messages
const (
	MsgServerError        = "Помилка сервера"
	MsgFillAllFields      = "Заповніть усі обов'язкові поля"
	MsgNewsNotFound       = "Новину не знайдено"
	MsgLoginTaken         = "Користувач вже існує"
	MsgInvalidCredentials = "Невірні дані"
	MsgBadRequest         = "Некоректний запит"
	MsgImageDropped       = "Новину опубліковано без фото"
)

func ok(c *fiber.Ctx, extra fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// respondError maps a service error to status code and message.
func respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": MsgFillAllFields,
			"fields":  verr.Fields,
		})
	case errors.Is(err, services.ErrNewsNotFound):
		return fail(c, fiber.StatusNotFound, MsgNewsNotFound)
	case errors.Is(err, services.ErrLoginTaken):
		return fail(c, fiber.StatusConflict, MsgLoginTaken)
	case errors.Is(err, services.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, MsgInvalidCredentials)
	default:
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		body := fiber.Map{"success": false, "message": MsgServerError}
		if env.IsDev() {
			body["error"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}

// parseBody decodes JSON, urlencoded or multipart bodies into out. An empty
// body leaves out untouched.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

// optionalString turns an empty form value into nil
func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
