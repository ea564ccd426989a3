package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/app/services"
)

type askRequest struct {
	Name     string `json:"name" form:"name"`
	Contact  string `json:"contact" form:"contact"`
	Question string `json:"question" form:"question"`
}

// QuestionController serves the ask form and the admin question list
type QuestionController struct {
	questions *services.QuestionService
}

func NewQuestionController(questions *services.QuestionService) *QuestionController {
	return &QuestionController{questions: questions}
}

func (qc *QuestionController) HandleAsk(c *fiber.Ctx) error {
	var req askRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgBadRequest)
	}
	if err := qc.questions.SubmitQuestion(c.UserContext(), req.Name, req.Contact, req.Question); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}

func (qc *QuestionController) HandleList(c *fiber.Ctx) error {
	return c.JSON(qc.questions.ListQuestions(c.UserContext()))
}
