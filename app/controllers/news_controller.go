package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/NewsDesk/app/services"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/usercontext"
)

type createNewsRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
	Image   string `json:"image" form:"image"`
}

type addCommentRequest struct {
	NewsID string `json:"newsId" form:"newsId"`
	Text   string `json:"text" form:"text"`
}

// NewsController serves the news feed endpoints
type NewsController struct {
	news *services.NewsService
}

func NewNewsController(news *services.NewsService) *NewsController {
	return &NewsController{news: news}
}

// HandleList returns the whole feed, newest first. It always answers 200.
func (nc *NewsController) HandleList(c *fiber.Ctx) error {
	return c.JSON(nc.news.ListNews(c.UserContext()))
}

// HandleCreate publishes a news post
func (nc *NewsController) HandleCreate(c *fiber.Ctx) error {
	var req createNewsRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	res, err := nc.news.CreateNews(c.UserContext(), req.Title, req.Content, optionalString(req.Image))
	if err != nil {
		return respondError(c, err)
	}

	extra := fiber.Map{"id": res.ID, "imageDropped": res.ImageDropped}
	if res.ImageDropped {
		extra["message"] = MsgImageDropped
	}
	return ok(c, extra)
}

// HandleAddComment appends a comment signed with the caller's display name
func (nc *NewsController) HandleAddComment(c *fiber.Ctx) error {
	var req addCommentRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgBadRequest)
	}

	uc := usercontext.GetUserContext(c)
	author := nc.news.ResolveAuthor(uc.Login, uc.Role)

	if err := nc.news.AddComment(c.UserContext(), req.NewsID, author, req.Text); err != nil {
		return respondError(c, err)
	}
	return ok(c, nil)
}
