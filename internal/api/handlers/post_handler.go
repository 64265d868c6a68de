package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/clipcast/clipcast/internal/models"
	"github.com/clipcast/clipcast/internal/service"
	"github.com/clipcast/clipcast/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PostCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: videoKey and platforms",
		})
	}

	post, err := h.s.Create(c.Context(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post": post,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.List(c.Context(), userID)
	if err != nil {
		return RespondError(c, err)
	}

	if posts == nil {
		posts = []*models.Post{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"posts": posts,
	})
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	post, err := h.s.Info(c.Context(), postID, userID)
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"post": post,
	})
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	var req transfer.PostUpdate
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Update(c.Context(), postID, userID, &req)
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"post": post,
	})
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.Params("id")

	if err := h.s.Remove(c.Context(), userID, postID); err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
