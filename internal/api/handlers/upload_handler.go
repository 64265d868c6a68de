package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/clipcast/clipcast/internal/service"
	"github.com/clipcast/clipcast/internal/transfer"
)

type UploadHandler struct {
	s service.UploadService
}

func NewUploadHandler(service service.UploadService) *UploadHandler {
	return &UploadHandler{s: service}
}

func (h *UploadHandler) CreatePresignedURL(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PresignRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: filename, contentType, size",
		})
	}

	result, err := h.s.Negotiate(c.Context(), userID, req.Filename, req.ContentType, req.Size)
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
