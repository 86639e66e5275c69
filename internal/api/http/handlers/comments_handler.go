package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Elmamis69/ticket-master-api/internal/api/dto"
	"github.com/Elmamis69/ticket-master-api/internal/auth"
	"github.com/Elmamis69/ticket-master-api/internal/service"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

// CommentsHandler exposes the ticket comment thread.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler builds handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: commentService}
}

// Create handles POST /api/v1/tickets/:id/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload", nil)
	}

	comment, err := h.comments.Create(c.UserContext(), actor, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// List handles GET /api/v1/tickets/:id/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	comments, err := h.comments.List(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponses(comments)})
}

// Update handles PUT /api/v1/tickets/:id/comments/:commentID.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload", nil)
	}

	comment, err := h.comments.Update(c.UserContext(), actor, c.Params("id"), c.Params("commentID"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// Delete handles DELETE /api/v1/tickets/:id/comments/:commentID.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.comments.Delete(c.UserContext(), actor, c.Params("id"), c.Params("commentID")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
