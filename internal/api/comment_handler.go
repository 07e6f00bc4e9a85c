package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/service"
)

// commentRequest accepts {"comment": {...}} as well as the bare fields
type commentRequest struct {
	Comment *models.CommentInput `json:"comment"`
	models.CommentInput
}

// CommentHandler handles comment endpoints. None of them require a signed-in user.
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// List handles GET /articles/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.services.Comment.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Create handles POST /articles/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req commentRequest
	if !bindBody(c, &req) {
		return
	}
	input := req.CommentInput
	if req.Comment != nil {
		input = *req.Comment
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Delete handles DELETE /articles/:id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.services.Comment.Delete(c.Request.Context(), c.Param("id"), c.Param("comment_id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
