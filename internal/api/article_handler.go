package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/service"
)

// articleRequest accepts {"article": {...}} as well as the bare fields
type articleRequest struct {
	Article *models.ArticleInput `json:"article"`
	models.ArticleInput
}

func (r *articleRequest) input() models.ArticleInput {
	if r.Article != nil {
		return *r.Article
	}
	return r.ArticleInput
}

// transitionResponse is returned by publish, unpublish and archive
type transitionResponse struct {
	Changed bool            `json:"changed"`
	Article *models.Article `json:"article"`
}

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /articles
func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.services.Article.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// Get handles GET /articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.services.Article.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Create handles POST /articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req articleRequest
	if !bindBody(c, &req) {
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), actorID(c), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Update handles PATCH and PUT /articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	var req articleRequest
	if !bindBody(c, &req) {
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), actorID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.services.Article.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Publish handles POST /articles/:id/publish
func (h *ArticleHandler) Publish(c *gin.Context) {
	h.transition(c, h.services.Article.Publish)
}

// Unpublish handles POST /articles/:id/unpublish
func (h *ArticleHandler) Unpublish(c *gin.Context) {
	h.transition(c, h.services.Article.Unpublish)
}

// Archive handles POST /articles/:id/archive
func (h *ArticleHandler) Archive(c *gin.Context) {
	h.transition(c, h.services.Article.Archive)
}

type transitionFunc func(ctx context.Context, actorID, id string) (*models.Article, bool, error)

func (h *ArticleHandler) transition(c *gin.Context, fn transitionFunc) {
	article, changed, err := fn(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, transitionResponse{Changed: changed, Article: article})
}
