package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/models"
)

// respondError maps a service error to its HTTP status and body
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ve.Messages})
		return
	}

	var status int
	switch models.KindOf(err) {
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindUnauthenticated:
		status = http.StatusUnauthorized
	case models.KindForbidden:
		status = http.StatusForbidden
	case models.KindConflict:
		status = http.StatusConflict
	default:
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", requestID(c)).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindBody decodes a JSON body. An empty body decodes to the zero value.
func bindBody(c *gin.Context, obj interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
