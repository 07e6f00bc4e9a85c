package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/auth"
	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/service"
)

type signUpRequest struct {
	User *models.SignUpInput `json:"user"`
	models.SignUpInput
}

type signInRequest struct {
	User *models.SignInInput `json:"user"`
	models.SignInInput
}

// AuthHandler handles account endpoints
type AuthHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// SignUp handles POST /auth/sign_up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if !bindBody(c, &req) {
		return
	}
	input := req.SignUpInput
	if req.User != nil {
		input = *req.User
	}

	session, err := h.services.Account.SignUp(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSession(c, http.StatusCreated, session)
}

// SignIn handles POST /auth/sign_in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if !bindBody(c, &req) {
		return
	}
	input := req.SignInInput
	if req.User != nil {
		input = *req.User
	}

	session, err := h.services.Account.SignIn(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSession(c, http.StatusOK, session)
}

// SignOut handles DELETE /auth/sign_out. Tokens are stateless, so this only acknowledges.
func (h *AuthHandler) SignOut(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

func respondSession(c *gin.Context, status int, session *models.Session) {
	c.Header(AuthorizationHeader, auth.BearerHeader(session.Token))
	c.JSON(status, session)
}
