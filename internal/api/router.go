package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/blog-publishing-api/internal/config"
	"github.com/blog-publishing-api/internal/service"
)

const serviceName = "blog-publishing-api"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	commentHandler := NewCommentHandler(services, log)
	authHandler := NewAuthHandler(services, log)
	requireUser := requireUserMiddleware(services.Identity, log)

	// Operational endpoints
	router.GET("/health", healthCheck(services))
	router.GET("/stats", statsHandler(services, log))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group(cfg.Server.BasePath)
	{
		// Article endpoints
		articles := api.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.GET("/:id", articleHandler.Get)

			owned := articles.Group("", requireUser)
			{
				owned.POST("", articleHandler.Create)
				owned.PATCH("/:id", articleHandler.Update)
				owned.PUT("/:id", articleHandler.Update)
				owned.DELETE("/:id", articleHandler.Delete)
				owned.POST("/:id/publish", articleHandler.Publish)
				owned.POST("/:id/unpublish", articleHandler.Unpublish)
				owned.POST("/:id/archive", articleHandler.Archive)
			}

			// Comment endpoints
			articles.GET("/:id/comments", commentHandler.List)
			articles.POST("/:id/comments", commentHandler.Create)
			articles.DELETE("/:id/comments/:comment_id", commentHandler.Delete)
		}

		// Account endpoints
		accounts := api.Group("/auth")
		{
			accounts.POST("/sign_up", authHandler.SignUp)
			accounts.POST("/sign_in", authHandler.SignIn)
			accounts.DELETE("/sign_out", authHandler.SignOut)
		}
	}

	return router
}

// healthCheck reports whether the database answers
func healthCheck(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := services.Health.Check(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now().Format(time.RFC3339),
				"service":   serviceName,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   serviceName,
		})
	}
}

// statsHandler returns stored record totals
func statsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := services.Health.Counts(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
