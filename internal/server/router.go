package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pixelcraft-backend/internal/handlers"
	"github.com/yungbote/pixelcraft-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler      *handlers.AuthHandler
	ExtractHandler   *handlers.ExtractHandler
	ProjectHandler   *handlers.ProjectHandler
	OptimizeHandler  *handlers.OptimizeHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	CommentHandler   *handlers.CommentHandler
	UserHandler      *handlers.UserHandler

	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	RateLimitClass      string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	auth := router.Group("/auth")
	{
		auth.POST("/signup", cfg.AuthHandler.Signup)
		auth.POST("/check-email", cfg.AuthHandler.CheckEmail)
		auth.POST("/login", cfg.AuthHandler.Login)
	}

	// Extraction works anonymously; identity is attached when present so
	// quota and page creation apply.
	router.POST("/extract", cfg.AuthMiddleware.OptionalAuth(), cfg.ExtractHandler.Extract)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.GET("/projects", cfg.ProjectHandler.List)
	protected.POST("/projects", cfg.ProjectHandler.Create)
	protected.GET("/projects/:id", cfg.ProjectHandler.Get)
	protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)

	aiLimit := cfg.RateLimitMiddleware.Limit(cfg.RateLimitClass)
	optimize := protected.Group("/optimize")
	{
		optimize.GET("", cfg.OptimizeHandler.List)
		optimize.POST("", aiLimit, cfg.OptimizeHandler.Create)
		optimize.POST("/feedback", aiLimit, cfg.OptimizeHandler.Feedback)
		optimize.POST("/refine", aiLimit, cfg.OptimizeHandler.Refine)
		optimize.POST("/generate-code", aiLimit, cfg.OptimizeHandler.GenerateCode)
		optimize.POST("/:id/apply", cfg.OptimizeHandler.Apply)
		optimize.POST("/:id/reject", cfg.OptimizeHandler.Reject)
	}

	protected.GET("/analytics/project/:id", cfg.AnalyticsHandler.ForProject)
	protected.GET("/user/rate-limit", cfg.UserHandler.RateLimit)

	protected.POST("/comments", cfg.CommentHandler.Create)
	protected.PATCH("/comments/:id", cfg.CommentHandler.Patch)
	protected.DELETE("/comments/:id", cfg.CommentHandler.Delete)

	return router
}
