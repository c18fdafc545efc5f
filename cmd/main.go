package main

import (
	"fmt"
	"os"
	"time"

	"github.com/yungbote/pixelcraft-backend/internal/db"
	"github.com/yungbote/pixelcraft-backend/internal/handlers"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/middleware"
	"github.com/yungbote/pixelcraft-backend/internal/repos"
	"github.com/yungbote/pixelcraft-backend/internal/server"
	"github.com/yungbote/pixelcraft-backend/internal/services"
	"github.com/yungbote/pixelcraft-backend/internal/utils"
)

const aiLimitClass = "ai"

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	rateLimitWindow := utils.GetEnvAsInt("RATE_LIMIT_WINDOW", 3600, log)
	rateLimitMax := utils.GetEnvAsInt("RATE_LIMIT_MAX", 10, log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "localhost:6379", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	projectRepo := repos.NewProjectRepo(thePG, log)
	pageRepo := repos.NewPageRepo(thePG, log)
	optimizationRepo := repos.NewOptimizationRepo(thePG, log)
	refinementRepo := repos.NewRefinementRepo(thePG, log)
	commentRepo := repos.NewCommentRepo(thePG, log)

	// Rate limit counters live in redis so quotas survive restarts. A
	// process-local store keeps dev environments working without one.
	counterStore, err := services.NewRedisCounterStore(log, redisAddr)
	if err != nil {
		log.Warn("Redis init failed, falling back to in-memory rate limit counters", "error", err)
		counterStore = services.NewMemoryCounterStore(time.Now)
	}
	rateLimiter := services.NewRateLimiter(log, counterStore, map[string]services.RateLimitConfig{
		aiLimitClass: {
			WindowSeconds: rateLimitWindow,
			MaxRequests:   rateLimitMax,
		},
	})

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	assistant := services.NewDesignAssistant(log, openaiClient)
	guard := services.NewGuard(log, userRepo, projectRepo, pageRepo, optimizationRepo, commentRepo)
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	projectService := services.NewProjectService(thePG, log, guard, projectRepo, pageRepo)
	extractionService := services.NewExtractionService(thePG, log, guard, assistant, bucketService, pageRepo, projectRepo)
	optimizationService := services.NewOptimizationService(thePG, log, guard, assistant, userRepo, pageRepo, optimizationRepo, refinementRepo)
	analyticsService := services.NewAnalyticsService(log, guard, optimizationRepo)
	commentService := services.NewCommentService(log, guard, commentRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	extractHandler := handlers.NewExtractHandler(log, extractionService, rateLimiter, aiLimitClass)
	projectHandler := handlers.NewProjectHandler(log, projectService)
	optimizeHandler := handlers.NewOptimizeHandler(log, optimizationService)
	analyticsHandler := handlers.NewAnalyticsHandler(log, analyticsService)
	commentHandler := handlers.NewCommentHandler(log, commentService)
	userHandler := handlers.NewUserHandler(log, rateLimiter, aiLimitClass)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(log, rateLimiter)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:         authHandler,
		ExtractHandler:      extractHandler,
		ProjectHandler:      projectHandler,
		OptimizeHandler:     optimizeHandler,
		AnalyticsHandler:    analyticsHandler,
		CommentHandler:      commentHandler,
		UserHandler:         userHandler,
		AuthMiddleware:      authMiddleware,
		RateLimitMiddleware: rateLimitMiddleware,
		RateLimitClass:      aiLimitClass,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed: %v", err)
	}
}
