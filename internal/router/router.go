package router

import (
	"log/slog"
	"time"

	"sprintsync/internal/config"
	"sprintsync/internal/handler"
	"sprintsync/internal/middleware"
	"sprintsync/internal/suggest"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup configures the Gin engine and the full API surface.
func Setup(cfg *config.Config, db *gorm.DB, logger *slog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	// liveness
	r.GET("/", handler.Root)
	r.GET("/health", handler.Health)

	api := r.Group("/api")

	// login/registration throttling: redis-backed when configured,
	// in-process otherwise
	var counter middleware.Counter
	if cfg.RateLimit.RedisAddr != "" {
		redisCounter, err := middleware.NewRedisCounter(cfg.RateLimit.RedisAddr)
		if err != nil {
			logger.Warn("redis rate limiter unavailable, using in-memory counter",
				slog.String("error", err.Error()))
		} else {
			counter = redisCounter
		}
	}
	if counter == nil {
		counter = middleware.NewMemoryCounter()
	}

	authHandler := handler.NewAuthHandler(db, cfg.JWT, cfg.Security.BcryptCost)
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(cfg.RateLimit.PerMinute, time.Minute, counter))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.GET("/auth/verify", authHandler.Verify)

	taskHandler := handler.NewTaskHandler(db)
	protected.GET("/tasks", taskHandler.List)
	protected.GET("/tasks/:id", taskHandler.Get)
	protected.POST("/tasks", taskHandler.Create)
	protected.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
	protected.PUT("/tasks/:id", taskHandler.Update)
	protected.PATCH("/tasks/:id", taskHandler.Update)
	protected.DELETE("/tasks/:id", taskHandler.Delete)

	userHandler := handler.NewUserHandler(db, cfg.Security.BcryptCost)
	protected.GET("/users", middleware.RequireAdmin(), userHandler.List)
	protected.GET("/users/:id", userHandler.Get)
	protected.GET("/users/:id/tasks", userHandler.GetTasks)
	protected.PUT("/users/:id", middleware.RequireAdmin(), userHandler.Update)
	protected.DELETE("/users/:id", middleware.RequireAdmin(), userHandler.Delete)

	statsHandler := handler.NewStatsHandler(db)
	stats := protected.Group("/stats", middleware.RequireAdmin())
	stats.GET("/top-users", statsHandler.TopUsers)
	stats.GET("/platform", statsHandler.Platform)
	stats.GET("/export/csv", statsHandler.ExportCSV)
	stats.GET("/export/xlsx", statsHandler.ExportXLSX)

	suggestSvc := suggest.NewService(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, logger)
	aiHandler := handler.NewAIHandler(suggestSvc)
	protected.POST("/ai/suggest", aiHandler.SuggestTask)
	protected.GET("/ai/status", aiHandler.Status)

	return r
}
