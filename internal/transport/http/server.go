package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsvc "chatbot-platform/internal/app"
	"chatbot-platform/internal/bootstrap"
	"chatbot-platform/internal/pkg/jwtutil"
	"chatbot-platform/internal/ratelimit"
	"chatbot-platform/internal/repository"
	"chatbot-platform/internal/transport/http/handler"
	"chatbot-platform/internal/transport/http/middleware"
	"chatbot-platform/internal/transport/http/response"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	cfg := app.Config
	log := app.Logger
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(middleware.ProcessTime(), middleware.RequestLogger(log.Named("http")), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.App.FrontendURL)))
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "route not found")
	})

	registerLimiter, err := ratelimit.NewFixedWindowLimiter(app.Redis, cfg.RateLimit.Prefix+":register", cfg.RateLimit.RegisterPerMinute, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init register rate limiter failed: %w", err)
	}
	loginLimiter, err := ratelimit.NewFixedWindowLimiter(app.Redis, cfg.RateLimit.Prefix+":login", cfg.RateLimit.LoginPerMinute, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init login rate limiter failed: %w", err)
	}

	userRepo := repository.NewUserRepository(app.DB)
	projectRepo := repository.NewProjectRepository(app.DB)
	messageRepo := repository.NewMessageRepository(app.DB)
	fileRepo := repository.NewFileRepository(app.DB)

	authService := appsvc.NewAuthService(userRepo, projectRepo, jwtutil.Options{
		Secret:    cfg.Auth.JWTSecret,
		Algorithm: cfg.Auth.JWTAlgorithm,
		TTL:       time.Duration(cfg.Auth.JWTExpireMinute) * time.Minute,
	})
	fileService := appsvc.NewFileService(fileRepo, projectRepo, app.Blobs, app.LLM, app.Activity, appsvc.FileServiceOptions{
		MaxSize:      cfg.Upload.MaxFileSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
		MirrorTypes:  cfg.Upload.MirrorTypes,
	}, log)
	projectService := appsvc.NewProjectService(projectRepo, fileService, log)
	chatService := appsvc.NewChatService(messageRepo, app.LLM, app.Activity, cfg.LLM.MaxContextMessage, log)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	chatHandler := handler.NewChatHandler(chatService)
	fileHandler := handler.NewFileHandler(fileService)

	requireAuth := middleware.AuthJWT(authService)
	ownProject := middleware.ProjectScope(projectService)

	router.GET("/health", healthHandler.Live)
	router.GET("/healthz", healthHandler.Ready)

	authGroup := router.Group("/auth")
	authGroup.POST("/register", middleware.RateLimit(registerLimiter), authHandler.Register)
	authGroup.POST("/login", middleware.RateLimit(loginLimiter), authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	projectGroup := router.Group("/projects", requireAuth)
	projectGroup.GET("/", projectHandler.List)
	projectGroup.POST("/", projectHandler.Create)
	projectGroup.GET("/:project_id", ownProject, projectHandler.Get)
	projectGroup.PUT("/:project_id", ownProject, projectHandler.Update)
	projectGroup.DELETE("/:project_id", ownProject, projectHandler.Delete)

	chatGroup := router.Group("/chat", requireAuth)
	chatGroup.POST("/:project_id", ownProject, chatHandler.Send)
	chatGroup.GET("/:project_id/history", ownProject, chatHandler.History)

	fileGroup := router.Group("/files", requireAuth)
	fileGroup.POST("/:project_id", ownProject, fileHandler.Upload)
	fileGroup.GET("/:project_id", ownProject, fileHandler.List)
	fileGroup.DELETE("/:file_id", fileHandler.Delete)

	return router, nil
}

// corsConfig allows the configured frontend with credentials, or any origin
// without them when no frontend is set.
func corsConfig(frontendURL string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{middleware.ProcessTimeHeader},
		MaxAge:        12 * time.Hour,
	}
	if origin := strings.TrimRight(strings.TrimSpace(frontendURL), "/"); origin != "" {
		c.AllowOrigins = []string{origin}
		c.AllowCredentials = true
	} else {
		c.AllowAllOrigins = true
	}
	return c
}
