package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	githubclient "github.com/alimgiray/reviewdesk/internal/github"
	"github.com/alimgiray/reviewdesk/internal/handlers"
	"github.com/alimgiray/reviewdesk/internal/middleware"
	"github.com/alimgiray/reviewdesk/internal/repositories"
	"github.com/alimgiray/reviewdesk/internal/services"
	"github.com/alimgiray/reviewdesk/pkg/config"
	"github.com/alimgiray/reviewdesk/pkg/database"
	"github.com/alimgiray/reviewdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	logger.Init()

	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	gin.SetMode(cfg.Server.Mode)

	if err := database.Init(cfg.Database.Path, cfg.Database.MigrationsDir); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Repositories
	cacheRepo := repositories.NewCacheRepository(database.DB)
	userRepo := repositories.NewUserRepository(database.DB)
	repoRepo := repositories.NewRepositoryRepository(database.DB)
	pullRequestRepo := repositories.NewPullRequestRepository(database.DB)
	reviewRepo := repositories.NewReviewRepository(database.DB)
	commentRepo := repositories.NewCommentRepository(database.DB)

	// GitHub client and device flow
	client := githubclient.NewClient(cfg.GitHub.MaxConcurrentRequests)
	deviceFlow := githubclient.NewDeviceFlow(cfg.GitHub.ClientID)

	// Services
	cacheService := services.NewCacheService(cacheRepo)
	keyFile := filepath.Join(filepath.Dir(cfg.Database.Path), "token.key")
	crypto, err := services.NewTokenCrypto(cfg.Security.TokenEncryptionKey, keyFile)
	if err != nil {
		logger.Fatalf("Failed to initialize token encryption: %v", err)
	}
	authService := services.NewAuthService(deviceFlow, client, cacheService, userRepo, crypto)
	repositoryService := services.NewRepositoryService(repoRepo, client, cacheService, authService, cfg.Sync.PageSize)
	pullRequestService := services.NewPullRequestService(pullRequestRepo, repoRepo, client, cacheService, authService, cfg.Sync.PageSize)
	commentService := services.NewCommentService(commentRepo, cacheService)
	reviewService := services.NewReviewService(reviewRepo)
	userService := services.NewUserService(userRepo, client, cacheService, authService)
	syncService := services.NewSyncService(client, authService, cacheService, userRepo, repoRepo, pullRequestRepo, reviewRepo, commentRepo, cfg.Sync)
	exportService := services.NewExportService(authService)
	importService := services.NewImportService(commentRepo)
	aiService := services.NewAIService(cfg.AI)

	// Mirror sync progress into the log
	progressEvents, unsubscribe := syncService.Subscribe()
	defer unsubscribe()
	go func() {
		for update := range progressEvents {
			logger.Debugf("Sync %s %d%%: %s", update.Kind, update.Percent, update.Message)
		}
	}()

	// Restore a persisted session before serving
	if err := authService.LoadAuthentication(context.Background()); err != nil {
		logger.Warnf("Failed to restore session: %v", err)
	}

	router := gin.Default()
	setupRoutes(router, authService, syncService, repositoryService, pullRequestService, commentService, reviewService, userService, exportService, importService, aiService, cacheService)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Infof("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	authService *services.AuthService,
	syncService *services.SyncService,
	repositoryService *services.RepositoryService,
	pullRequestService *services.PullRequestService,
	commentService *services.CommentService,
	reviewService *services.ReviewService,
	userService *services.UserService,
	exportService *services.ExportService,
	importService *services.ImportService,
	aiService *services.AIService,
	cacheService *services.CacheService,
) {
	authHandler := handlers.NewAuthHandler(authService)
	syncHandler := handlers.NewSyncHandler(syncService)
	repositoryHandler := handlers.NewRepositoryHandler(repositoryService)
	pullRequestHandler := handlers.NewPullRequestHandler(pullRequestService, reviewService)
	commentHandler := handlers.NewCommentHandler(commentService)
	userHandler := handlers.NewUserHandler(userService)
	exportHandler := handlers.NewExportHandler(commentService, exportService, importService)
	aiHandler := handlers.NewAIHandler(aiService, pullRequestService, commentService)
	cacheHandler := handlers.NewCacheHandler(cacheService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/device/start", authHandler.StartDeviceFlow)
		auth.POST("/device/poll", authHandler.PollDeviceFlow)
		auth.GET("/status", authHandler.Status)
		auth.POST("/signout", authHandler.SignOut)
	}

	sync := router.Group("/sync")
	sync.Use(middleware.AuthRequired(authService))
	{
		sync.POST("/repositories", syncHandler.SyncRepositories)
		sync.POST("/repositories/:id/pulls", syncHandler.SyncPullRequests)
		sync.POST("/pulls/:id/comments", syncHandler.SyncComments)
		sync.GET("/status", syncHandler.Status)
	}

	repos := router.Group("/repositories")
	{
		repos.GET("", repositoryHandler.List)
		repos.GET("/search", repositoryHandler.Search)
		repos.GET("/by-name/:owner/:name", repositoryHandler.GetByFullName)
		repos.GET("/:id", repositoryHandler.Get)
		repos.DELETE("/:id", repositoryHandler.Delete)
		repos.GET("/:id/pulls", pullRequestHandler.ListForRepository)
		repos.GET("/:id/pulls/:number", pullRequestHandler.GetByNumber)
	}

	router.GET("/users/:login", userHandler.Get)

	pulls := router.Group("/pulls")
	{
		pulls.GET("/:id", pullRequestHandler.Get)
		pulls.GET("/:id/reviews", pullRequestHandler.Reviews)
		pulls.GET("/:id/comments", commentHandler.ListForPullRequest)
		pulls.GET("/:id/ai/review", aiHandler.SuggestReview)
		pulls.GET("/:id/ai/summary", aiHandler.SummarizeThread)
	}

	comments := router.Group("/comments")
	{
		comments.GET("/search", commentHandler.Search)
		comments.GET("/:id", commentHandler.Get)
		comments.GET("/:id/thread", commentHandler.Thread)
		comments.POST("/:id/duplicate", commentHandler.Duplicate)
	}

	export := router.Group("/export")
	export.Use(middleware.AuthRequired(authService))
	{
		export.GET("/comments", exportHandler.ExportComments)
		export.POST("/comments", exportHandler.ImportComments)
	}

	cache := router.Group("/cache")
	{
		cache.GET("/statistics", cacheHandler.Statistics)
		cache.POST("/clear", cacheHandler.Clear)
	}
}
