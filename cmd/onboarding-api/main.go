package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
	"capitalflow/founder-portal/founder-portal-backend/internal/config"
	"capitalflow/founder-portal/founder-portal-backend/internal/dashboard"
	"capitalflow/founder-portal/founder-portal-backend/internal/notifications"
	"capitalflow/founder-portal/founder-portal-backend/internal/onboarding"
	"capitalflow/founder-portal/founder-portal-backend/internal/submission"
	"capitalflow/founder-portal/founder-portal-backend/internal/uploads"
	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

func main() {
	// Load .env if present
	godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		panic(err)
	}

	// Initialize logger
	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// Backend client
	client := marketplace.NewClient(marketplace.ClientConfig{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    time.Duration(cfg.Backend.RequestTimeout),
		MaxRetries: cfg.Backend.MaxRetries,
	}, logger)

	// Draft store
	store, cleanup, err := newDraftStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize draft store", zap.Error(err))
	}
	defer cleanup()

	// Onboarding wizard
	uploadMgr := uploads.NewManager(uploads.Limits{
		MaxFileBytes:  cfg.Uploads.MaxFileBytes,
		MaxFiles:      cfg.Uploads.MaxFilesPerStep,
		AcceptedTypes: cfg.Uploads.AcceptedTypes,
	})
	orchestrator := submission.NewOrchestrator(client, logger, cfg.Uploads.MaxConcurrentUploads)
	onboardingService := onboarding.NewService(store, uploadMgr, orchestrator, logger)
	onboardingHandler := onboarding.NewHandler(onboardingService, logger)

	// Dashboard
	dashboardService := dashboard.NewService(client, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)

	// Notification push
	hub := notifications.NewHub(client, 15*time.Second, logger)
	defer hub.Close()

	// Expired draft sweeper
	janitor := onboarding.NewJanitor(store, time.Duration(cfg.Drafts.TTL), logger)
	if err := janitor.Start(cfg.Drafts.SweepSchedule); err != nil {
		logger.Fatal("Failed to start draft janitor", zap.Error(err))
	}
	defer janitor.Stop()

	// Setup Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	api.Use(auth.Middleware())
	{
		onboardingHandler.RegisterRoutes(api)
		dashboardHandler.RegisterRoutes(api)
	}

	// Websocket notification stream
	router.GET("/ws/notifications", auth.Middleware(), func(c *gin.Context) {
		sess, ok := auth.FromContext(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if _, err := hub.HandleConnection(c.Writer, c.Request, sess); err != nil {
			logger.Warn("Websocket upgrade failed", zap.Error(err))
		}
	})

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", cfg.Server.GetServerAddr()),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("draft_store", cfg.Drafts.Store))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	if level == "debug" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zcfg.Level = lvl
	}
	logger, _ := zcfg.Build()
	return logger
}

// newDraftStore builds the configured store. Memory drafts vanish on restart;
// Postgres drafts survive it.
func newDraftStore(cfg *config.Config, logger *zap.Logger) (onboarding.DraftStore, func(), error) {
	switch cfg.Drafts.Store {
	case "postgres":
		db, err := sqlx.Connect("postgres", cfg.Drafts.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		store := onboarding.NewPostgresStore(db)
		if err := store.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Using postgres draft store")
		return store, func() { db.Close() }, nil
	default:
		logger.Info("Using in-memory draft store")
		return onboarding.NewMemoryStore(), func() {}, nil
	}
}
