package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/call-manager-team/call-manager/pkg/validator"

	"github.com/call-manager-team/call-manager/internal/adapter/handler"
	"github.com/call-manager-team/call-manager/internal/adapter/repository"
	"github.com/call-manager-team/call-manager/internal/infrastructure/cache"
	"github.com/call-manager-team/call-manager/internal/infrastructure/database"
	"github.com/call-manager-team/call-manager/internal/infrastructure/external/livekit"
	"github.com/call-manager-team/call-manager/internal/infrastructure/external/oauth"
	"github.com/call-manager-team/call-manager/internal/infrastructure/storage"
	"github.com/call-manager-team/call-manager/internal/usecase/analysis"
	"github.com/call-manager-team/call-manager/internal/usecase/auth"
	"github.com/call-manager-team/call-manager/internal/usecase/meeting"
	"github.com/call-manager-team/call-manager/internal/usecase/player"
	"github.com/call-manager-team/call-manager/pkg/config"
	"github.com/call-manager-team/call-manager/pkg/jwt"
	"github.com/call-manager-team/call-manager/pkg/videointel"
)

// @title           Call Manager API
// @version         1.0
// @description     API for video meetings with recording, video annotation analysis and synchronized playback.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Apply migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate in CI/CD.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize MinIO object storage
	log.Println("🗄️  Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	recordingRepo := repository.NewRecordingRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	// Initialize OAuth provider
	log.Println("🔐 Initializing OAuth provider...")
	googleProvider := oauth.NewGoogleProvider(
		cfg.OAuth.Google.ClientID,
		cfg.OAuth.Google.ClientSecret,
		cfg.OAuth.Google.RedirectURL,
	)

	// Initialize state manager with Redis for CSRF protection
	stateManager := oauth.NewStateManager(redisClient)

	// Initialize JWT manager
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize OAuth service
	oauthService := auth.NewOAuthService(
		userRepo,
		sessionRepo,
		googleProvider,
		stateManager,
		jwtManager,
	)

	// Initialize LiveKit client
	log.Println("🎥 Initializing LiveKit client...")
	livekitClient := livekit.NewClient(
		cfg.LiveKit.URL,
		cfg.LiveKit.APIKey,
		cfg.LiveKit.APISecret,
		cfg.LiveKit.UseMock,
	)
	if cfg.LiveKit.UseMock {
		log.Println("⚠️  LiveKit running in MOCK mode (no real server needed)")
	} else {
		log.Printf("✅ LiveKit connected to: %s", cfg.LiveKit.URL)
	}

	// Initialize services
	log.Println("✨ Initializing services...")
	meetingService := meeting.NewMeetingService(meetingRepo, participantRepo, recordingRepo, livekitClient, cfg, logger)
	videoIntelClient := videointel.NewClient(&cfg.VideoIntel)
	analysisService := analysis.NewAnalysisService(analysisRepo, recordingRepo, minioClient, redisClient, videoIntelClient, cfg, logger)
	playerService := player.NewPlayerService(analysisService, cfg, logger)

	// Start background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if err := analysisService.StartWorkerPool(workerCtx, cfg.Analysis.Workers); err != nil {
		log.Fatalf("Failed to start annotation worker pool: %v", err)
	}
	if err := playerService.StartReaper(workerCtx); err != nil {
		log.Fatalf("Failed to start session reaper: %v", err)
	}

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	authHandler := handler.NewAuth(oauthService)
	meetingHandler := handler.NewMeetingHandler(meetingService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	playerHandler := handler.NewPlayerHandler(playerService)
	webhookHandler := handler.NewWebhookHandler(
		meetingService,
		analysisService,
		cfg.LiveKit.APIKey,
		cfg.LiveKit.APISecret,
		cfg.VideoIntel.WebhookSecret,
		logger,
	)
	storageHandler := handler.NewStorageHandler(minioClient, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(
		cfg,
		oauthService,
		authHandler,
		meetingHandler,
		analysisHandler,
		playerHandler,
		webhookHandler,
		storageHandler,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if err := playerService.StopReaper(); err != nil {
		logger.Warn("failed to stop session reaper", zap.Error(err))
	}
	if err := analysisService.StopWorkerPool(); err != nil {
		logger.Warn("failed to stop annotation worker pool", zap.Error(err))
	}
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
