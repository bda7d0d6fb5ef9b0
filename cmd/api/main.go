package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cv-tracker-backend/config"
	_ "cv-tracker-backend/docs" // Important for Swagger
	v1 "cv-tracker-backend/internal/delivery/http/v1"
	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/internal/repository/memory"
	"cv-tracker-backend/internal/repository/postgres"
	"cv-tracker-backend/internal/repository/rediscache"
	"cv-tracker-backend/internal/usecase"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/database"
	"cv-tracker-backend/pkg/events"
	"cv-tracker-backend/pkg/logger"
	"cv-tracker-backend/pkg/redis"
	"cv-tracker-backend/pkg/security"
	"cv-tracker-backend/pkg/storage"
	"cv-tracker-backend/pkg/validation"
)

type repositories struct {
	users       domain.UserRepository
	curriculums domain.CurriculumRepository
	listas      domain.ListaRepository
	membership  domain.MembershipRepository
}

// @title           CV Tracker API
// @version         1.0
// @description     Curriculums, client listas and the membership between them.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Loggers
	logger.Init(cfg.IsRelease())
	logger.Log.Info("Starting cv-tracker backend", "port", cfg.Port)
	secLog := security.InitSecurityLogger("cv-tracker", cfg.GinMode)
	defer secLog.Sync()

	ctx := context.Background()
	checks := map[string]usecase.HealthCheckFunc{}

	// 3. Setup Database (in-memory store when DATABASE_URL is empty)
	var repos repositories
	if cfg.DBUrl != "" {
		if cfg.RunMigrations {
			if err := database.RunMigrations(ctx, cfg.DBUrl); err != nil {
				logger.Log.Error("Failed to run migrations", "error", err)
				os.Exit(1)
			}
			logger.Log.Info("Migrations applied")
		}

		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		repos = repositories{
			users:       postgres.NewUserRepository(dbPool),
			curriculums: postgres.NewCurriculumRepository(dbPool),
			listas:      postgres.NewListaRepository(dbPool),
			membership:  postgres.NewMembershipRepository(dbPool),
		}
		checks["database"] = dbPool.Ping
	} else {
		store := memory.NewStore()
		repos = repositories{
			users:       memory.NewUserRepository(store),
			curriculums: memory.NewCurriculumRepository(store),
			listas:      memory.NewListaRepository(store),
			membership:  memory.NewMembershipRepository(store),
		}
	}

	// 4. Setup Redis (listas cache + rate limiting)
	var listaCache domain.ListaCache
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		if !errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis unavailable, continuing without cache", "error", err)
		}
	} else {
		defer redis.Close()
		listaCache = rediscache.NewListaCache(redis.Client(), time.Duration(cfg.ListasCacheTTLSeconds)*time.Second)
		checks["redis"] = redis.HealthCheck
	}

	// 5. Setup Attachment Storage
	var objectStore storage.ObjectStore
	var filesDir string
	switch cfg.StorageDriver {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Provider:        storage.S3Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			PublicURL:       cfg.StoragePublicURL,
		})
		if err != nil {
			logger.Log.Error("Failed to configure S3 storage", "error", err)
			os.Exit(1)
		}
		objectStore = s3Store
		checks["storage"] = s3Store.Ping
	default:
		localStore, err := storage.NewLocalStore(cfg.StorageLocalDir, cfg.StoragePublicURL)
		if err != nil {
			logger.Log.Error("Failed to prepare local storage", "error", err)
			os.Exit(1)
		}
		objectStore = localStore
		filesDir = localStore.BaseDir()
	}

	// 6. Setup Event Publisher
	var publisher domain.EventPublisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			logger.Log.Warn("RabbitMQ unavailable, events disabled", "error", err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
		}
	}

	// 7. Setup UseCases
	validate := validation.New()
	tokens := security.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	attachments := usecase.NewAttachmentService(objectStore, cfg.MaxAttachmentMB<<20, cfg.ImageMaxDimension, secLog)

	authUC := usecase.NewAuthUsecase(repos.users, tokens)
	curriculumUC := usecase.NewCurriculumUsecase(repos.curriculums, repos.listas, attachments, listaCache, publisher, validate)
	listaUC := usecase.NewListaUsecase(repos.listas, repos.curriculums, listaCache, publisher, validate)
	membershipUC := usecase.NewMembershipUsecase(repos.membership, repos.listas, listaCache, publisher)
	healthUC := usecase.NewHealthUsecase(checks)

	seedAdmin(ctx, authUC, cfg)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		CurriculumUC: curriculumUC,
		ListaUC:      listaUC,
		MembershipUC: membershipUC,
		HealthUC:     healthUC,
		Tokens:       tokens,
		SecLogger:    secLog,
		FilesDir:     filesDir,
		Config:       cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// seedAdmin creates the configured admin account on first start. An
// existing account is left untouched.
func seedAdmin(ctx context.Context, authUC domain.AuthUsecase, cfg *config.Config) {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return
	}
	_, err := authUC.Register(ctx, cfg.SeedAdminEmail, "Administrador", cfg.SeedAdminPassword, domain.RoleAdmin)
	var appErr *apperror.AppError
	switch {
	case err == nil:
		logger.Log.Info("Admin user seeded", "email", security.MaskEmail(cfg.SeedAdminEmail))
	case errors.As(err, &appErr) && appErr.Code == http.StatusConflict:
		logger.Log.Debug("Admin user already exists")
	default:
		logger.Log.Error("Failed to seed admin user", "error", err)
	}
}
