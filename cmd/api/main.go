package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobby-backend/config"
	_ "jobby-backend/docs" // Important for Swagger
	"jobby-backend/internal/delivery/http/middleware"
	v1 "jobby-backend/internal/delivery/http/v1"
	"jobby-backend/internal/domain"
	"jobby-backend/internal/repository/postgres"
	"jobby-backend/internal/repository/redisstore"
	"jobby-backend/internal/usecase"
	"jobby-backend/pkg/audit"
	"jobby-backend/pkg/auth"
	"jobby-backend/pkg/database"
	"jobby-backend/pkg/events"
	"jobby-backend/pkg/imaging"
	"jobby-backend/pkg/logger"
	"jobby-backend/pkg/redis"
	"jobby-backend/pkg/security/antivirus"
	"jobby-backend/pkg/storage"

	goredis "github.com/redis/go-redis/v9"
)

// @title           Jobby Candidate Profile API
// @version         1.0
// @description     Candidate profile, contact and image endpoints behind the Jobby profile page.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting jobby profile backend", "port", cfg.Port, "env", cfg.Env)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	redisClient, err := redis.Connect(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Log.Warn("Redis not configured, running without profile cache")
	case err != nil:
		logger.Log.Warn("Redis unavailable, running without profile cache", "error", err)
	default:
		defer redisClient.Close()
	}

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	profileCache := redisstore.NewProfileCache(redisClient, cfg.ProfileCacheTTL)
	uploadLimiter := redisstore.NewUploadLimiter(redisClient, cfg.UploadPerMinute, cfg.UploadPerDay)

	// 6. Setup Image Storage
	imageStore, imageHost, err := newImageStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up image storage", "store", cfg.ImageStore, "error", err)
		os.Exit(1)
	}

	// 7. Setup Events and Audit
	publisher, err := events.NewPublisher(cfg.RabbitMQURL, cfg.EventExchange)
	if err != nil {
		logger.Log.Error("Failed to connect event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	auditLog := audit.New("jobby-profile", cfg.Env)
	defer auditLog.Sync()

	// 8. Setup UseCases
	uploadOpts := usecase.UploadOptions{
		MaxBytes:     cfg.UploadMaxBytes,
		MaxDimension: cfg.UploadMaxDimension,
		Quality:      imaging.DefaultQuality,
	}
	var clamav *antivirus.ClamAV
	if cfg.ClamAVAddr != "" {
		clamav = antivirus.NewClamAV(cfg.ClamAVAddr, 30*time.Second)
		uploadOpts.Scanner = clamav
	}

	authUC := usecase.NewAuthUsecase(userRepo)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, profileCache, publisher, auditLog)
	uploadUC := usecase.NewUploadUsecase(imageStore, uploadLimiter, auditLog, uploadOpts)
	checks := map[string]usecase.Pinger{
		"database": dbPool.Ping,
		"redis":    redisPinger(redisClient),
	}
	if clamav != nil {
		checks["clamav"] = clamav.Ping
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 9. Setup Auth Provider (JWKS)
	var jwksProvider *auth.Provider
	if jwksURL := cfg.JWKSURL(); jwksURL != "" {
		jwksProvider = auth.NewProvider(jwksURL)
	}

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		CandidateUC:  candidateUC,
		UploadUC:     uploadUC,
		HealthUC:     healthUC,
		JWKSProvider: jwksProvider,
		RateLimiter:  middleware.NewRateLimiter(redisClient, auditLog),
		Config:       cfg,
		ImageHost:    imageHost,
	})

	// 11. Start Server
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

// newImageStore returns the configured store and the origin its URLs use.
func newImageStore(ctx context.Context, cfg *config.Config) (domain.ImageStore, string, error) {
	if cfg.ImageStore == "cloudinary" {
		store, err := storage.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			return nil, "", err
		}
		return store, "https://res.cloudinary.com", nil
	}

	s3cfg := storage.Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	}
	client, err := storage.NewS3Client(ctx, s3cfg)
	if err != nil {
		return nil, "", err
	}
	store := storage.NewImageStore(client, s3cfg)
	return store, originOf(store.URL("")), nil
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func redisPinger(client *goredis.Client) usecase.Pinger {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return redis.HealthCheck(ctx, client)
	}
}
