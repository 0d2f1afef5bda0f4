package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/padelhub/padelhub-server/cache"
	"github.com/padelhub/padelhub-server/chat"
	"github.com/padelhub/padelhub-server/config"
	"github.com/padelhub/padelhub-server/db"
	"github.com/padelhub/padelhub-server/handlers"
	"github.com/padelhub/padelhub-server/push"
	"github.com/padelhub/padelhub-server/repositories"
	api "github.com/padelhub/padelhub-server/routes"
	"github.com/padelhub/padelhub-server/services"
	"github.com/padelhub/padelhub-server/storage"
)

const (
	matchReminderInterval = 10 * time.Minute
	imageCacheTTL         = 24 * time.Hour
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Picture uploads are optional; without R2 credentials the endpoints
	// respond with 503 instead of failing startup.
	var uploader storage.FileUploader
	if cfg.StorageConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, picture uploads disabled")
	}

	// Web push is likewise optional; without a VAPID key pair the sweep
	// still runs and records FAILED logs for observability.
	var pushSender push.Sender
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSender, err = push.NewWebPushSender(push.WebPushSenderConfig{
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			Subject:         cfg.VAPIDSubject,
		})
		if err != nil {
			logger.Error("failed to initialize web push sender", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("web push sender initialized")
	} else {
		logger.Warn("VAPID keys not configured, push delivery disabled")
	}

	chatHub := chat.NewHub()
	go chatHub.Run()
	logger.Info("chat hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	matchPlayerRepo := repositories.NewPostgresMatchPlayerRepository(dbConn)
	matchMessageRepo := repositories.NewPostgresMatchMessageRepository(dbConn)
	pushSubRepo := repositories.NewPostgresPushSubscriptionRepository(dbConn)
	notificationLogRepo := repositories.NewPostgresNotificationLogRepository(dbConn)
	logger.Info("repositories initialized")

	verifier := services.NewGoogleTokenVerifier(cfg.GoogleClientID)
	authService := services.NewAuthService(verifier, userRepo, cfg.JWTSecretKey, logger)
	userService := services.NewUserService(userRepo, uploader)
	clubService := services.NewClubService(clubRepo, uploader)
	matchService := services.NewMatchService(matchRepo, matchPlayerRepo)
	messageService := services.NewMessageService(matchMessageRepo, matchRepo, chatHub)
	notificationService := services.NewNotificationService(
		pushSubRepo,
		notificationLogRepo,
		matchRepo,
		matchPlayerRepo,
		pushSender,
		cfg.VAPIDPublicKey,
		logger,
	)
	imageProxyService := services.NewImageProxyService(cache.NewStore(imageCacheTTL), logger)
	logger.Info("services initialized")

	// Sweep for matches starting about an hour out and remind the rosters.
	go func() {
		ticker := time.NewTicker(matchReminderInterval)
		defer ticker.Stop()
		logger.Info("match reminder scheduler started", slog.Duration("interval", matchReminderInterval))

		if err := notificationService.CheckUpcomingMatches(context.Background()); err != nil {
			logger.Error("match reminder sweep failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := notificationService.CheckUpcomingMatches(context.Background()); err != nil {
				logger.Error("match reminder sweep failed", slog.Any("error", err))
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, matchService)
	clubHandler := handlers.NewClubHandler(clubService)
	matchHandler := handlers.NewMatchHandler(matchService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	imageProxyHandler := handlers.NewImageProxyHandler(imageProxyService)
	webSocketHandler := handlers.NewWebSocketHandler(chatHub, matchService, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authService,
		authHandler,
		userHandler,
		clubHandler,
		matchHandler,
		messageHandler,
		notificationHandler,
		imageProxyHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
