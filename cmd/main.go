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

	"github.com/Dosada05/rl-prono/config"
	"github.com/Dosada05/rl-prono/db"
	"github.com/Dosada05/rl-prono/handlers"
	"github.com/Dosada05/rl-prono/middleware"
	"github.com/Dosada05/rl-prono/notifications"
	"github.com/Dosada05/rl-prono/repositories"
	api "github.com/Dosada05/rl-prono/routes"
	"github.com/Dosada05/rl-prono/services"
	"github.com/Dosada05/rl-prono/storage"
	"github.com/go-chi/chi/v5"
)

const (
	rateLimiterSweepInterval = time.Minute
	rateLimiterIdleTTL       = 10 * time.Minute
	shutdownTimeout          = 15 * time.Second
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("avatar_uploads", storageConfig(cfg).Enabled()),
		slog.Bool("email_invites", cfg.SMTPEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(ctx, cfg.DatabaseURL, 5*time.Second, db.DefaultPoolOptions, logger)
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

	// Загрузка аватаров в R2 - только если настроена
	var uploader storage.FileUploader
	if r2cfg := storageConfig(cfg); r2cfg.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2cfg)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	}

	var mailer services.InviteMailer
	if cfg.SMTPEnabled() {
		emailService, err := services.NewEmailService(cfg)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		mailer = emailService
	}

	// WebSocket hub уведомлений
	hub := notifications.NewHub(logger)
	go hub.Run(ctx)

	// Инициализация репозиториев
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	privateLeagueRepo := repositories.NewPostgresPrivateLeagueRepository(dbConn)

	// Инициализация сервисов
	clock := services.Clock(time.Now)
	leagueService := services.NewLeagueService(leagueRepo, matchRepo, predictionRepo, teamRepo, clock)
	matchService := services.NewMatchService(matchRepo, predictionRepo, clock)
	predictionService := services.NewPredictionService(matchRepo, predictionRepo, hub, clock, logger)
	leaderboardService := services.NewLeaderboardService(profileRepo)
	profileService := services.NewProfileService(profileRepo, uploader, logger)
	privateLeagueService := services.NewPrivateLeagueService(privateLeagueRepo, leagueRepo, profileRepo, mailer, hub, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.RunJanitor(ctx, rateLimiterSweepInterval, rateLimiterIdleTTL)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router,
		api.Handlers{
			League:        handlers.NewLeagueHandler(leagueService),
			Prediction:    handlers.NewPredictionHandler(matchService, predictionService),
			Leaderboard:   handlers.NewLeaderboardHandler(leaderboardService),
			Profile:       handlers.NewProfileHandler(profileService),
			PrivateLeague: handlers.NewPrivateLeagueHandler(privateLeagueService),
			WebSocket:     handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins),
			Health:        handlers.NewHealthHandler(dbConn),
		},
		api.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Auth:           middleware.NewAuthenticator([]byte(cfg.JWTSecretKey), logger),
			RateLimiter:    limiter,
		},
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}

func storageConfig(cfg *config.Config) storage.CloudflareR2UploaderConfig {
	return storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
}
