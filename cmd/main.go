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

	"github.com/Z5Jonathan-maker/Eden-2-sub001/config"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/db"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/handlers"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/live"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/repositories"
	api "github.com/Z5Jonathan-maker/Eden-2-sub001/routes"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/services"
	"github.com/Z5Jonathan-maker/Eden-2-sub001/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
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

	var archive storage.Uploader
	if cfg.ArchiveEnabled() {
		archive, err = storage.NewS3Archive(storage.S3ArchiveConfig{
			Endpoint:        cfg.ArchiveEndpoint,
			Region:          cfg.ArchiveRegion,
			AccessKeyID:     cfg.ArchiveAccessKeyID,
			SecretAccessKey: cfg.ArchiveSecretAccessKey,
			BucketName:      cfg.ArchiveBucketName,
			PublicBaseURL:   cfg.ArchivePublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize settlement archive", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("settlement archive initialized", slog.String("bucket", cfg.ArchiveBucketName))
	} else {
		logger.Info("settlement archive disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("live standings hub started")

	metricRepo := repositories.NewPostgresMetricRepository(dbConn)
	competitionRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	ruleRepo := repositories.NewPostgresRuleRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	eventRepo := repositories.NewPostgresMetricEventRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	badgeRepo := repositories.NewPostgresBadgeRepository(dbConn)
	userBadgeRepo := repositories.NewPostgresUserBadgeRepository(dbConn)
	notificationRepo := repositories.NewPostgresNotificationRepository(dbConn)
	pointsRepo := repositories.NewPostgresUserPointsRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	standingRepo := repositories.NewPostgresSeasonStandingRepository(dbConn)
	logger.Info("repositories initialized")

	rankService := services.NewRankService(participantRepo)
	ruleService := services.NewRuleService(participantRepo, notificationRepo, logger)
	eventService := services.NewEventService(
		metricRepo, competitionRepo, eventRepo, participantRepo, ruleRepo,
		rankService, ruleService, wsHub, logger,
	)
	settlementService := services.NewSettlementService(
		competitionRepo, ruleRepo, participantRepo, resultRepo,
		badgeRepo, userBadgeRepo, notificationRepo, pointsRepo,
		standingRepo, eventRepo, archive, wsHub, logger,
	)
	competitionService := services.NewCompetitionService(
		competitionRepo, metricRepo, seasonRepo, ruleRepo, participantRepo, standingRepo, logger,
	)
	profileService := services.NewProfileService(resultRepo, userBadgeRepo, pointsRepo, notificationRepo)
	logger.Info("services initialized")

	// Expired active competitions are settled automatically.
	go func() {
		ticker := time.NewTicker(cfg.SchedulerInterval)
		defer ticker.Stop()
		logger.Info("auto-close scheduler started", slog.Duration("interval", cfg.SchedulerInterval))

		if err := settlementService.CloseExpired(context.Background(), time.Now().UTC()); err != nil {
			logger.Error("scheduler: initial sweep failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := settlementService.CloseExpired(context.Background(), time.Now().UTC()); err != nil {
				logger.Error("scheduler: sweep failed", slog.Any("error", err))
			}
		}
	}()

	eventHandler := handlers.NewEventHandler(eventService)
	competitionHandler := handlers.NewCompetitionHandler(competitionService, settlementService, resultRepo)
	seasonHandler := handlers.NewSeasonHandler(competitionService, settlementService)
	profileHandler := handlers.NewProfileHandler(profileService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, competitionService, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		eventHandler,
		competitionHandler,
		seasonHandler,
		profileHandler,
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
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
