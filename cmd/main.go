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

	"github.com/openleague/league-system/brackets"
	"github.com/openleague/league-system/config"
	"github.com/openleague/league-system/db"
	_ "github.com/openleague/league-system/docs"
	"github.com/openleague/league-system/handlers"
	"github.com/openleague/league-system/repositories"
	"github.com/openleague/league-system/routes"
	"github.com/openleague/league-system/services"
	"github.com/openleague/league-system/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.Connect(cfg.DatabaseURL, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to configure object storage: %w", err)
		}
		logger.Info("object storage configured")
	} else {
		logger.Warn("object storage not configured, logo uploads disabled")
	}

	txRunner := repositories.NewTxRunner(database)
	tournamentRepo := repositories.NewPostgresTournamentRepository(database)
	participantRepo := repositories.NewPostgresParticipantRepository(database)
	matchRepo := repositories.NewPostgresMatchRepository(database)
	groupRepo := repositories.NewPostgresFFAGroupRepository(database)
	pointEntryRepo := repositories.NewPostgresPointEntryRepository(database)
	eventRepo := repositories.NewPostgresEventRepository(database)
	teamRepo := repositories.NewPostgresTeamRepository(database)
	userRepo := repositories.NewPostgresUserRepository(database)

	hub := brackets.NewHub(logger)
	go hub.Run()

	awardService := services.NewAwardService(pointEntryRepo, logger)
	tournamentService := services.NewTournamentService(
		txRunner, tournamentRepo, participantRepo, matchRepo, groupRepo,
		awardService, hub, logger,
	)
	viewService := services.NewViewService(
		tournamentRepo, participantRepo, matchRepo, groupRepo,
		pointEntryRepo, teamRepo, userRepo,
	)
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, logger)
	eventService := services.NewEventService(eventRepo, teamRepo, uploader, logger)

	router := routes.SetupRoutes(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Tournament: handlers.NewTournamentHandler(tournamentService, viewService),
		Event:      handlers.NewEventHandler(eventService, viewService, tournamentService),
		WebSocket:  handlers.NewWebSocketHandler(hub, logger),
	}, authService)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	logger.Info("starting server", slog.Int("port", cfg.ServerPort))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
