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

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/config"
	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/repositories"
	api "github.com/Dosada05/swiss-tournament/routes"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/Dosada05/swiss-tournament/storage"
	"github.com/go-chi/chi/v5"
)

// @title Swiss Tournament API
// @version 1.0
// @description Standings and next-round pairings for a Swiss-system tournament.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.RequireServerSecrets(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("db_driver", cfg.DatabaseDriver),
		slog.String("odd_player_policy", cfg.OddPlayerPolicy))

	oddPolicy, err := brackets.ParseOddPolicy(cfg.OddPlayerPolicy)
	if err != nil {
		logger.Error("invalid odd player policy", slog.Any("error", err))
		os.Exit(1)
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, 5*time.Second)
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

	version, err := db.Migrate(dbConn, cfg.DatabaseDriver)
	if err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema up to date", slog.Uint64("version", uint64(version)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var archive storage.FileUploader
	if cfg.Archive.Enabled() {
		archive, err = storage.NewS3Uploader(ctx, storage.S3UploaderConfig{
			Endpoint:        cfg.Archive.Endpoint,
			Region:          cfg.Archive.Region,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			BucketName:      cfg.Archive.BucketName,
			PublicBaseURL:   cfg.Archive.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize snapshot archive", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("snapshot archive enabled", slog.String("bucket", cfg.Archive.BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	playerRepo := repositories.NewPlayerRepository(dbConn)
	matchRepo := repositories.NewMatchRepository(dbConn)

	tournamentService := services.NewTournamentService(
		dbConn,
		playerRepo,
		matchRepo,
		brackets.NewSwissGenerator(oddPolicy),
		services.NewSnapshotPublisher(wsHub, archive, logger),
		logger,
	)
	authService := services.NewAuthService(cfg.OrganizerPasswordHash, cfg.JWTSecretKey, cfg.TokenTTL)
	if cfg.OrganizerPasswordHash == "" {
		logger.Warn("ORGANIZER_PASSWORD_HASH is not set; write endpoints are unreachable")
	}

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:      []byte(cfg.JWTSecretKey),
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:         logger,
		},
		handlers.NewAuthHandler(authService),
		handlers.NewPlayerHandler(tournamentService),
		handlers.NewMatchHandler(tournamentService),
		handlers.NewStandingsHandler(tournamentService),
		handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger),
	)
	logger.Info("Routes configured")

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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")

		if err := tournamentService.Flush(shutdownCtx); err != nil {
			logger.Warn("pending snapshots were not published", slog.Any("error", err))
		}
	}
	logger.Info("application exited")
}
