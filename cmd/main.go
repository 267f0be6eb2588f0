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

	"github.com/courtside/tournament-engine/config"
	"github.com/courtside/tournament-engine/db"
	"github.com/courtside/tournament-engine/engine"
	"github.com/courtside/tournament-engine/handlers"
	"github.com/courtside/tournament-engine/repositories"
	api "github.com/courtside/tournament-engine/routes"
	"github.com/courtside/tournament-engine/services"
	"github.com/courtside/tournament-engine/storage"
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
		}
	}()
	logger.Info("database connection established")

	// Results archive is optional: run without it when R2 is not configured.
	var uploader storage.FileUploader
	if cfg.ArchiveEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 results archive enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("R2 results archive disabled")
	}

	wsHub := engine.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)

	archiver := services.NewResultsArchiver(uploader, matchRepo, teamRepo, logger)
	teamService := services.NewTeamService(dbConn, teamRepo, bracketRepo, logger)
	poolService := services.NewPoolService(dbConn, poolRepo, teamRepo, matchRepo, wsHub, logger)
	matchService := services.NewMatchService(dbConn, matchRepo, poolRepo, bracketRepo, archiver, wsHub, logger)
	bracketService := services.NewBracketService(dbConn, bracketRepo, matchRepo, poolRepo, teamRepo, archiver, wsHub, logger)
	standingsService := services.NewStandingsService(poolRepo, teamRepo, matchRepo)
	logger.Info("services initialized")

	teamHandler := handlers.NewTeamHandler(teamService)
	poolHandler := handlers.NewPoolHandler(poolService)
	matchHandler := handlers.NewMatchHandler(matchService)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, teamHandler, poolHandler, matchHandler, bracketHandler, standingsHandler, webSocketHandler)
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
}
