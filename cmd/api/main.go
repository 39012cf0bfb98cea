package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/mediagallery-backend/api/routes"
	"github.com/angelmondragon/mediagallery-backend/internal/media"
	"github.com/angelmondragon/mediagallery-backend/pkg/config"
	"github.com/angelmondragon/mediagallery-backend/pkg/db"
	"github.com/angelmondragon/mediagallery-backend/pkg/logger"
	"github.com/angelmondragon/mediagallery-backend/pkg/metrics"
	"github.com/angelmondragon/mediagallery-backend/pkg/migrate"
	"github.com/angelmondragon/mediagallery-backend/pkg/storage"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(runCtx, cfg.DB, logg)
	if err != nil {
		logg.Error(runCtx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(runCtx, cfg, logg, dbClient); err != nil {
		logg.Error(runCtx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	store, err := storage.New(runCtx, cfg.Storage)
	if err != nil {
		logg.Error(runCtx, "failed to bootstrap storage", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		Repo:  media.NewRepository(dbClient.DB()),
		Tx:    dbClient,
		Store: store,
		Policy: media.NewPolicy(
			cfg.Media.ImageExtensions,
			cfg.Media.VideoExtensions,
			cfg.Media.MaxUploadBytes(),
		),
		Metrics:      metrics.NewMediaMetrics(prometheus.DefaultRegisterer),
		Logger:       logg,
		PublicPrefix: cfg.Storage.PublicPrefix,
	})
	if err != nil {
		logg.Error(runCtx, "failed to create media service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"db_driver":    dbClient.Driver(),
		"storage_type": store.Type(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			store,
			mediaService,
			metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			nil,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok && err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
		return
	case <-runCtx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}
