package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everydog-league/api/internal/config"
	"github.com/everydog-league/api/internal/handler"
	"github.com/everydog-league/api/internal/metrics"
	"github.com/everydog-league/api/internal/service"
	"github.com/everydog-league/api/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort int

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

On start the store is connected, seeded with the fixture events when it holds
none, and indexed. The server shuts down gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default: 8001)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)

	ctx := context.Background()
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	metrics.Init(Version, cfg.Store.Driver)

	store, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := bootstrapStore(ctx, store, cfg.SeedFile, logger); err != nil {
		return err
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:             logger,
		CORSOrigins:        cfg.Server.AllowedOrigins(),
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
		Store:              store,
		Events:             service.NewEventService(store),
		Newsletter:         service.NewNewsletterService(store),
		Contact:            service.NewContactService(store),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("store", cfg.Store.Driver).
			Str("version", Version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return gracefulShutdown(srv, logger)
}

func gracefulShutdown(srv *http.Server, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
