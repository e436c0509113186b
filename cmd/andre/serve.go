package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/andre/internal/api"
	"github.com/dukerupert/andre/internal/config"
	"github.com/dukerupert/andre/internal/database"
	"github.com/dukerupert/andre/internal/logging"
	"github.com/dukerupert/andre/internal/middleware"
	"github.com/dukerupert/andre/internal/server"
)

const (
	cleanupInterval = 5 * time.Minute
	visitorIdle     = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Setup(cfg.Logging.Level)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	client := api.NewClient(cfg.API.BaseURL,
		api.WithVersion(api.Version(cfg.API.Version)),
		api.WithTimeout(cfg.API.GetTimeout()),
		api.WithRateLimit(cfg.API.RateLimit),
		api.WithLogger(logger.With("component", "api")),
	)

	srv, err := server.New(db, client, cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupLoop(ctx, srv.RateLimiter())

	errCh := make(chan error, 1)
	go func() {
		logger.Info("andre running",
			"addr", httpServer.Addr,
			"api", cfg.API.BaseURL,
			"api_version", cfg.API.Version,
			"sentiment_mode", cfg.Sentiment.Mode,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func cleanupLoop(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.Cleanup(visitorIdle)
			slog.Debug("rate limiter cleanup", "visitors", rl.Len())
		case <-ctx.Done():
			return
		}
	}
}
