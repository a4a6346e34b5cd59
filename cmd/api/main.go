package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cine-pos/internal/checkout"
	"cine-pos/internal/clock"
	"cine-pos/internal/config"
	"cine-pos/internal/database"
	"cine-pos/internal/handler"
	"cine-pos/internal/offer"
	"cine-pos/internal/queue"
	"cine-pos/internal/repository"
	"cine-pos/internal/router"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting cine-pos API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	offers, err := newOfferSource(ctx, cfg.Offers, catalogRepo, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize offer source: %w", err)
	}

	publisher := newPublisher(cfg.AMQP, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close order publisher")
		}
	}()

	// Initialize checkout
	clk := clock.NewReal()
	sessionConfig := checkout.Config{
		ReservationTTL:   cfg.Session.ReservationTTL,
		RefreshInterval:  cfg.Session.RefreshInterval,
		IdleTimeout:      cfg.Session.IdleTimeout,
		LoyaltyThreshold: cfg.Session.LoyaltyThreshold,
	}
	registry := checkout.NewRegistry(sessionConfig, clk, catalogRepo, offers, logger)
	defer registry.Close()
	checkoutService := checkout.NewService(orderRepo, customerRepo, publisher, clk, logger)

	// Initialize HTTP handlers
	catalogHandler := handler.NewCatalogHandler(catalogRepo, offers, orderRepo, clk, logger)
	customerHandler := handler.NewCustomerHandler(checkoutService, logger)
	sessionHandler := handler.NewSessionHandler(registry, checkoutService, logger)

	// Initialize router
	mux := router.New(catalogHandler, customerHandler, sessionHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().
			Int("open_sessions", registry.Len()).
			Msg("server shutdown completed")
	}

	return nil
}

// newOfferSource picks where sessions read offers from. An S3 feed falls
// back to the local copy when the bucket cannot be read.
func newOfferSource(ctx context.Context, cfg config.OfferConfig, catalog offer.Source, logger zerolog.Logger) (offer.Source, error) {
	switch cfg.Source {
	case config.OfferSourceFile:
		logger.Info().Str("path", cfg.File).Msg("reading offers from local feed")
		return offer.NewFeedSource(offer.NewFileLoader(logger), cfg.File, cfg.CacheTTL, clock.NewReal(), logger), nil

	case config.OfferSourceS3:
		var primary offer.Loader
		s3Loader, err := offer.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local feed only")
		} else {
			primary = s3Loader
		}
		loader := offer.NewFallbackLoader(primary, offer.NewFileLoader(logger), cfg.File, logger)
		return offer.NewFeedSource(loader, cfg.S3Key, cfg.CacheTTL, clock.NewReal(), logger), nil

	case config.OfferSourceDB:
		return catalog, nil
	}
	return nil, fmt.Errorf("unknown offer source %q", cfg.Source)
}

func newPublisher(cfg config.AMQPConfig, logger zerolog.Logger) queue.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("order events disabled")
		return queue.NoopPublisher{}
	}
	return queue.NewRabbitPublisher(cfg.URL, cfg.Queue, logger)
}
