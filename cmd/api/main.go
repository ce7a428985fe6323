package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fronteira/internal/config"
	"fronteira/internal/database"
	"fronteira/internal/handler"
	"fronteira/internal/metrics"
	"fronteira/internal/model"
	"fronteira/internal/notify"
	"fronteira/internal/repository"
	"fronteira/internal/router"
	"fronteira/internal/service"
	"fronteira/internal/tracking"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting fronteira API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	deliveryRepo := repository.NewDeliveryRepository(pool, logger)
	driverRepo := repository.NewDriverRepository(pool, logger)
	settingsRepo := repository.NewSettingsRepository(pool, logger)

	// Initialize the status-change publisher
	var publisher notify.Publisher
	if cfg.Kafka.Enabled {
		publisher, err = notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
	} else {
		publisher = notify.NewNopPublisher()
		logger.Info().Msg("kafka disabled, status changes will not be published")
	}
	defer publisher.Close()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegisterer(registry)

	// Tariff fallbacks used until the tenant writes its settings row
	defaults := model.StoreSettings{
		StoreLatitude:   cfg.Store.Latitude,
		StoreLongitude:  cfg.Store.Longitude,
		LocalBaseFee:    cfg.Store.LocalBaseFee,
		LocalPerKmFee:   cfg.Store.LocalPerKmFee,
		MaxLocalKm:      cfg.Store.MaxLocalKm,
		NationalFlatFee: cfg.Store.NationalFlat,
		FXRate:          cfg.Store.FXRate,
	}

	// Initialize services
	hub := tracking.NewHub()
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, customerRepo, deliveryRepo, settingsRepo, defaults, m, logger)
	fulfillmentService := service.NewFulfillmentService(orderRepo, deliveryRepo, driverRepo, publisher, m, logger)
	trackingService := service.NewTrackingService(driverRepo, deliveryRepo, hub, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	fulfillmentHandler := handler.NewFulfillmentHandler(fulfillmentService, logger)
	trackingHandler := handler.NewTrackingHandler(trackingService, hub, logger)

	// Initialize router
	mux := router.New(productHandler, orderHandler, fulfillmentHandler, trackingHandler, registry, cfg.Auth.APIKey, logger)

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

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
