package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dulce-kart/internal/checkout"
	"dulce-kart/internal/config"
	"dulce-kart/internal/coupon"
	"dulce-kart/internal/database"
	"dulce-kart/internal/handler"
	"dulce-kart/internal/kvstore"
	"dulce-kart/internal/metrics"
	"dulce-kart/internal/orderclient"
	"dulce-kart/internal/pricing"
	"dulce-kart/internal/repository"
	"dulce-kart/internal/router"
	"dulce-kart/internal/service"
	"dulce-kart/internal/tracking"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("storage", cfg.Storage.Backend).Msg("starting dulce-kart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	location, err := cfg.Checkout.Location()
	if err != nil {
		return err
	}

	// Initialize database connection pool; the catalog always lives here
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	storage, closeStorage, err := newStorage(ctx, cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Backend, err)
	}
	defer closeStorage()

	coupons, err := newCouponTable(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon table: %w", err)
	}
	defer coupons.Close()
	logger.Info().Int("coupons", coupons.Size()).Msg("coupon table ready")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Domain components
	calculator := pricing.NewCalculator(pricing.DefaultZoneTable(), coupons)
	orders := orderclient.New(orderclient.Config{
		BaseURL: cfg.OrderService.BaseURL,
		Timeout: cfg.OrderService.Timeout,
	}, logger)
	lastOrders := tracking.NewLastOrderCache(storage)
	tracker := tracking.NewTracker(orders, lastOrders, logger)

	sessions := service.NewSessionRegistry(storage, checkout.Deps{
		Orders:     orders,
		Pricing:    calculator,
		LastOrders: lastOrders,
		Location:   location,
		Logger:     logger,
	}, logger)
	sessions.SetMaxSessions(cfg.Checkout.MaxSessions)
	go sessions.RunSweeper(ctx, cfg.Checkout.SweepInterval, cfg.Checkout.SessionIdleTimeout)

	// Initialize repositories and services
	productRepo := repository.NewProductRepository(pool, logger)
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(sessions, productService, calculator, appMetrics, logger)
	checkoutService := service.NewCheckoutService(sessions, appMetrics, logger)
	orderService := service.NewOrderService(tracker, appMetrics, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
	}, router.Options{
		APIKey:         cfg.Auth.APIKey,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        appMetrics,
		Gatherer:       registry,
		Ready:          pool.Ping,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Int("sessions", sessions.Len()).Msg("server shutdown completed")
	}

	return nil
}

// newStorage opens the key-value store for carts and last-order pointers.
func newStorage(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (kvstore.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		store, err := kvstore.NewRedis(ctx, kvstore.RedisConfig{
			URL:      cfg.Redis.URL,
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			TTL:      cfg.Redis.TTL,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close redis client")
			}
		}, nil

	case config.StorageMemory:
		logger.Warn().Msg("carts are kept in memory only and are lost on restart")
		return kvstore.NewMemory(), func() {}, nil

	default:
		return repository.NewKVRepository(pool, logger), func() {}, nil
	}
}

// newCouponTable loads the built-in coupons plus any configured files, read
// from S3 with a local fallback when S3 is enabled.
func newCouponTable(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (coupon.Table, error) {
	fileLoader := coupon.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, logger)
		}
	} else if len(cfg.Coupons.Files) > 0 {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
	}

	tableConfig := coupon.DefaultTableConfig()
	tableConfig.FilePaths = cfg.Coupons.Files
	return coupon.NewTable(ctx, tableConfig, loader, logger)
}
