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

	"github.com/01fe23bcs183/paaji-client-sub000/internal/cart"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/config"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/coupon"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/database"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/events"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/handler"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/lock"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/repository"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/router"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/service"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/shipping"

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
	logger.Info().Msg("starting checkout API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	zoneRepo := repository.NewZoneRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	if err := importZoneCatalogue(ctx, cfg, zoneRepo, logger); err != nil {
		return err
	}

	// Carts and checkout locks live in Redis when enabled, in memory otherwise
	var (
		persister cart.Persister = cart.NewMemoryPersister()
		locker    lock.Locker    = lock.NewMemoryLocker()
	)
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()

		persister = cart.NewRedisPersister(rdb, cfg.Redis.CartTTL, logger)
		locker = lock.NewRedisLocker(rdb, logger)
	} else {
		logger.Warn().Msg("redis disabled, carts and checkout locks are held in memory")
	}

	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
		publisher = kp
	} else {
		publisher = events.NewNoopPublisher(logger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(persister, productService, logger)
	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		Carts:     persister,
		Coupons:   couponRepo,
		Validator: coupon.NewValidator(logger),
		Zones:     zoneRepo,
		Resolver:  shipping.NewResolver(cfg.Shipping.PincodeLength),
		Orders:    orderRepo,
		Locker:    locker,
		Publisher: publisher,
		LockTTL:   cfg.Checkout.LockTTL,
	}, logger)
	orderService := service.NewOrderService(orderRepo, publisher, logger)
	adminService := service.NewAdminService(couponRepo, zoneRepo, cfg.Shipping.PincodeLength, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Admin:    handler.NewAdminHandler(adminService, logger),
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// importZoneCatalogue loads the configured zone files, from S3 with a local
// fallback, and writes them into the zone table.
func importZoneCatalogue(ctx context.Context, cfg *config.Config, zones repository.ZoneRepository, logger zerolog.Logger) error {
	if len(cfg.Shipping.ZoneFiles) == 0 {
		logger.Info().Msg("no shipping zone files configured, using stored zones")
		return nil
	}

	fileLoader := shipping.NewFileLoader(logger)
	var s3Loader shipping.Loader
	if cfg.S3.Enabled {
		l, err := shipping.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	}
	loader := shipping.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	catalogue, err := shipping.LoadCatalog(ctx, loader, cfg.Shipping.ZoneFiles, cfg.Shipping.PincodeLength, logger)
	if err != nil {
		return fmt.Errorf("failed to load shipping zones: %w", err)
	}

	if _, err := service.ImportZones(ctx, zones, catalogue, logger); err != nil {
		return fmt.Errorf("failed to import shipping zones: %w", err)
	}
	return nil
}
