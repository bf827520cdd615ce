package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/DTBbuilds/SmartDuka-sub000/api/routes"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/checkout"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/inventory"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/orders"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/payments"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/shops"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/txn"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/metrics"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/migrate"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/redis"
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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	coreMetrics := metrics.NewCoreMetrics(reg)

	cacheOpts := cache.Options{Logger: logg, Metrics: coreMetrics, SweepInterval: cfg.Cache.SweepInterval}
	redisClient, err := redis.New(ctx, cfg.Redis, cfg.Cache, logg)
	switch {
	case err == nil:
		cacheOpts.Remote = redisClient
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	case errors.Is(err, redis.ErrNotConfigured):
		logg.Info(ctx, "redis not configured, using in-memory cache")
	default:
		logg.WarnErr(ctx, "redis unavailable at startup, using in-memory cache", err)
	}
	sharedCache := cache.New(cacheOpts)
	sharedCache.Start(ctx)
	defer sharedCache.Close()

	coordinator, err := txn.NewFromConfig(dbClient.DB(), cfg.DB, logg, coreMetrics)
	if err != nil {
		return err
	}
	publisher := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	shopSvc, err := shops.NewService(shops.NewRepository(dbClient.DB()), sharedCache, cfg.Checkout, logg)
	if err != nil {
		return err
	}
	stockRepo := inventory.NewRepository(dbClient.DB())
	stockSvc, err := inventory.NewService(stockRepo, coordinator, sharedCache, publisher, shopSvc, logg, coreMetrics)
	if err != nil {
		return err
	}
	orderRepo := orders.NewRepository(dbClient.DB())
	orderSvc, err := orders.NewService(orderRepo, sharedCache)
	if err != nil {
		return err
	}
	paymentSvc, err := payments.NewService(payments.NewRepository(dbClient.DB()), orderRepo, coordinator, sharedCache, publisher, logg)
	if err != nil {
		return err
	}
	checkoutSvc, err := checkout.NewService(checkout.Deps{
		Tx:       coordinator,
		Orders:   orderRepo,
		Stock:    stockSvc,
		Catalog:  stockRepo,
		Tax:      shopSvc,
		Payments: paymentSvc,
		Cache:    sharedCache,
		Outbox:   publisher,
		Logger:   logg,
		Metrics:  coreMetrics,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"driver":      dbClient.Dialect(),
		"transaction": coordinator.CheckCapability(ctx).String(),
		"cache_local": sharedCache.UsingFallback(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Cache:     sharedCache,
			Gatherer:  reg,
			Checkout:  checkoutSvc,
			Orders:    orderSvc,
			Payments:  paymentSvc,
			Inventory: stockSvc,
			Shops:     shopSvc,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
