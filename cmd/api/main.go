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
	"go.uber.org/multierr"

	"github.com/petalpost/florist-backend/api/routes"
	"github.com/petalpost/florist-backend/internal/audit"
	"github.com/petalpost/florist-backend/internal/auth"
	"github.com/petalpost/florist-backend/internal/catalog"
	"github.com/petalpost/florist-backend/internal/orders"
	"github.com/petalpost/florist-backend/internal/pricing"
	stripewebhook "github.com/petalpost/florist-backend/internal/webhooks/stripe"
	"github.com/petalpost/florist-backend/pkg/auth/session"
	"github.com/petalpost/florist-backend/pkg/config"
	"github.com/petalpost/florist-backend/pkg/db"
	"github.com/petalpost/florist-backend/pkg/logger"
	"github.com/petalpost/florist-backend/pkg/migrate"
	"github.com/petalpost/florist-backend/pkg/redis"
	"github.com/petalpost/florist-backend/pkg/stripe"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.NewRepository(dbClient.DB()), sessionManager, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	feePolicy, err := pricing.NewFlatFeePolicy(cfg.Delivery.FlatFee)
	if err != nil {
		logg.Error(context.Background(), "failed to configure delivery fee policy", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(catalog.NewRepository(dbClient.DB()), feePolicy, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	auditRepo := audit.NewRepository(dbClient.DB())
	auditRecorder, err := audit.NewService(auditRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit recorder", err)
		os.Exit(1)
	}

	auditReader, err := audit.NewReader(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit reader", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		pricingService,
		auditRecorder,
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	var stripeClient *stripe.Client
	var webhookService *stripewebhook.Service
	var webhookGuard *stripewebhook.IdempotencyGuard
	if cfg.Stripe.APIKey != "" {
		stripeClient, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe client", err)
			os.Exit(1)
		}
		webhookService, err = stripewebhook.NewService(ordersService, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe webhook service", err)
			os.Exit(1)
		}
		webhookGuard, err = stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.IdempotencyTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe idempotency guard", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "stripe api key not set, gateway payments disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			ordersService,
			auditReader,
			stripeClient,
			webhookService,
			webhookGuard,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErr error
		shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
		shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
		shutdownErr = multierr.Append(shutdownErr, dbClient.Close())
		if shutdownErr != nil {
			logg.Error(ctx, "shutdown finished with errors", shutdownErr)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
