package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/toolyhq/tooly-storefront/api/routes"
	cartsvc "github.com/toolyhq/tooly-storefront/internal/cart"
	checkoutsvc "github.com/toolyhq/tooly-storefront/internal/checkout"
	"github.com/toolyhq/tooly-storefront/internal/commerce"
	"github.com/toolyhq/tooly-storefront/internal/payment"
	"github.com/toolyhq/tooly-storefront/internal/rpc"
	"github.com/toolyhq/tooly-storefront/pkg/config"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
	"github.com/toolyhq/tooly-storefront/pkg/metrics"
	"github.com/toolyhq/tooly-storefront/pkg/redis"
	"github.com/toolyhq/tooly-storefront/pkg/session"
	pkgstripe "github.com/toolyhq/tooly-storefront/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	rpcClient, err := rpc.NewClient(cfg.Commerce, sessions)
	if err != nil {
		logg.Error(context.Background(), "failed to create commerce rpc client", err)
		os.Exit(1)
	}

	rpcMetrics := metrics.NewRPCMetrics(prometheus.DefaultRegisterer)
	facade, err := commerce.NewFacade(rpcClient, rpcMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create commerce facade", err)
		os.Exit(1)
	}

	collector, err := buildCollector(cfg, facade, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment collector", err)
		os.Exit(1)
	}

	carts, err := cartsvc.NewManager(facade, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart manager", err)
		os.Exit(1)
	}
	checkouts, err := checkoutsvc.NewManager(facade, collector, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout manager", err)
		os.Exit(1)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepIdleSessions(sweepCtx, cfg.Session, carts, checkouts, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"provider": cfg.Payment.NormalizedProvider(),
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, sessions, rpcClient, carts, checkouts),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildCollector(cfg *config.Config, facade *commerce.Facade, logg *logger.Logger) (payment.Collector, error) {
	switch cfg.Payment.NormalizedProvider() {
	case config.PaymentProviderStripe:
		stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			return nil, err
		}
		return payment.NewStripeCollector(facade, stripeClient, logg)
	default:
		return payment.NewTestCollector(facade, logg)
	}
}

// sweepIdleSessions periodically evicts cart contexts and checkout machines
// that have idled past the configured cutoff.
func sweepIdleSessions(ctx context.Context, cfg config.SessionConfig, carts *cartsvc.Manager, checkouts *checkoutsvc.Manager, logg *logger.Logger) {
	every := cfg.SweepEvery
	if every <= 0 {
		every = 10 * time.Minute
	}
	cutoff := cfg.IdleEviction
	if cutoff <= 0 {
		cutoff = time.Hour
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dropped := carts.SweepIdle(cutoff) + checkouts.SweepIdle(cutoff)
			if dropped > 0 && logg != nil {
				logg.Info(logg.WithField(ctx, "evicted", dropped), "idle session sweep")
			}
		}
	}
}
