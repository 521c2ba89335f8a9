package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jcmexdev/ecommerce-storefront/internal/coordinator"
	sagalogsqlite "github.com/jcmexdev/ecommerce-storefront/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/auth"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/adapters/sqlite"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/httpx"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/httpx/middlewares"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/jobs"
)

const serviceName = "storefront"

func main() {
	envFile := pflag.String("env-file", "", "dotenv file to load before reading the environment")
	settingsPath := pflag.String("settings", "", "storefront settings YAML (tax table, shipping, pickup points)")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	if err := run(*envFile, *settingsPath, *migrateOnly); err != nil {
		slog.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(envFile, settingsPath string, migrateOnly bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	telemetry.InitLogger(os.Stdout, cfg.LogLevel)

	if settingsPath == "" {
		settingsPath = cfg.SettingsPath
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if migrateOnly {
		slog.Info("migrations applied", "database", cfg.DatabasePath)
		return nil
	}

	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	sagaLog, err := sagalogsqlite.New(ctx, store.DB())
	if err != nil {
		return err
	}

	c := newCache(ctx, cfg.RedisAddr)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	geo := services.NewGeoService(store)
	carts := services.NewCartService(store, store, store, store, settings)
	addresses := services.NewAddressService(store, store, geo)
	inventory := services.NewInventoryService(store)
	payments := services.NewPaymentService(store, settings.CardLimit)
	svc := httpx.Services{
		Catalog:   services.NewCatalogService(store, store),
		Geo:       geo,
		Carts:     carts,
		Addresses: addresses,
		Checkout: services.NewCheckoutService(services.CheckoutDeps{
			Carts:          store,
			Products:       store,
			Sessions:       store,
			Customers:      store,
			Orders:         store,
			Addresses:      addresses,
			Inventory:      inventory,
			Payments:       payments,
			Saga:           coordinator.NewOrchestrator(sagaLog, slog.Default()),
			Cache:          c,
			Pricer:         services.NewPricer(settings),
			IdempotencyTTL: cfg.IdempotencyTTL,
		}),
		Orders:    services.NewOrderService(store, inventory, payments, sagaLog),
		Returns:   services.NewReturnService(store, store, store),
		Auth:      services.NewAuthService(store, store, carts, tokens),
		Customers: services.NewCustomerService(store, store),
		Users:     services.NewUserService(store),
		Dashboard: services.NewDashboardService(store, store, settings.LowStockThreshold),
	}
	if err := svc.Auth.BootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	handler, err := httpx.NewHandler(svc, settings, store, cachePinger{c})
	if err != nil {
		return err
	}
	limiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := httpx.NewRouter(handler, middlewares.NewAuthenticator(tokens), limiter)

	housekeeping := services.NewHousekeeping(store, store, inventory, cfg.SessionTTL, cfg.BankTransferWindow)
	scheduler, err := jobs.New(cfg.HousekeepingSchedule, time.Minute,
		append(jobs.Housekeeping(housekeeping), jobs.SweepRateLimiter(limiter, 10*time.Minute))...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.TraceServerInterceptor()),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	httpLis, grpcLis, err := listen(cfg.HTTPAddr, cfg.GRPCAddr)
	if err != nil {
		return err
	}

	// Jobs start once both listeners are bound; the shutdown path stops them.
	scheduler.Start()

	errs := make(chan error, 2)
	go func() {
		slog.Info("storefront HTTP running", "addr", cfg.HTTPAddr)
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		slog.Info("storefront gRPC health running", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			errs <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case runErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	healthServer.Shutdown()
	scheduler.Stop(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	return runErr
}

// listen binds both server addresses, or neither.
func listen(httpAddr, grpcAddr string) (net.Listener, net.Listener, error) {
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen %s: %w", httpAddr, err)
	}
	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = httpLis.Close()
		return nil, nil, fmt.Errorf("listen %s: %w", grpcAddr, err)
	}
	return httpLis, grpcLis, nil
}

// newCache prefers Redis and falls back to the in-process cache when no
// address is configured or the server does not answer.
func newCache(ctx context.Context, addr string) cache.Cache {
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemoryCache(serviceName)
	}
	c := cache.NewRedisCache(addr, serviceName)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, c); err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "addr", addr, "error", err)
		return cache.NewMemoryCache(serviceName)
	}
	return c
}

type cachePinger struct{ c cache.Cache }

func (p cachePinger) Ping(ctx context.Context) error { return cache.Ping(ctx, p.c) }
