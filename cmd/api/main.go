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
	"go.uber.org/multierr"

	"github.com/angelmondragon/postoko-backend/api/routes"
	"github.com/angelmondragon/postoko-backend/internal/auth"
	"github.com/angelmondragon/postoko-backend/internal/inventory"
	"github.com/angelmondragon/postoko-backend/internal/invoices"
	"github.com/angelmondragon/postoko-backend/internal/media"
	product "github.com/angelmondragon/postoko-backend/internal/products"
	"github.com/angelmondragon/postoko-backend/internal/users"
	"github.com/angelmondragon/postoko-backend/pkg/config"
	"github.com/angelmondragon/postoko-backend/pkg/db"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
	"github.com/angelmondragon/postoko-backend/pkg/metrics"
	"github.com/angelmondragon/postoko-backend/pkg/migrate"
	pkgredis "github.com/angelmondragon/postoko-backend/pkg/redis"
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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
	} else {
		logg.Warn(ctx, "redis not configured, idempotency keys are ignored")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	images, err := media.NewStore(cfg.Media.UploadDir, cfg.Media.URLPrefix, cfg.Media.MaxUploadBytes())
	if err != nil {
		return err
	}
	cleaner, err := media.NewCleaner(images, media.CleanerOptions{
		Workers:      cfg.Media.CleanupWorkers,
		MaxRetries:   cfg.Media.CleanupRetries,
		Backoff:      cfg.Media.CleanupBackoff,
		DrainTimeout: cfg.Media.CleanupDrainTTL,
		Metrics:      metrics.NewCleanupMetrics(registry),
	}, logg)
	if err != nil {
		return err
	}
	// Deferred last so it drains before redis and the database close.
	defer func() { err = multierr.Append(err, cleaner.Close()) }()

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	inventoryService, err := inventory.NewService(dbClient)
	if err != nil {
		return err
	}
	productService, err := product.NewService(product.ServiceParams{
		DB:      dbClient,
		Images:  images,
		Cleaner: cleaner,
		BaseURL: cfg.App.BaseURL,
		Logger:  logg,
	})
	if err != nil {
		return err
	}
	invoiceService, err := invoices.NewService(dbClient)
	if err != nil {
		return err
	}

	deps := routes.Dependencies{
		Config:           cfg,
		Logger:           logg,
		DB:               dbClient,
		Redis:            redisClient,
		RegisterService:  registerService,
		AuthService:      authService,
		InventoryService: inventoryService,
		ProductService:   productService,
		InvoiceService:   invoiceService,
		Images:           images,
		Metrics:          metrics.NewHTTPMetrics(registry),
		Gatherer:         registry,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"upload_dir": images.Dir(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
