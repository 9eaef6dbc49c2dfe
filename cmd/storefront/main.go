package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/almahra/storefront/api/routes"
	"github.com/almahra/storefront/internal/cart"
	"github.com/almahra/storefront/internal/snapshot"
	"github.com/almahra/storefront/pkg/auth/session"
	"github.com/almahra/storefront/pkg/cartapi"
	"github.com/almahra/storefront/pkg/config"
	"github.com/almahra/storefront/pkg/db"
	"github.com/almahra/storefront/pkg/instance"
	"github.com/almahra/storefront/pkg/logger"
	"github.com/almahra/storefront/pkg/metrics"
	"github.com/almahra/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

type snapshotStore interface {
	cart.Persistence
	Ping(ctx context.Context) error
}

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
		Instance:    instance.GetID(),
		Format:      cfg.App.LogFormat,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	persistence, closers, err := openPersistence(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap cart persistence", err)
		os.Exit(1)
	}
	defer func() {
		var closeErr error
		for _, c := range closers {
			closeErr = multierr.Append(closeErr, c.Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing persistence", closeErr)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(reg)

	sessionManager := session.NewManager()

	client, err := cartapi.NewClient(
		cfg.Backend.BaseURL,
		cartapi.WithTokenStore(sessionManager),
		cartapi.WithObserver(cartMetrics),
		cartapi.WithTimeout(cfg.Backend.Timeout),
	)
	if err != nil {
		logg.Error(ctx, "failed to create storefront api client", err)
		os.Exit(1)
	}

	queue := cart.NewNotificationQueue(0)
	store, err := cart.NewStore(ctx, cart.Params{
		Remote:      client,
		Orders:      client,
		Persistence: persistence,
		Auth:        sessionManager,
		Notifier:    queue,
		Metrics:     cartMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart store", err)
		os.Exit(1)
	}
	if err := store.SyncAuth(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.sync_auth_failed")
	}

	addr := ":" + cfg.App.Port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"instance":     instance.GetID(),
		"cart_store":   cfg.Persistence.NormalizedDriver(),
		"backend_url":  cfg.Backend.BaseURL,
		"metrics_path": cfg.Metrics.Path,
	})
	logg.Info(serverCtx, "starting storefront server")

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		Cart:          store,
		Notifications: queue,
		Session:       sessionManager,
		Persistence:   persistence,
		Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down storefront server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}

// openPersistence builds the configured snapshot store plus whatever needs
// closing on exit.
func openPersistence(ctx context.Context, cfg *config.Config, logg *logger.Logger) (snapshotStore, []io.Closer, error) {
	switch cfg.Persistence.NormalizedDriver() {
	case config.PersistenceRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, err
		}
		store, err := snapshot.NewRedisStore(client, cfg.Persistence.Key, cfg.Redis.SnapshotTTL)
		if err != nil {
			return nil, nil, multierr.Append(err, client.Close())
		}
		return store, []io.Closer{client}, nil
	case config.PersistenceSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, err
		}
		store, err := snapshot.NewSQLStore(ctx, client.DB(), cfg.Persistence.Key, cfg.DB.AutoMigrate)
		if err != nil {
			return nil, nil, multierr.Append(err, client.Close())
		}
		return store, []io.Closer{client}, nil
	default:
		store, err := snapshot.NewFileStore(cfg.Persistence.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}
