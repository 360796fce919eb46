package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/navigation"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/platform/config"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/platform/observability"
	"github.com/taha-yassine-romdhane/Dar-koftan/internal/taxonomy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("invalid configuration %v: %w", invalid.Fields(), err)
		}
		return fmt.Errorf("load configuration: %w", err)
	}

	baseLogger, err := observability.NewLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("storefront")

	taxCfg, err := taxonomy.LoadConfig(cfg.Taxonomy.File)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := buildSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := navigation.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	srv, err := newServer(serverDeps{
		Logger:       logger,
		Source:       source,
		Taxonomy:     taxCfg,
		Holder:       &taxonomy.Holder{},
		Registry:     registry,
		Metrics:      metrics,
		FetchTimeout: cfg.Catalog.FetchTimeout,
		Breakpoint:   cfg.Viewport.Breakpoint,
	})
	if err != nil {
		return fmt.Errorf("initialise server: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr), zap.String("environment", cfg.Environment))
	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// buildSource picks the category backend and wraps it with the configured cache.
func buildSource(ctx context.Context, cfg config.Config, logger *zap.Logger) (taxonomy.Source, func(), error) {
	var (
		backend taxonomy.Source
		closers []func() error
	)
	if dsn := strings.TrimSpace(cfg.Catalog.DatabaseDSN); dsn != "" {
		db, err := taxonomy.OpenGormSource(dsn)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		backend = db
		logger.Info("categories served from database")
	} else {
		backend = taxonomy.NewClient(cfg.Catalog.APIBaseURL, cfg.Catalog.FetchTimeout)
		if cfg.Catalog.APIBaseURL == "" {
			logger.Info("no catalogue configured; serving demo categories")
		}
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("close category backend", zap.Error(err))
			}
		}
	}

	var cache taxonomy.Cache
	switch {
	case cfg.Taxonomy.CacheTTL <= 0:
	case strings.TrimSpace(cfg.Taxonomy.RedisURL) != "":
		rc, err := taxonomy.NewRedisCache(cfg.Taxonomy.RedisURL, cfg.Taxonomy.CacheTTL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rc.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable; using in-memory category cache", zap.Error(err))
			_ = rc.Close()
			cache = taxonomy.NewMemoryCache(cfg.Taxonomy.CacheTTL)
			break
		}
		closers = append(closers, rc.Close)
		cache = rc
	default:
		cache = taxonomy.NewMemoryCache(cfg.Taxonomy.CacheTTL)
	}

	source, err := taxonomy.NewCachedSource(backend, cache, logger.Named("taxonomy"))
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return source, closeAll, nil
}
