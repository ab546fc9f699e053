package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/freshlane/cartvault/internal/core/service"
	"github.com/freshlane/cartvault/internal/infra/buildinfo"
	"github.com/freshlane/cartvault/internal/infra/confloader"
	"github.com/freshlane/cartvault/internal/infra/shutdown"
	"github.com/freshlane/cartvault/internal/pricing"
	"github.com/freshlane/cartvault/internal/server/config"
	"github.com/freshlane/cartvault/internal/server/httpserver"
	"github.com/freshlane/cartvault/internal/storage/memory"
	"github.com/freshlane/cartvault/internal/telemetry/logger"
	"github.com/freshlane/cartvault/internal/telemetry/metric"
	"github.com/freshlane/cartvault/pkg/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("cartvault-server %s\n", buildinfo.String())
		return nil
	}

	// A .env file, if present, feeds the environment before the config
	// layer reads it.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting cartvault-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	registry := metric.NewRegistry()

	catalog := pricing.NewCatalog(
		pricing.WithDefaultPrice(cfg.Pricing.DefaultPrice),
		pricing.WithTaxRateBps(cfg.Pricing.TaxRateBps),
		pricing.WithPrices(cfg.Pricing.Prices),
	)

	// Store and sweeper
	storeOpts := []memory.Option{}
	if cfg.Store.Shards > 0 {
		storeOpts = append(storeOpts, memory.WithShardCount(cfg.Store.Shards))
	}
	store := memory.New(cfg.Store.TTL, storeOpts...)
	registry.RegisterStore(store)

	sweeper := memory.NewSweeper(store,
		memory.WithInterval(cfg.Store.Sweep.Interval),
		memory.WithScanLimit(cfg.Store.Sweep.ScanLimit),
		memory.WithBudget(cfg.Store.Sweep.Budget),
		memory.WithLogger(slog.Default()),
		memory.WithOnSwept(func(r memory.SweepResult) {
			registry.SweepCompleted(r.Deleted, r.Elapsed)
		}),
	)
	sweeper.Start()

	// Recovery token codec and cart service
	codec, err := token.NewCodec([]byte(cfg.Recovery.Secret))
	if err != nil {
		return fmt.Errorf("init token codec: %w", err)
	}

	carts := service.NewCartService(store, catalog, codec,
		service.WithTokenMaxAge(cfg.Recovery.MaxAge),
		service.WithMetrics(registry),
	)

	// HTTP server
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		CartService: carts,
		Status:      store,
		Sweep:       sweeper,
		Logger:      log,
		Metrics:     registry,
		RateLimit:   rateLimitConfig(cfg),
	})

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router,
		httpserver.WithReadTimeout(cfg.Server.HTTP.ReadTimeout),
		httpserver.WithWriteTimeout(cfg.Server.HTTP.WriteTimeout),
	)

	// Graceful shutdown: hooks run in reverse registration order, so
	// the HTTP server drains before the sweeper stops.
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping sweeper")
		sweeper.Stop()
		return nil
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	// Hot-reload the log level on config file changes
	if *configFile != "" {
		watcher, err := watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, the optional file, and
// the environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// rateLimitConfig maps the config section onto the middleware config.
// Zero RPS keeps the limiter off.
func rateLimitConfig(cfg *config.ServerConfig) httpserver.RateLimitConfig {
	if !cfg.Server.RateLimit.Enabled {
		return httpserver.RateLimitConfig{}
	}
	return httpserver.RateLimitConfig{
		RPS:   cfg.Server.RateLimit.RPS,
		Burst: cfg.Server.RateLimit.Burst,
	}
}

// watchLogLevel re-reads the config file on change and applies the log
// level without a restart.
func watchLogLevel(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level applied", "level", cfg.Log.Level)
	})
	watcher.StartAsync()
	return watcher, nil
}
