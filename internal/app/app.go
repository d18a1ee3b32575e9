// Package app provides the application lifecycle for the matcher service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/neticnz/matcher/internal/api"
	"github.com/neticnz/matcher/internal/config"
	"github.com/neticnz/matcher/internal/database"
	"github.com/neticnz/matcher/internal/dedup"
	"github.com/neticnz/matcher/internal/logger"
	"github.com/neticnz/matcher/internal/matcher"
	"github.com/neticnz/matcher/internal/metrics"
	"github.com/neticnz/matcher/internal/notify"
	"github.com/neticnz/matcher/internal/redis"
	"github.com/neticnz/matcher/internal/scheduler"
	"github.com/neticnz/matcher/internal/search"
)

// DefaultShutdownTimeout bounds graceful HTTP server shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// App holds the wired service: shared dependencies, the pipeline, and the
// API router. Both the server and the worker binaries build one of these.
type App struct {
	config      *config.Config
	logger      logger.Logger
	db          *sqlx.DB
	redisClient *goredis.Client
	registry    *prometheus.Registry
	tracker     *dedup.Tracker
	pipeline    *matcher.Pipeline
	router      *api.Router
	version     string
}

// Options contains configuration for creating a new App.
type Options struct {
	ConfigPath string
	Version    string
}

// New loads configuration and wires every dependency. The database must be
// reachable; Redis is optional and its absence only disables the seen-URL
// cache.
func New(opts Options) (*App, error) {
	cfg, appLogger, err := loadConfigAndLogger(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	appLogger = appLogger.With(
		logger.String("service", "matcher"),
		logger.String("version", opts.Version),
	)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		_ = appLogger.Sync()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			// The cache is an optimization; the matches table stays
			// authoritative without it.
			appLogger.Warn("Redis unavailable, running without seen-URL cache",
				logger.Error(err),
			)
			redisClient = nil
		}
	}

	wantRepo := database.NewWantRepository(db)
	matchRepo := database.NewMatchRepository(db)
	offerRepo := database.NewOfferRepository(db)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	var mailer *notify.Client
	if cfg.Email.Enabled {
		mailer = notify.NewClient(cfg.Email, appLogger)
	} else {
		appLogger.Warn("email delivery disabled, matches will persist unnotified")
	}

	tracker := dedup.NewTracker(redisClient, cfg.Redis.DedupTTL, appLogger)

	pipelineOpts := matcher.Options{
		Wants:      wantRepo,
		Matches:    matchRepo,
		Searcher:   search.NewClient(cfg.Search, appLogger),
		Seen:       tracker,
		Metrics:    collector,
		Logger:     appLogger,
		MaxResults: cfg.Search.MaxResults,
	}
	if mailer != nil {
		pipelineOpts.Mailer = mailer
	}
	pipeline := matcher.New(pipelineOpts)

	routerOpts := api.RouterOptions{
		Pipeline:    pipeline,
		Wants:       wantRepo,
		Matches:     matchRepo,
		Offers:      offerRepo,
		RedisClient: redisClient,
		Registry:    registry,
		Config:      cfg,
		Logger:      appLogger,
	}
	if mailer != nil {
		routerOpts.OfferMailer = mailer
	}

	return &App{
		config:      cfg,
		logger:      appLogger,
		db:          db,
		redisClient: redisClient,
		registry:    registry,
		tracker:     tracker,
		pipeline:    pipeline,
		router:      api.NewRouter(routerOpts),
		version:     opts.Version,
	}, nil
}

// loadConfigAndLogger loads configuration and creates the logger.
func loadConfigAndLogger(configPath string) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, appLogger, nil
}

// RunServer starts the HTTP API and blocks until a shutdown signal or a
// server error.
func (a *App) RunServer(ctx context.Context) error {
	engine := a.router.SetupRoutes()

	srv := &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("API server starting",
			logger.String("address", a.config.Server.Address),
			logger.Bool("debug", a.config.Debug),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-signalChannel():
		a.logger.Info("Shutting down gracefully", logger.String("signal", sig.String()))
	case err := <-serverErr:
		a.logger.Error("Server error", logger.Error(err))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server shutdown error", logger.Error(err))
		return err
	}

	a.logger.Info("API server stopped")
	return nil
}

// RunWorker starts the periodic pipeline scheduler and blocks until a
// shutdown signal.
func (a *App) RunWorker(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(a.pipeline, a.config.Matcher.RunInterval, a.config.Matcher.RunOnStart, a.logger)
	if err := sched.Start(workerCtx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	select {
	case sig := <-signalChannel():
		a.logger.Info("Shutting down gracefully", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	cancel()
	sched.Stop()
	a.logger.Info("Worker stopped")
	return nil
}

func signalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan
}

// FlushCache clears the Redis seen-URL cache.
func (a *App) FlushCache(ctx context.Context) error {
	return a.tracker.FlushAll(ctx)
}

// Close cleans up resources.
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("Failed to close Redis client", logger.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close database", logger.Error(err))
		}
	}
	return a.logger.Sync()
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger {
	return a.logger
}
