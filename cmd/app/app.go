// Package main is the entry point for the FX quote service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fxquotes/internal/config"
	"fxquotes/internal/fixtures"
	"fxquotes/internal/provider"
	"fxquotes/internal/repository"
	"fxquotes/internal/service"
	"fxquotes/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	db       *sql.DB
	rdbCache *redis.Client
	rdbAsynq *redis.Client

	currencies   repository.CurrencyRepository
	rates        repository.RateRepository
	registry     *service.Registry
	refresher    *service.RateRefresher
	quoteService *service.QuoteService

	asynqClient    *asynq.Client
	enqueuer       *worker.AsynqEnqueuer
	asynqServer    *asynq.Server
	asynqMux       *asynq.ServeMux
	asynqScheduler *asynq.Scheduler
	asynqmon       *asynqmon.HTTPHandler
	httpServer     *http.Server
}

// NewApp connects storage and builds the domain services. Queue and HTTP
// components are only created by Run.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(ctx); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases queue, database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqmon != nil {
		if err := app.asynqmon.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynqmon close: %w", err))
		}
	}
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage(ctx context.Context) error {
	db, err := repository.NewPostgresDB(ctx, &app.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to Postgres: %w", err)
	}
	app.db = db

	if err := repository.RunMigrations(app.db, app.logger); err != nil {
		return fmt.Errorf("run DB migrations: %w", err)
	}

	app.rdbCache = redis.NewClient(&redis.Options{
		Addr: app.cfg.Redis.CacheAddr,
	})
	if err := app.rdbCache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
	}
	app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)

	return nil
}

func (app *App) initServices() error {
	rateProvider, err := newRateProvider(app.cfg, app.rdbCache)
	if err != nil {
		return err
	}

	app.currencies = repository.NewPostgresCurrencyRepository(app.db)
	app.rates = repository.NewPostgresRateRepository(app.db)
	app.registry = service.NewRegistry(app.currencies, app.logger)

	app.refresher, err = service.NewRateRefresher(app.registry, app.rates, rateProvider, app.logger, app.cfg.Rates)
	if err != nil {
		return fmt.Errorf("rate refresher: %w", err)
	}

	app.quoteService = service.NewQuoteService(
		app.registry,
		app.rates,
		repository.NewPostgresQuoteRepository(app.db),
		app.rdbCache,
		app.logger,
		app.cfg.Quotes,
		app.cfg.Cache)
	return nil
}

// initQueue sets up the asynq client, worker server and scheduler for the refresh task.
func (app *App) initQueue() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}
	timeout := time.Duration(app.cfg.Worker.TimeoutSec) * time.Second

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.enqueuer = worker.NewAsynqEnqueuer(app.asynqClient, app.cfg.Worker.MaxRetry, timeout, timeout)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:              app.cfg.Worker.Concurrency,
			DelayedTaskCheckInterval: time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			TaskCheckInterval:        time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
		},
	)
	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(worker.TaskTypeRefreshRates, worker.NewRefreshRatesHandler(app.refresher, app.logger))

	scheduler, err := worker.NewRefreshScheduler(redisOpt, app.cfg.Rates.Schedule(), app.cfg.Worker.MaxRetry, timeout, app.logger)
	if err != nil {
		return err
	}
	app.asynqScheduler = scheduler

	if app.cfg.Server.ServeAsynqmon {
		app.asynqmon = asynqmon.New(asynqmon.Options{
			RootPath:     "/monitoring",
			RedisConnOpt: redisOpt,
		})
	}
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr, "schedule", app.cfg.Rates.Schedule(),
		"stale_after_sec", app.cfg.Rates.RefreshSec)
	return nil
}

func newRateProvider(cfg *config.Config, cache *redis.Client) (provider.RatesProvider, error) {
	ttl := time.Duration(cfg.Cache.ExchangeProviderPriceTTLSec) * time.Second

	var providers []provider.RatesProvider

	if cfg.ExchangeRatesAPI.BaseURL != "" && cfg.ExchangeRatesAPI.APIKey != "" {
		p := provider.NewExchangeRatesAPIProvider(cfg.ExchangeRatesAPI.BaseURL, cfg.ExchangeRatesAPI.APIKey, cfg.ExchangeRatesAPI.Timeout)
		providers = append(providers, provider.NewCachedRatesProvider(p, cache, ttl, "exchangerates_api"))
	}

	if cfg.ExchangeRateHost.BaseURL != "" && cfg.ExchangeRateHost.APIKey != "" {
		p := provider.NewExchangeRateHostProvider(cfg.ExchangeRateHost.BaseURL, cfg.ExchangeRateHost.APIKey, cfg.ExchangeRateHost.Timeout)
		providers = append(providers, provider.NewCachedRatesProvider(p, cache, ttl, "exchangerate_host"))
	}

	if cfg.Frankfurter.BaseURL != "" {
		p := provider.NewFrankfurterProvider(cfg.Frankfurter.BaseURL, cfg.Frankfurter.Timeout)
		providers = append(providers, provider.NewCachedRatesProvider(p, cache, ttl, "frankfurter"))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no exchange rate providers are correctly configured: " +
			"exchangerates_api and exchangerate_host require base_url and api_key, frankfurter requires base_url")
	}

	if len(providers) == 1 {
		return providers[0], nil
	}

	return provider.NewExchangeProviderFacade(providers...), nil
}

// seedCurrencies loads the embedded or configured currency list into an empty registry.
// A populated registry is left untouched so admin changes to the active flag survive restarts.
func (app *App) seedCurrencies(ctx context.Context) error {
	existing, err := app.currencies.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	list, err := fixtures.LoadCurrencies(app.cfg.Fixtures.CurrenciesPath)
	if err != nil {
		return err
	}
	_, err = fixtures.ApplyCurrencies(ctx, app.currencies, list, app.logger)
	return err
}

// enqueueStartupRefresh queues one refresh so a new deployment does not wait a
// full schedule period for its first rates. Fresh bases are skipped as usual.
func (app *App) enqueueStartupRefresh(ctx context.Context) {
	id, err := app.enqueuer.Enqueue(ctx, worker.TriggerStartup)
	switch {
	case errors.Is(err, worker.ErrRefreshAlreadyQueued):
		app.logger.Infow("Startup refresh already queued")
	case err != nil:
		app.logger.Warnw("Failed to enqueue startup refresh", "error", err)
	default:
		app.logger.Infow("Enqueued startup refresh", "task_id", id)
	}
}

// Run starts the HTTP server, the Asynq worker and the refresh scheduler,
// blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	if err := app.initQueue(); err != nil {
		_ = app.close()
		return err
	}
	app.initHTTP()
	app.enqueueStartupRefresh(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Starting Asynq worker server")
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("asynq worker failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		app.logger.Infow("Starting rate refresh scheduler", "schedule", app.cfg.Rates.Schedule())
		if err := app.asynqScheduler.Start(); err != nil {
			return fmt.Errorf("asynq scheduler failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> scheduler -> Asynq worker -> connections.
// In-flight refresh tasks finish before the DB and Redis connections close.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	app.asynqScheduler.Shutdown()
	app.asynqServer.Shutdown()

	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
