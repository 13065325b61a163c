package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fxquotes/internal/api"
	"fxquotes/internal/api/middleware"
)

func (app *App) initHTTP() {
	precision := app.cfg.Quotes.Precision

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Post("/quotes", api.HandleCreateQuote(app.quoteService, app.registry, precision, app.logger))
	r.Get("/quotes/{quote_id}", api.HandleGetQuote(app.quoteService, app.registry, precision, app.logger))
	r.Get("/currencies", api.HandleListCurrencies(app.registry))
	r.Get("/rates/{base}/{quote}", api.HandleGetRate(app.rates))
	r.Post("/rates/refresh", api.HandleRefreshRates(app.enqueuer))
	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(map[string]api.Pinger{
		"database": api.PingFunc(app.db.PingContext),
		"cache": api.PingFunc(func(ctx context.Context) error {
			return app.rdbCache.Ping(ctx).Err()
		}),
		"queue": api.PingFunc(func(ctx context.Context) error {
			return app.rdbAsynq.Ping(ctx).Err()
		}),
	}))

	if app.cfg.Server.ServeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	if app.asynqmon != nil {
		r.Handle(app.asynqmon.RootPath()+"/*", app.asynqmon)
	}
	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
