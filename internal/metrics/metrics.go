// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes recorded per base currency.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

var (
	RefreshBasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxquotes_refresh_bases_total",
			Help: "Base currencies processed by rate refresh cycles, by outcome",
		},
		[]string{"outcome"},
	)

	RatesUpsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fxquotes_rates_upserted_total",
			Help: "Total number of rates written by refresh cycles",
		},
	)

	PairsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fxquotes_pairs_rejected_total",
			Help: "Total number of source rates rejected as non-positive",
		},
	)

	RefreshLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fxquotes_refresh_last_run_timestamp",
			Help: "Unix timestamp of the last completed refresh cycle",
		},
	)

	RefreshDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fxquotes_refresh_duration_seconds",
			Help:    "Duration of rate refresh cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	QuotesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxquotes_quotes_created_total",
			Help: "Total number of quotes minted per currency pair",
		},
		[]string{"source", "target"},
	)

	QuotesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxquotes_quotes_rejected_total",
			Help: "Total number of rejected quote requests by reason",
		},
		[]string{"reason"},
	)
)

// ObserveRefresh records the duration and completion time of one refresh cycle.
func ObserveRefresh(startedAt time.Time) {
	RefreshDurationSeconds.Observe(time.Since(startedAt).Seconds())
	RefreshLastRun.Set(float64(time.Now().Unix()))
}

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxquotes_http_requests_total",
			Help: "Total number of HTTP requests per route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fxquotes_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds per route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
