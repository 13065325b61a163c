package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxquotes/internal/config"
	"fxquotes/internal/metrics"
	"fxquotes/internal/pricing"
	"fxquotes/internal/provider"
	"fxquotes/internal/repository"
)

// RefreshSummary reports what one refresh cycle did. Attempted bases are
// those the source was called for. BasesFailed also counts bases whose stored
// rates could not be read, so it may exceed BasesAttempted - BasesSucceeded.
type RefreshSummary struct {
	BasesAttempted int `json:"bases_attempted"`
	BasesSucceeded int `json:"bases_succeeded"`
	BasesSkipped   int `json:"bases_skipped"`
	BasesFailed    int `json:"bases_failed"`
	RatesUpserted  int `json:"rates_upserted"`
	PairsRejected  int `json:"pairs_rejected"`
}

// RateRefresher keeps stored rates fresh while calling the source at most once per base.
type RateRefresher struct {
	registry     *Registry
	rates        repository.RateRepository
	provider     provider.RatesProvider
	log          *zap.SugaredLogger
	spread       decimal.Decimal
	interval     time.Duration
	fetchTimeout time.Duration
}

// NewRateRefresher creates a new RateRefresher from the rates configuration.
func NewRateRefresher(registry *Registry, rates repository.RateRepository, prov provider.RatesProvider, logger *zap.SugaredLogger, cfg config.RatesConfig) (*RateRefresher, error) {
	spread, err := cfg.Spread()
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateSpread(spread); err != nil {
		return nil, err
	}
	return &RateRefresher{
		registry:     registry,
		rates:        rates,
		provider:     prov,
		log:          logger,
		spread:       spread,
		interval:     time.Duration(cfg.RefreshSec) * time.Second,
		fetchTimeout: time.Duration(cfg.FetchTimeoutSec) * time.Second,
	}, nil
}

// Refresh runs one refresh cycle at now. Per-base source and store failures are
// logged and counted; only a failure to list active currencies or cancellation
// of ctx is returned, together with the partial summary.
func (r *RateRefresher) Refresh(ctx context.Context, now time.Time) (RefreshSummary, error) {
	var sum RefreshSummary
	defer metrics.ObserveRefresh(time.Now())

	active, err := r.registry.ListActive(ctx)
	if err != nil {
		r.log.Errorw("Refresh aborted", "action", "refresh", "status", "failed", "error", err)
		return sum, err
	}
	if len(active) < 2 {
		r.log.Infow("Refresh skipped", "action", "refresh", "status", "noop", "active_currencies", len(active))
		return sum, nil
	}

	codes := make([]string, 0, len(active))
	for _, c := range active {
		codes = append(codes, c.Code)
	}

	for _, base := range codes {
		if err := ctx.Err(); err != nil {
			r.log.Warnw("Refresh interrupted", "action", "refresh", "status", "cancelled", "next_base", base, "error", err)
			return sum, err
		}

		targets := make([]string, 0, len(codes)-1)
		for _, c := range codes {
			if c != base {
				targets = append(targets, c)
			}
		}

		fresh, err := r.allFresh(ctx, base, targets, now)
		if err != nil {
			r.log.Errorw("Refresh failure", "action", "refresh_base", "status", "failed", "base", base, "error", err)
			sum.BasesFailed++
			metrics.RefreshBasesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			continue
		}
		if fresh {
			r.log.Infow("Refresh skip", "action", "refresh_base", "status", "skipped", "base", base)
			sum.BasesSkipped++
			metrics.RefreshBasesTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}

		sum.BasesAttempted++
		upserted, rejected, err := r.refreshBase(ctx, base, targets, now)
		sum.RatesUpserted += upserted
		sum.PairsRejected += rejected
		if err != nil {
			r.log.Errorw("Refresh failure", "action", "refresh_base", "status", "failed", "base", base,
				"rates_upserted", upserted, "error", err)
			sum.BasesFailed++
			metrics.RefreshBasesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			continue
		}
		r.log.Infow("Refresh attempt", "action", "refresh_base", "status", "succeeded", "base", base,
			"rates_upserted", upserted, "pairs_rejected", rejected)
		sum.BasesSucceeded++
		metrics.RefreshBasesTotal.WithLabelValues(metrics.OutcomeSucceeded).Inc()
	}

	r.log.Infow("Refresh cycle finished", "action", "refresh", "status", "done",
		"bases_attempted", sum.BasesAttempted, "bases_succeeded", sum.BasesSucceeded,
		"bases_skipped", sum.BasesSkipped, "bases_failed", sum.BasesFailed,
		"rates_upserted", sum.RatesUpserted, "pairs_rejected", sum.PairsRejected)
	return sum, nil
}

// allFresh reports whether every (base, target) pair has a rate younger than the interval.
func (r *RateRefresher) allFresh(ctx context.Context, base string, targets []string, now time.Time) (bool, error) {
	stored, err := r.rates.ListByBase(ctx, base)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	byQuote := make(map[string]*repository.Rate, len(stored))
	for i := range stored {
		byQuote[stored[i].Quote] = &stored[i]
	}
	for _, t := range targets {
		if repository.IsStale(byQuote[t], now, r.interval) {
			return false, nil
		}
	}
	return true, nil
}

// refreshBase fetches all targets of base in one call and upserts the accepted rates.
func (r *RateRefresher) refreshBase(ctx context.Context, base string, targets []string, now time.Time) (upserted, rejected int, err error) {
	fetchCtx := ctx
	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.fetchTimeout)
		defer cancel()
	}

	means, err := r.provider.FetchRates(fetchCtx, base, targets)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrSourceFailure, err)
	}
	if len(means) == 0 {
		return 0, 0, fmt.Errorf("%w: no rates returned for %s", ErrSourceFailure, base)
	}

	// Only requested targets are read, so rates for inactive or unknown codes are ignored.
	var storeErrs []error
	for _, target := range targets {
		mean, ok := means[target]
		if !ok {
			continue
		}
		buying, selling, err := pricing.ComputeSpread(mean, r.spread)
		if err != nil {
			r.log.Warnw("Rejected source rate", "action", "refresh_pair", "status", "rejected",
				"base", base, "quote", target, "mean_rate", mean.String(), "error", err)
			rejected++
			metrics.PairsRejectedTotal.Inc()
			continue
		}
		if _, err := r.rates.Upsert(ctx, base, target, mean, buying, selling, now); err != nil {
			storeErrs = append(storeErrs, err)
			continue
		}
		upserted++
		metrics.RatesUpsertedTotal.Inc()
	}
	if len(storeErrs) > 0 {
		return upserted, rejected, fmt.Errorf("%w: %w", ErrStoreFailure, errors.Join(storeErrs...))
	}
	return upserted, rejected, nil
}
