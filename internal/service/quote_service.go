// Package service implements the rate refresh and quote lifecycle logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxquotes/internal/config"
	"fxquotes/internal/metrics"
	"fxquotes/internal/pricing"
	"fxquotes/internal/repository"
)

// sourceAmountPlaces is the number of decimal places accepted for source amounts.
const sourceAmountPlaces = 2

// QuoteServiceInterface defines the operations available for quote management.
type QuoteServiceInterface interface {
	CreateQuote(ctx context.Context, req QuoteRequest, now time.Time) (*repository.Quote, error)
	GetQuote(ctx context.Context, id string, now time.Time) (*QuoteResult, error)
}

// QuoteRequest is an inbound request to convert Amount of Source into Target.
// A zero Validity uses the configured default.
type QuoteRequest struct {
	Source   string
	Target   string
	Amount   decimal.Decimal
	Validity time.Duration
}

// QuoteResult is a stored quote together with its expiry state at read time.
type QuoteResult struct {
	Quote   *repository.Quote
	Expired bool
}

// QuoteService mints and serves quotes from stored rates.
type QuoteService struct {
	registry  *Registry
	rates     repository.RateRepository
	repo      repository.QuoteRepository
	cache     *redis.Client
	log       *zap.SugaredLogger
	validity  time.Duration
	precision int32
	cacheTTL  time.Duration
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(registry *Registry, rates repository.RateRepository, repo repository.QuoteRepository, cache *redis.Client, logger *zap.SugaredLogger, quotesCfg config.QuotesConfig, cacheCfg config.CacheConfig) *QuoteService {
	return &QuoteService{
		registry:  registry,
		rates:     rates,
		repo:      repo,
		cache:     cache,
		log:       logger,
		validity:  time.Duration(quotesCfg.ValiditySec) * time.Second,
		precision: quotesCfg.Precision,
		cacheTTL:  time.Duration(cacheCfg.QuoteTTLSec) * time.Second,
	}
}

// CreateQuote converts req.Amount at the stored selling rate of the direct pair
// and persists the quote with expires_at = now + validity.
func (s *QuoteService) CreateQuote(ctx context.Context, req QuoteRequest, now time.Time) (*repository.Quote, error) {
	q, err := s.createQuote(ctx, req, now)
	if err != nil {
		s.log.Warnw("Quote rejected", "action", "create_quote", "status", "rejected",
			"source", req.Source, "target", req.Target, "amount", req.Amount.String(), "error", err)
		metrics.QuotesRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}
	s.log.Infow("Quote created", "action", "create_quote", "status", "created", "quote_id", q.ID,
		"source", q.SourceCurrency, "target", q.TargetCurrency, "source_amount", q.SourceAmount.String(),
		"target_amount", q.TargetAmount.String(), "rate", q.Rate.String(), "expires_at", q.ExpiresAt)
	metrics.QuotesCreatedTotal.WithLabelValues(q.SourceCurrency, q.TargetCurrency).Inc()
	return q, nil
}

func (s *QuoteService) createQuote(ctx context.Context, req QuoteRequest, now time.Time) (*repository.Quote, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !req.Amount.Equal(req.Amount.Truncate(sourceAmountPlaces)) {
		return nil, fmt.Errorf("%w: amount has more than %d decimal places", ErrInvalidInput, sourceAmountPlaces)
	}
	validity := req.Validity
	if validity == 0 {
		validity = s.validity
	}
	if validity < 0 {
		return nil, fmt.Errorf("%w: validity must be positive", ErrInvalidInput)
	}

	source, err := NormalizeCode(req.Source)
	if err != nil {
		return nil, err
	}
	target, err := NormalizeCode(req.Target)
	if err != nil {
		return nil, err
	}
	if source == target {
		return nil, fmt.Errorf("%w: source and target currency must differ", ErrInvalidInput)
	}

	for _, code := range []string{source, target} {
		c, err := s.registry.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		if !c.Active {
			return nil, fmt.Errorf("%w: %s", ErrInactiveCurrency, code)
		}
	}

	rate, err := s.rates.Get(ctx, source, target)
	if err != nil {
		s.log.Errorw("DB error fetching rate", "base", source, "quote", target, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if rate == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrRateUnavailable, source, target)
	}

	amount := req.Amount.Round(sourceAmountPlaces)
	q := &repository.Quote{
		ID:             uuid.New().String(),
		SourceCurrency: source,
		TargetCurrency: target,
		SourceAmount:   amount,
		TargetAmount:   pricing.Convert(amount, rate.SellingRate, s.precision),
		Rate:           rate.SellingRate,
		CreatedAt:      now,
		ExpiresAt:      now.Add(validity),
	}
	if err := s.repo.Create(ctx, q); err != nil {
		s.log.Errorw("DB error creating quote", "quote_id", q.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	s.cacheSetQuote(ctx, q)
	return q, nil
}

// GetQuote returns the quote with id and whether it has expired at now.
func (s *QuoteService) GetQuote(ctx context.Context, id string, now time.Time) (*QuoteResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidQuoteID
	}

	q, ok := s.cacheGetQuote(ctx, id)
	if !ok {
		var err error
		q, err = s.repo.GetByID(ctx, id)
		if err != nil {
			s.log.Errorw("DB error fetching quote by ID", "quote_id", id, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
		}
		if q == nil {
			return nil, ErrNotFound
		}
		s.cacheSetQuote(ctx, q)
	}

	return &QuoteResult{Quote: q, Expired: q.IsExpired(now)}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnknownCurrency):
		return "unknown_currency"
	case errors.Is(err, ErrInactiveCurrency):
		return "inactive_currency"
	case errors.Is(err, ErrRateUnavailable):
		return "rate_unavailable"
	default:
		return "store_failure"
	}
}
