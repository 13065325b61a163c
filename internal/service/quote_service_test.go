package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxquotes/internal/config"
	"fxquotes/internal/repository"
)

var (
	testQuotesCfg = config.QuotesConfig{ValiditySec: 60, Precision: 2}
	testCacheCfg  = config.CacheConfig{QuoteTTLSec: 600, ExchangeProviderPriceTTLSec: 300}
)

// usdNgnFixture stores USD/NGN at mean 1440 with the default spread applied.
func usdNgnFixture(now time.Time) (*memCurrencies, *memRates) {
	currencies := newMemCurrencies("NGN", "USD")
	rates := newMemRates()
	_, _ = rates.Upsert(context.Background(), "USD", "NGN", dec("1440"), dec("1432.8"), dec("1447.2"), now)
	return currencies, rates
}

func newTestQuoteService(currencies *memCurrencies, rates *memRates, repo repository.QuoteRepository, cache *redis.Client) *QuoteService {
	return NewQuoteService(NewRegistry(currencies, testLog), rates, repo, cache, testLog, testQuotesCfg, testCacheCfg)
}

func TestIsValidCurrencyCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"USD", true},
		{"EUR", true},
		{"NGN", true},
		{"usd", true},   // should accept lowercase and convert
		{"US", false},   // too short
		{"USDA", false}, // too long
		{"US1", false},  // contains number
		{"US$", false},  // contains special char
		{"", false},     // empty
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			result := IsValidCurrencyCode(tc.code)
			if result != tc.valid {
				t.Errorf("IsValidCurrencyCode(%q) = %v, want %v", tc.code, result, tc.valid)
			}
		})
	}
}

func TestCreateQuote_EndToEnd(t *testing.T) {
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	currencies, rates := usdNgnFixture(now)
	repo, stored := memQuoteRepo()
	svc := newTestQuoteService(currencies, rates, repo, nil)

	q, err := svc.CreateQuote(context.Background(), QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("100.00")}, now)

	require.NoError(t, err)
	assert.Equal(t, "144720.00", q.TargetAmount.StringFixed(2))
	assert.True(t, q.Rate.Equal(dec("1447.2")))
	assert.True(t, q.SourceAmount.Equal(dec("100")))
	assert.True(t, q.CreatedAt.Equal(now))
	assert.True(t, q.ExpiresAt.Equal(now.Add(60*time.Second)))
	assert.Contains(t, stored, q.ID)

	res, err := svc.GetQuote(context.Background(), q.ID, now.Add(59*time.Second))
	require.NoError(t, err)
	assert.False(t, res.Expired)

	res, err = svc.GetQuote(context.Background(), q.ID, now.Add(61*time.Second))
	require.NoError(t, err)
	assert.True(t, res.Expired)
}

func TestCreateQuote_RoundsHalfUp(t *testing.T) {
	now := time.Now().UTC()
	currencies := newMemCurrencies("EUR", "USD")
	rates := newMemRates()
	_, _ = rates.Upsert(context.Background(), "EUR", "USD", dec("1.08"), dec("1.0746"), dec("1.0854"), now)
	repo, _ := memQuoteRepo()

	// 0.05 * 1.0854 = 0.05427 -> 0.05, 12.35 * 1.0854 = 13.40469 -> 13.40, 0.5 * 1.0854 = 0.5427 -> 0.54
	for amount, want := range map[string]string{"0.05": "0.05", "12.35": "13.40", "0.5": "0.54", "10.01": "10.86"} {
		q, err := newTestQuoteService(currencies, rates, repo, nil).
			CreateQuote(context.Background(), QuoteRequest{Source: "EUR", Target: "USD", Amount: dec(amount)}, now)
		require.NoError(t, err)
		assert.Equal(t, want, q.TargetAmount.StringFixed(2), "amount %s", amount)
	}
}

func TestCreateQuote_CustomValidity(t *testing.T) {
	now := time.Now().UTC()
	currencies, rates := usdNgnFixture(now)
	repo, _ := memQuoteRepo()

	q, err := newTestQuoteService(currencies, rates, repo, nil).CreateQuote(context.Background(),
		QuoteRequest{Source: "usd", Target: " ngn ", Amount: dec("1"), Validity: 5 * time.Minute}, now)

	require.NoError(t, err)
	assert.Equal(t, "USD", q.SourceCurrency)
	assert.Equal(t, "NGN", q.TargetCurrency)
	assert.True(t, q.ExpiresAt.Equal(now.Add(5*time.Minute)))
}

func TestCreateQuote_Errors(t *testing.T) {
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     QuoteRequest
		setup   func(c *memCurrencies, r *memRates)
		wantErr error
	}{
		{"zero amount", QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("0")}, nil, ErrInvalidInput},
		{"negative amount", QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("-5")}, nil, ErrInvalidInput},
		{"too many decimals", QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("1.005")}, nil, ErrInvalidInput},
		{"negative validity", QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("1"), Validity: -time.Second}, nil, ErrInvalidInput},
		{"malformed code", QuoteRequest{Source: "US", Target: "NGN", Amount: dec("1")}, nil, ErrInvalidInput},
		{"same currency", QuoteRequest{Source: "USD", Target: "usd", Amount: dec("1")}, nil, ErrInvalidInput},
		{"unknown source", QuoteRequest{Source: "XYZ", Target: "NGN", Amount: dec("1")}, nil, ErrUnknownCurrency},
		{"unknown target", QuoteRequest{Source: "USD", Target: "XYZ", Amount: dec("1")}, nil, ErrUnknownCurrency},
		{
			"inactive target",
			QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("1")},
			func(c *memCurrencies, _ *memRates) { _ = c.SetActive(context.Background(), "NGN", false) },
			ErrInactiveCurrency,
		},
		{
			"only inverse rate stored",
			QuoteRequest{Source: "NGN", Target: "USD", Amount: dec("1000")},
			nil,
			ErrRateUnavailable,
		},
		{
			"rate store down",
			QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("1")},
			func(_ *memCurrencies, r *memRates) { r.getErr = errors.New("connection refused") },
			ErrStoreFailure,
		},
		{
			"currency store down",
			QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("1")},
			func(c *memCurrencies, _ *memRates) { c.getErr = errors.New("connection refused") },
			ErrStoreFailure,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			currencies, rates := usdNgnFixture(now)
			if tc.setup != nil {
				tc.setup(currencies, rates)
			}
			repo, stored := memQuoteRepo()

			q, err := newTestQuoteService(currencies, rates, repo, nil).CreateQuote(context.Background(), tc.req, now)

			assert.Nil(t, q)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, stored)
		})
	}
}

func TestCreateQuote_PersistFailure(t *testing.T) {
	now := time.Now().UTC()
	currencies, rates := usdNgnFixture(now)
	repo := &mockQuoteRepo{createFunc: func(context.Context, *repository.Quote) error {
		return errors.New("disk full")
	}}

	_, err := newTestQuoteService(currencies, rates, repo, nil).
		CreateQuote(context.Background(), QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("1")}, now)

	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestGetQuote(t *testing.T) {
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	t.Run("invalid id", func(t *testing.T) {
		repo, _ := memQuoteRepo()
		_, err := newTestQuoteService(newMemCurrencies(), newMemRates(), repo, nil).GetQuote(context.Background(), "not-a-uuid", now)
		assert.ErrorIs(t, err, ErrInvalidQuoteID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, _ := memQuoteRepo()
		_, err := newTestQuoteService(newMemCurrencies(), newMemRates(), repo, nil).
			GetQuote(context.Background(), "7c1e7ad4-8d0c-4b53-9f6a-3a0b9f0b2f10", now)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := &mockQuoteRepo{getByIDFunc: func(context.Context, string) (*repository.Quote, error) {
			return nil, errors.New("timeout")
		}}
		_, err := newTestQuoteService(newMemCurrencies(), newMemRates(), repo, nil).
			GetQuote(context.Background(), "7c1e7ad4-8d0c-4b53-9f6a-3a0b9f0b2f10", now)
		assert.ErrorIs(t, err, ErrStoreFailure)
	})
}

func TestGetQuote_ServedFromCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	currencies, rates := usdNgnFixture(now)
	repo, stored := memQuoteRepo()
	svc := newTestQuoteService(currencies, rates, repo, rdb)

	q, err := svc.CreateQuote(context.Background(), QuoteRequest{Source: "USD", Target: "NGN", Amount: dec("100.00")}, now)
	require.NoError(t, err)
	assert.True(t, mr.Exists(quoteCacheKey(q.ID)))

	// the cache alone must be able to answer
	delete(stored, q.ID)

	res, err := svc.GetQuote(context.Background(), q.ID, now.Add(61*time.Second))
	require.NoError(t, err)
	assert.True(t, res.Expired)
	assert.Equal(t, "USD", res.Quote.SourceCurrency)
	assert.True(t, res.Quote.TargetAmount.Equal(dec("144720")))
	assert.True(t, res.Quote.ExpiresAt.Equal(q.ExpiresAt))

	mr.FastForward(time.Duration(testCacheCfg.QuoteTTLSec+1) * time.Second)
	_, err = svc.GetQuote(context.Background(), q.ID, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetQuote_ReadThroughFillsCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	id := "7c1e7ad4-8d0c-4b53-9f6a-3a0b9f0b2f10"
	calls := 0
	repo := &mockQuoteRepo{getByIDFunc: func(context.Context, string) (*repository.Quote, error) {
		calls++
		return &repository.Quote{ID: id, SourceCurrency: "EUR", TargetCurrency: "USD", SourceAmount: dec("10"),
			TargetAmount: dec("10.85"), Rate: dec("1.0854"), CreatedAt: now, ExpiresAt: now.Add(time.Minute)}, nil
	}}
	svc := newTestQuoteService(newMemCurrencies(), newMemRates(), repo, rdb)

	for range 3 {
		res, err := svc.GetQuote(context.Background(), id, now)
		require.NoError(t, err)
		assert.False(t, res.Expired)
		assert.True(t, res.Quote.Rate.Equal(dec("1.0854")))
	}
	assert.Equal(t, 1, calls)
}
