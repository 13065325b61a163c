//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxquotes/internal/provider"
	"fxquotes/internal/repository"
	"fxquotes/internal/service"
)

func newRefresher(t *testing.T, p provider.RatesProvider) *service.RateRefresher {
	t.Helper()
	logger := zap.NewNop().Sugar()
	registry := service.NewRegistry(repository.NewPostgresCurrencyRepository(suite.DB()), logger)
	r, err := service.NewRateRefresher(registry, repository.NewPostgresRateRepository(suite.DB()), p, logger, ratesConfig())
	if err != nil {
		t.Fatalf("NewRateRefresher: %v", err)
	}
	return r
}

func TestRefresh_FillsAllPairsThenSkips(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)

	srv, calls := frankfurterStub(t)
	cached := provider.NewCachedRatesProvider(provider.NewFrankfurterProvider(srv.URL, 5), suite.Redis(), time.Minute, "frankfurter")
	r := newRefresher(t, cached)

	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	sum, err := r.Refresh(ctx, now)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	// 5 active currencies: 5 bases, 4 targets each.
	if sum.BasesSucceeded != 5 || sum.RatesUpserted != 20 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if calls.Load() != 5 {
		t.Fatalf("expected one provider call per base, got %d", calls.Load())
	}

	rate, err := repository.NewPostgresRateRepository(suite.DB()).Get(ctx, "KES", "GBP")
	if err != nil || rate == nil {
		t.Fatalf("Get: %v %v", rate, err)
	}
	if !rate.BuyingRate.Equal(decimal.RequireFromString("1.99")) || !rate.SellingRate.Equal(decimal.RequireFromString("2.01")) {
		t.Fatalf("unexpected spread %+v", rate)
	}

	sum, err = r.Refresh(ctx, now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if sum.BasesSkipped != 5 || sum.BasesAttempted != 0 {
		t.Fatalf("expected all bases skipped, got %+v", sum)
	}
	if calls.Load() != 5 {
		t.Fatalf("fresh pairs must not reach the provider, got %d calls", calls.Load())
	}
}

func TestRefresh_NewCurrencyMakesBasesStale(t *testing.T) {
	resetTestData(t)
	ctx := testContext(t)

	srv, calls := frankfurterStub(t)
	r := newRefresher(t, provider.NewFrankfurterProvider(srv.URL, 5))

	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	if _, err := r.Refresh(ctx, now); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := repository.NewPostgresCurrencyRepository(suite.DB()).SetActive(ctx, "JPY", true); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	before := calls.Load()

	sum, err := r.Refresh(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if sum.BasesSucceeded != 6 || sum.RatesUpserted != 30 {
		t.Fatalf("expected every base refreshed after activation, got %+v", sum)
	}
	if calls.Load()-before != 6 {
		t.Fatalf("expected 6 provider calls, got %d", calls.Load()-before)
	}
}
