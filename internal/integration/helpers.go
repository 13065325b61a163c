//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"fxquotes/internal/config"
	"fxquotes/internal/fixtures"
	"fxquotes/internal/repository"
)

// resetTestData empties all tables and Redis, then loads the embedded currency list.
func resetTestData(t *testing.T) {
	t.Helper()
	ctx := testContext(t)

	if err := suite.Reset(ctx); err != nil {
		t.Fatalf("reset test data: %v", err)
	}

	list, err := fixtures.LoadCurrencies("")
	if err != nil {
		t.Fatalf("load currencies: %v", err)
	}
	repo := repository.NewPostgresCurrencyRepository(suite.DB())
	if _, err := fixtures.ApplyCurrencies(ctx, repo, list, zap.NewNop().Sugar()); err != nil {
		t.Fatalf("apply currencies: %v", err)
	}
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func ratesConfig() config.RatesConfig {
	return config.RatesConfig{RefreshSec: 3000, CheckIntervalSec: 300, SpreadPct: "0.005", FetchTimeoutSec: 5}
}

// frankfurterStub serves /latest with a mean rate of 2 for every requested symbol
// and counts the requests it receives.
func frankfurterStub(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		rates := map[string]int{}
		for _, s := range strings.Split(r.URL.Query().Get("symbols"), ",") {
			rates[s] = 2
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"amount": 1,
			"base":   r.URL.Query().Get("base"),
			"date":   "2025-12-01",
			"rates":  rates,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}
