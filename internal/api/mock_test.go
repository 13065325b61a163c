package api

import (
	"context"
	"time"

	"fxquotes/internal/repository"
	"fxquotes/internal/service"
)

// mockQuoteService implements service.QuoteServiceInterface for testing.
type mockQuoteService struct {
	createQuoteFunc func(ctx context.Context, req service.QuoteRequest, now time.Time) (*repository.Quote, error)
	getQuoteFunc    func(ctx context.Context, id string, now time.Time) (*service.QuoteResult, error)
}

func (m *mockQuoteService) CreateQuote(ctx context.Context, req service.QuoteRequest, now time.Time) (*repository.Quote, error) {
	return m.createQuoteFunc(ctx, req, now)
}

func (m *mockQuoteService) GetQuote(ctx context.Context, id string, now time.Time) (*service.QuoteResult, error) {
	return m.getQuoteFunc(ctx, id, now)
}

type mockCurrencies struct {
	byCode  map[string]repository.Currency
	listErr error
}

func (m *mockCurrencies) Get(_ context.Context, code string) (*repository.Currency, error) {
	c, ok := m.byCode[code]
	if !ok {
		return nil, service.ErrUnknownCurrency
	}
	return &c, nil
}

func (m *mockCurrencies) ListActive(_ context.Context) ([]repository.Currency, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []repository.Currency
	for _, code := range []string{"EUR", "NGN", "USD"} {
		if c, ok := m.byCode[code]; ok && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockRates struct {
	getFunc func(ctx context.Context, base, quote string) (*repository.Rate, error)
}

func (m *mockRates) Get(ctx context.Context, base, quote string) (*repository.Rate, error) {
	return m.getFunc(ctx, base, quote)
}

type mockEnqueuer struct {
	enqueueFunc func(ctx context.Context) (string, error)
}

func (m *mockEnqueuer) EnqueueRefresh(ctx context.Context) (string, error) {
	return m.enqueueFunc(ctx)
}

func testCurrencies() *mockCurrencies {
	return &mockCurrencies{byCode: map[string]repository.Currency{
		"USD": {Code: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2, SymbolPosition: repository.SymbolBefore, ThousandsSeparator: ",", DecimalSeparator: ".", Active: true},
		"NGN": {Code: "NGN", Name: "Nigerian Naira", Symbol: "₦", DecimalPlaces: 2, SymbolPosition: repository.SymbolBefore, ThousandsSeparator: ",", DecimalSeparator: ".", Active: true},
		"EUR": {Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, SymbolPosition: repository.SymbolAfter, ThousandsSeparator: ".", DecimalSeparator: ",", Active: false},
	}}
}
