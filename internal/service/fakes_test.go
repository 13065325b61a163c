package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxquotes/internal/config"
	"fxquotes/internal/repository"
)

var testLog = zap.NewNop().Sugar()

var testRatesCfg = config.RatesConfig{RefreshSec: 3000, CheckIntervalSec: 300, SpreadPct: "0.005", FetchTimeoutSec: 10}

// In-memory currency repository
type memCurrencies struct {
	byCode  map[string]repository.Currency
	listErr error
	getErr  error
}

func newMemCurrencies(active ...string) *memCurrencies {
	m := &memCurrencies{byCode: map[string]repository.Currency{}}
	for _, code := range active {
		m.byCode[code] = repository.Currency{Code: code, Name: code, DecimalPlaces: 2, Active: true}
	}
	return m
}

func (m *memCurrencies) Get(_ context.Context, code string) (*repository.Currency, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.byCode[code]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCurrencies) ListActive(ctx context.Context) ([]repository.Currency, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	all, _ := m.List(ctx)
	var out []repository.Currency
	for _, c := range all {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCurrencies) List(_ context.Context) ([]repository.Currency, error) {
	out := make([]repository.Currency, 0, len(m.byCode))
	for _, c := range m.byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memCurrencies) Upsert(_ context.Context, c repository.Currency) error {
	m.byCode[c.Code] = c
	return nil
}

func (m *memCurrencies) SetActive(_ context.Context, code string, active bool) error {
	c, ok := m.byCode[code]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	c.Active = active
	m.byCode[code] = c
	return nil
}

// In-memory rate repository
type memRates struct {
	mu        sync.Mutex
	rows      map[[2]string]repository.Rate
	upsertErr map[string]error // by base
	listErr   map[string]error // by base
	getErr    error
	upserts   int
}

func newMemRates() *memRates {
	return &memRates{rows: map[[2]string]repository.Rate{}, upsertErr: map[string]error{}, listErr: map[string]error{}}
}

func (m *memRates) put(base, quote, mean string, updated time.Time) {
	d := decimal.RequireFromString(mean)
	m.rows[[2]string{base, quote}] = repository.Rate{Base: base, Quote: quote, MeanRate: d, BuyingRate: d, SellingRate: d, LastUpdated: updated}
}

func (m *memRates) Get(_ context.Context, base, quote string) (*repository.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.rows[[2]string{base, quote}]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memRates) ListByBase(_ context.Context, base string) ([]repository.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.listErr[base]; err != nil {
		return nil, err
	}
	var out []repository.Rate
	for k, r := range m.rows {
		if k[0] == base {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quote < out[j].Quote })
	return out, nil
}

func (m *memRates) Upsert(_ context.Context, base, quote string, mean, buying, selling decimal.Decimal, now time.Time) (*repository.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.upsertErr[base]; err != nil {
		return nil, err
	}
	r := repository.Rate{Base: base, Quote: quote, MeanRate: mean, BuyingRate: buying, SellingRate: selling, LastUpdated: now}
	m.rows[[2]string{base, quote}] = r
	m.upserts++
	return &r, nil
}

func (m *memRates) IsStale(ctx context.Context, base, quote string, now time.Time, interval time.Duration) (bool, error) {
	r, err := m.Get(ctx, base, quote)
	if err != nil {
		return false, err
	}
	return repository.IsStale(r, now, interval), nil
}

// Mock quote repository
type mockQuoteRepo struct {
	createFunc  func(ctx context.Context, q *repository.Quote) error
	getByIDFunc func(ctx context.Context, id string) (*repository.Quote, error)
}

func (m *mockQuoteRepo) Create(ctx context.Context, q *repository.Quote) error {
	return m.createFunc(ctx, q)
}

func (m *mockQuoteRepo) GetByID(ctx context.Context, id string) (*repository.Quote, error) {
	return m.getByIDFunc(ctx, id)
}

// memQuoteRepo returns a mockQuoteRepo backed by a map.
func memQuoteRepo() (*mockQuoteRepo, map[string]*repository.Quote) {
	stored := map[string]*repository.Quote{}
	return &mockQuoteRepo{
		createFunc: func(_ context.Context, q *repository.Quote) error {
			cp := *q
			stored[q.ID] = &cp
			return nil
		},
		getByIDFunc: func(_ context.Context, id string) (*repository.Quote, error) {
			return stored[id], nil
		},
	}, stored
}

// Mock provider
type mockRatesProvider struct {
	mu        sync.Mutex
	calls     map[string]int
	fetchFunc func(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error)
}

func (m *mockRatesProvider) FetchRates(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[base]++
	m.mu.Unlock()
	return m.fetchFunc(ctx, base, symbols)
}

func (m *mockRatesProvider) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
