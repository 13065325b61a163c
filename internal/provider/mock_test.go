package provider

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) FetchRates(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, base, symbols)
	rates, _ := args.Get(0).(map[string]decimal.Decimal)
	return rates, args.Error(1)
}

func rates(kv ...string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = decimal.RequireFromString(kv[i+1])
	}
	return out
}
