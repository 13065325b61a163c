package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var _ RatesProvider = (*ExchangeProviderFacade)(nil)

// ExchangeProviderFacade is an abstraction that calls providers sequentially.
type ExchangeProviderFacade struct {
	providers []RatesProvider
}

// NewExchangeProviderFacade creates a new ExchangeProviderFacade with the given list of providers.
func NewExchangeProviderFacade(providers ...RatesProvider) *ExchangeProviderFacade {
	return &ExchangeProviderFacade{
		providers: providers,
	}
}

// FetchRates calls providers sequentially until one returns at least one rate.
func (p *ExchangeProviderFacade) FetchRates(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error) {
	var errs []error
	for _, prov := range p.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		rates, err := prov.FetchRates(ctx, base, symbols)
		if err == nil && len(rates) > 0 {
			return rates, nil
		}
		if err == nil {
			err = fmt.Errorf("no rates returned for %s", base)
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}
