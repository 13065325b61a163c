// Package provider implements external rate providers for fetching currency exchange rates.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RatesProvider fetches mean exchange rates for one base currency against a set
// of target currencies in a single call. The result only contains requested symbols.
type RatesProvider interface {
	FetchRates(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error)
}

// ErrRateLimited is returned when a provider signals that the call budget is exhausted.
var ErrRateLimited = errors.New("provider rate limit exceeded")

// ErrNotConfigured is returned by providers missing a required credential.
var ErrNotConfigured = errors.New("provider not configured")

// pick keeps only the requested symbols from a provider response.
func pick(rates map[string]decimal.Decimal, symbols []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(symbols))
	for _, s := range symbols {
		if r, ok := rates[s]; ok {
			out[s] = r
		}
	}
	return out
}

func statusError(name string, status int, body []byte) error {
	if status == 429 {
		return fmt.Errorf("%s API returned status %d: %w", name, status, ErrRateLimited)
	}
	return fmt.Errorf("%s API returned status %d: %s", name, status, strings.TrimSpace(string(body)))
}
