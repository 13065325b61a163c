package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var _ RatesProvider = (*ExchangeRatesAPIProvider)(nil)

// ExchangeRatesAPIProvider fetches rates from an exchangeratesapi.io compatible
// "latest" endpoint (access_key, base and symbols query parameters).
type ExchangeRatesAPIProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewExchangeRatesAPIProvider creates a provider calling endpoint directly, e.g.
// "https://api.exchangeratesapi.io/v1/latest".
func NewExchangeRatesAPIProvider(endpoint, apiKey string, timeoutSec int) *ExchangeRatesAPIProvider {
	return &ExchangeRatesAPIProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

type exchangeRatesAPIResponse struct {
	Success bool                       `json:"success"`
	Base    string                     `json:"base"`
	Date    string                     `json:"date"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   *struct {
		Code any    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

// FetchRates fetches the rates of base against all symbols in one request.
func (p *ExchangeRatesAPIProvider) FetchRates(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("exchangeratesapi: %w: api key is empty", ErrNotConfigured)
	}

	q := url.Values{}
	q.Set("access_key", p.apiKey)
	q.Set("base", base)
	q.Set("symbols", strings.Join(symbols, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("exchangeratesapi request creation failed: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchangeratesapi request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, statusError("exchangeratesapi", resp.StatusCode, body)
	}

	var result exchangeRatesAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode exchangeratesapi response: %w", err)
	}
	if !result.Success {
		if result.Error != nil {
			if result.Error.Type == "rate_limit_reached" || result.Error.Type == "usage_limit_reached" {
				return nil, fmt.Errorf("exchangeratesapi: %s: %w", result.Error.Info, ErrRateLimited)
			}
			return nil, fmt.Errorf("exchangeratesapi returned error %s: %s", result.Error.Type, result.Error.Info)
		}
		return nil, fmt.Errorf("exchangeratesapi returned success=false for %s", base)
	}

	return pick(result.Rates, symbols), nil
}
