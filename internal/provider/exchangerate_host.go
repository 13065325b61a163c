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

var _ RatesProvider = (*ExchangeRateHostProvider)(nil)

// ExchangeRateHostProvider fetches rates from the exchangerate.host API.
type ExchangeRateHostProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewExchangeRateHostProvider creates a new ExchangeRateHostProvider with the given configuration.
func NewExchangeRateHostProvider(baseURL, apiKey string, timeoutSec int) *ExchangeRateHostProvider {
	if baseURL == "" {
		baseURL = "https://api.exchangerate.host"
	}
	return &ExchangeRateHostProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

// getLiveURL forms the API URL for fetching the rates.
func (p *ExchangeRateHostProvider) getLiveURL(base string, symbols []string) string {
	q := url.Values{}
	q.Set("access_key", p.apiKey)
	q.Set("source", base)
	q.Set("currencies", strings.Join(symbols, ","))
	return p.baseURL + "/live?" + q.Encode()
}

// exchangerate.host live API response structure
type erHostResponse struct {
	Success bool                       `json:"success"`
	Source  string                     `json:"source"`
	Quotes  map[string]decimal.Decimal `json:"quotes"`
	Error   *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

// FetchRates fetches the rates of base against all symbols in one request.
func (p *ExchangeRateHostProvider) FetchRates(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("exchangerate.host: %w: api key is empty", ErrNotConfigured)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.getLiveURL(base, symbols), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("external API request creation failed: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("external API request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, statusError("exchangerate.host", resp.StatusCode, body)
	}
	var result erHostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode external API response: %w", err)
	}
	if !result.Success {
		if result.Error != nil && result.Error.Code == 104 {
			return nil, fmt.Errorf("exchangerate.host: %s: %w", result.Error.Info, ErrRateLimited)
		}
		return nil, fmt.Errorf("external API returned success=false for %s", base)
	}

	// The API returns quotes keyed as "BASEQUOTE", e.g. "EURMXN"
	rates := make(map[string]decimal.Decimal, len(result.Quotes))
	for key, rate := range result.Quotes {
		if target, ok := strings.CutPrefix(key, base); ok {
			rates[target] = rate
		}
	}
	return pick(rates, symbols), nil
}
