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

var _ RatesProvider = (*FrankfurterProvider)(nil)

// FrankfurterProvider fetches rates from the Frankfurter API.
type FrankfurterProvider struct {
	baseURL string
	client  *http.Client
}

// NewFrankfurterProvider creates a new FrankfurterProvider.
func NewFrankfurterProvider(baseURL string, timeoutSec int) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = "https://api.frankfurter.dev/v1"
	}
	return &FrankfurterProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

type frankfurterResponse struct {
	Amount float64                    `json:"amount"`
	Base   string                     `json:"base"`
	Date   string                     `json:"date"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// FetchRates retrieves the rates of base against all symbols in one request.
func (p *FrankfurterProvider) FetchRates(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error) {
	q := url.Values{}
	q.Set("base", base)
	q.Set("symbols", strings.Join(symbols, ","))
	reqURL := fmt.Sprintf("%s/latest?%s", p.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("frankfurter API request creation failed: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("frankfurter API request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, statusError("frankfurter", resp.StatusCode, body)
	}

	var result frankfurterResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode frankfurter API response: %w", err)
	}
	if result.Rates == nil {
		return nil, fmt.Errorf("frankfurter response for %s has no rates", base)
	}

	return pick(result.Rates, symbols), nil
}
