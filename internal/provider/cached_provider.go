package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CachedRatesProviderDecorator wraps a RatesProvider with Redis caching.
// Rates of one base are kept in a single hash keyed by target symbol.
type CachedRatesProviderDecorator struct {
	provider     RatesProvider
	cache        *redis.Client
	ttl          time.Duration
	providerName string
}

// NewCachedRatesProvider creates a new CachedRatesProviderDecorator.
func NewCachedRatesProvider(provider RatesProvider, cache *redis.Client, ttl time.Duration, providerName string) *CachedRatesProviderDecorator {
	return &CachedRatesProviderDecorator{
		provider:     provider,
		cache:        cache,
		ttl:          ttl,
		providerName: providerName,
	}
}

func (p *CachedRatesProviderDecorator) cacheKey(base string) string {
	return fmt.Sprintf("provider_cache:%s:{%s}", p.providerName, base)
}

// FetchRates serves the batch from cache when every symbol is present there,
// otherwise calls the underlying provider and caches what it returned.
func (p *CachedRatesProviderDecorator) FetchRates(ctx context.Context, base string, symbols []string) (map[string]decimal.Decimal, error) {
	if p.cache == nil || len(symbols) == 0 {
		return p.provider.FetchRates(ctx, base, symbols)
	}

	key := p.cacheKey(base)

	if cached, ok := p.fromCache(ctx, key, symbols); ok {
		return cached, nil
	}

	rates, err := p.provider.FetchRates(ctx, base, symbols)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return rates, nil
	}

	fields := make([]any, 0, len(rates)*2)
	for symbol, rate := range rates {
		fields = append(fields, symbol, rate.String())
	}
	pipe := p.cache.Pipeline()
	pipe.HSet(ctx, key, fields...)
	pipe.Expire(ctx, key, p.ttl)
	_, _ = pipe.Exec(ctx)

	return rates, nil
}

func (p *CachedRatesProviderDecorator) fromCache(ctx context.Context, key string, symbols []string) (map[string]decimal.Decimal, bool) {
	vals, err := p.cache.HMGet(ctx, key, symbols...).Result()
	if err != nil || len(vals) != len(symbols) {
		return nil, false
	}
	out := make(map[string]decimal.Decimal, len(symbols))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		rate, err := decimal.NewFromString(s)
		if err != nil {
			return nil, false
		}
		out[symbols[i]] = rate
	}
	return out, true
}

var _ RatesProvider = (*CachedRatesProviderDecorator)(nil)
