package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fxquotes/internal/repository"
)

const cacheKeyPrefixQuote = "quote:"

func quoteCacheKey(id string) string {
	return cacheKeyPrefixQuote + "{" + id + "}"
}

var quoteCacheFields = []string{"source", "target", "source_amount", "target_amount", "rate", "created_at", "expires_at"}

func (s *QuoteService) cacheGetQuote(ctx context.Context, id string) (*repository.Quote, bool) {
	if s.cache == nil {
		return nil, false
	}

	vals, err := s.cache.HMGet(ctx, quoteCacheKey(id), quoteCacheFields...).Result()
	if err != nil || len(vals) != len(quoteCacheFields) {
		return nil, false
	}
	str := make([]string, len(vals))
	for i, v := range vals {
		sv, ok := asString(v)
		if !ok {
			return nil, false
		}
		str[i] = sv
	}

	q := &repository.Quote{ID: id, SourceCurrency: str[0], TargetCurrency: str[1]}
	for i, dst := range []*decimal.Decimal{&q.SourceAmount, &q.TargetAmount, &q.Rate} {
		d, err := decimal.NewFromString(str[2+i])
		if err != nil {
			return nil, false
		}
		*dst = d
	}
	if q.CreatedAt, err = timeParse(str[5]); err != nil {
		return nil, false
	}
	if q.ExpiresAt, err = timeParse(str[6]); err != nil {
		return nil, false
	}
	return q, true
}

func (s *QuoteService) cacheSetQuote(ctx context.Context, q *repository.Quote) {
	if s.cache == nil || q == nil {
		return
	}

	key := quoteCacheKey(q.ID)
	pipe := s.cache.Pipeline()
	pipe.HSet(ctx, key,
		"source", q.SourceCurrency,
		"target", q.TargetCurrency,
		"source_amount", q.SourceAmount.String(),
		"target_amount", q.TargetAmount.String(),
		"rate", q.Rate.String(),
		"created_at", q.CreatedAt.Format(time.RFC3339Nano),
		"expires_at", q.ExpiresAt.Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, s.cacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnw("Failed to update cache", "key", key, "error", err)
	}
}

func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	default:
		return "", false
	}
}

func timeParse(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
