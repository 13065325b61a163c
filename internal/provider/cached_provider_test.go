package provider

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedRatesProvider_FetchRates(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	base := "USD"
	symbols := []string{"EUR", "NGN"}
	ttl := 10 * time.Second

	t.Run("cache miss then hit", func(t *testing.T) {
		mr.FlushAll()
		mockProv := new(MockProvider)
		mockProv.On("FetchRates", mock.Anything, base, symbols).Return(rates("EUR", "0.92", "NGN", "1440"), nil).Once()

		cachedProv := NewCachedRatesProvider(mockProv, rdb, ttl, "test_provider")

		// First call - cache miss
		got, err := cachedProv.FetchRates(context.Background(), base, symbols)
		require.NoError(t, err)
		assert.Equal(t, "1440", got["NGN"].String())
		mockProv.AssertExpectations(t)

		// Second call - cache hit (MockProvider should NOT be called again because of .Once())
		got2, err := cachedProv.FetchRates(context.Background(), base, symbols)
		require.NoError(t, err)
		assert.Equal(t, "0.92", got2["EUR"].String())
		assert.Equal(t, "1440", got2["NGN"].String())
	})

	t.Run("partial cache goes to provider", func(t *testing.T) {
		mr.FlushAll()
		mockProv := new(MockProvider)
		mockProv.On("FetchRates", mock.Anything, base, []string{"EUR"}).Return(rates("EUR", "0.92"), nil).Once()
		mockProv.On("FetchRates", mock.Anything, base, symbols).Return(rates("EUR", "0.93", "NGN", "1441"), nil).Once()

		cachedProv := NewCachedRatesProvider(mockProv, rdb, ttl, "test_provider")

		_, err := cachedProv.FetchRates(context.Background(), base, []string{"EUR"})
		require.NoError(t, err)

		got, err := cachedProv.FetchRates(context.Background(), base, symbols)
		require.NoError(t, err)
		assert.Equal(t, "1441", got["NGN"].String())
		mockProv.AssertExpectations(t)
	})

	t.Run("provider error is not cached", func(t *testing.T) {
		mr.FlushAll()
		mockProv := new(MockProvider)
		mockProv.On("FetchRates", mock.Anything, base, symbols).Return(nil, assert.AnError).Once()

		cachedProv := NewCachedRatesProvider(mockProv, rdb, ttl, "test_provider")

		// First call - provider error
		_, err := cachedProv.FetchRates(context.Background(), base, symbols)
		assert.Error(t, err)

		// Second call - provider should be called again
		mockProv.On("FetchRates", mock.Anything, base, symbols).Return(rates("EUR", "0.92", "NGN", "1440"), nil).Once()
		got, err := cachedProv.FetchRates(context.Background(), base, symbols)
		assert.NoError(t, err)
		assert.Len(t, got, 2)
		mockProv.AssertExpectations(t)
	})

	t.Run("cache expires", func(t *testing.T) {
		mr.FlushAll()
		mockProv := new(MockProvider)
		mockProv.On("FetchRates", mock.Anything, base, symbols).Return(rates("EUR", "0.92", "NGN", "1440"), nil).Once()

		cachedProv := NewCachedRatesProvider(mockProv, rdb, ttl, "test_provider")

		_, _ = cachedProv.FetchRates(context.Background(), base, symbols)

		mr.FastForward(ttl + time.Second)

		mockProv.On("FetchRates", mock.Anything, base, symbols).Return(rates("EUR", "0.91", "NGN", "1450"), nil).Once()
		got, err := cachedProv.FetchRates(context.Background(), base, symbols)
		require.NoError(t, err)
		assert.Equal(t, "1450", got["NGN"].String())
		mockProv.AssertExpectations(t)
	})

	t.Run("nil cache passes through", func(t *testing.T) {
		mockProv := new(MockProvider)
		mockProv.On("FetchRates", mock.Anything, base, symbols).Return(rates("EUR", "0.92"), nil).Twice()

		cachedProv := NewCachedRatesProvider(mockProv, nil, ttl, "test_provider")
		_, _ = cachedProv.FetchRates(context.Background(), base, symbols)
		_, _ = cachedProv.FetchRates(context.Background(), base, symbols)
		mockProv.AssertExpectations(t)
	})
}
