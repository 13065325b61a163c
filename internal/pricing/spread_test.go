package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeSpread(t *testing.T) {
	t.Run("default spread on 1440", func(t *testing.T) {
		buying, selling, err := ComputeSpread(d("1440"), DefaultSpreadPct)
		require.NoError(t, err)
		assert.True(t, buying.Equal(d("1432.8")), "buying = %s", buying)
		assert.True(t, selling.Equal(d("1447.2")), "selling = %s", selling)
	})

	t.Run("ordering and width", func(t *testing.T) {
		means := []string{"0.000001", "0.92", "1", "18.7543", "1440", "150000.5"}
		spreads := []string{"0.0001", "0.005", "0.25", "0.999"}
		for _, m := range means {
			for _, s := range spreads {
				mean, pct := d(m), d(s)
				buying, selling, err := ComputeSpread(mean, pct)
				require.NoError(t, err)
				assert.True(t, buying.LessThan(mean), "%s/%s buying %s", m, s, buying)
				assert.True(t, selling.GreaterThan(mean), "%s/%s selling %s", m, s, selling)
				width := selling.Sub(buying)
				assert.True(t, width.Equal(mean.Mul(pct).Mul(decimal.NewFromInt(2))), "%s/%s width %s", m, s, width)
			}
		}
	})

	t.Run("zero spread collapses to mean", func(t *testing.T) {
		buying, selling, err := ComputeSpread(d("1.1"), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, buying.Equal(d("1.1")))
		assert.True(t, selling.Equal(d("1.1")))
	})

	invalid := []struct {
		name string
		mean string
		pct  string
	}{
		{"zero mean", "0", "0.005"},
		{"negative mean", "-3", "0.005"},
		{"spread of one", "1", "1"},
		{"negative spread", "1", "-0.01"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ComputeSpread(d(tc.mean), d(tc.pct))
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		amount string
		rate   string
		places int32
		want   string
	}{
		{"100.00", "1447.2", 2, "144720"},
		{"1", "0.125", 2, "0.13"},
		{"1", "0.124", 2, "0.12"},
		{"3", "0.335", 2, "1.01"},
		{"10", "1.23456", 0, "12"},
		{"10", "1.25", 0, "13"},
	}
	for _, tc := range tests {
		t.Run(tc.amount+"x"+tc.rate, func(t *testing.T) {
			got := Convert(d(tc.amount), d(tc.rate), tc.places)
			assert.True(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestRoundHalfUp_Negative(t *testing.T) {
	assert.True(t, RoundHalfUp(d("-1.005"), 2).Equal(d("-1")))
	assert.True(t, RoundHalfUp(d("-1.006"), 2).Equal(d("-1.01")))
}

func TestRoundHalfUp_HighPrecision(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"0.00000000000000015", 16, "0.0000000000000002"},
		{"0.00000000000000014", 16, "0.0000000000000001"},
		{"0.0000000000000000001", 17, "0"},
		{"1.0000000000005", 12, "1.000000000001"},
		{"1.0000000000004999", 12, "1"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := RoundHalfUp(d(tc.in), tc.places)
			assert.True(t, got.Equal(d(tc.want)), "got %s", got)
		})
	}
}
