// Package pricing turns mean exchange rates into buying/selling prices and converted amounts.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput indicates a caller-supplied value violates a precondition.
var ErrInvalidInput = errors.New("invalid input")

// DefaultSpreadPct is the spread applied on each side of the mean rate (0.5%).
var DefaultSpreadPct = decimal.RequireFromString("0.005")

var one = decimal.NewFromInt(1)

// ComputeSpread returns the buying and selling prices for a mean rate:
// buying = mean*(1-pct), selling = mean*(1+pct).
func ComputeSpread(mean, pct decimal.Decimal) (buying, selling decimal.Decimal, err error) {
	if !mean.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: mean rate must be positive, got %s", ErrInvalidInput, mean)
	}
	if err := ValidateSpread(pct); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	buying = mean.Mul(one.Sub(pct))
	selling = mean.Mul(one.Add(pct))
	return buying, selling, nil
}

// ValidateSpread checks that pct lies in [0,1).
func ValidateSpread(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: spread must be in [0,1), got %s", ErrInvalidInput, pct)
	}
	return nil
}

// Convert multiplies amount by rate and rounds half-up to the given number of decimal places.
func Convert(amount, rate decimal.Decimal, places int32) decimal.Decimal {
	return RoundHalfUp(amount.Mul(rate), places)
}

// RoundHalfUp rounds d to places decimal places, ties going towards +infinity.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	floor := d.RoundFloor(places)
	// 5 * 10^-(places+1) is exact, unlike dividing the unit by two.
	half := decimal.New(5, -places-1)
	if d.Sub(floor).GreaterThanOrEqual(half) {
		return floor.Add(decimal.New(1, -places))
	}
	return floor
}
