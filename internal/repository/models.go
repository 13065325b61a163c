package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// SymbolPosition says where a currency symbol is placed relative to the amount.
type SymbolPosition string

// Symbol placements.
const (
	SymbolBefore SymbolPosition = "before"
	SymbolAfter  SymbolPosition = "after"
)

// Currency is a currency record. Code is immutable once a rate or quote references it.
type Currency struct {
	Code               string
	Name               string
	Symbol             string
	DecimalPlaces      int32
	SymbolPosition     SymbolPosition
	ThousandsSeparator string
	DecimalSeparator   string
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Rate is the latest exchange rate for an ordered (Base, Quote) pair.
type Rate struct {
	Base        string
	Quote       string
	MeanRate    decimal.Decimal
	BuyingRate  decimal.Decimal
	SellingRate decimal.Decimal
	LastUpdated time.Time
}

// Quote is an immutable conversion offer. Rate is a snapshot of the selling
// rate used, not a reference to the live rate row.
type Quote struct {
	ID             string
	SourceCurrency string
	TargetCurrency string
	SourceAmount   decimal.Decimal
	TargetAmount   decimal.Decimal
	Rate           decimal.Decimal
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// IsExpired reports whether the quote is past its expiry at now.
// A quote is still valid at exactly ExpiresAt.
func (q *Quote) IsExpired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// IsStale reports whether a rate must be re-fetched: there is no rate yet, or
// at least interval has elapsed since it was last updated.
func IsStale(r *Rate, now time.Time, interval time.Duration) bool {
	if r == nil {
		return true
	}
	return now.Sub(r.LastUpdated) >= interval
}
