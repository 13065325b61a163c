package service

import (
	"errors"

	"fxquotes/internal/pricing"
)

// ErrInvalidInput indicates a malformed amount, currency code, spread or quote request.
var ErrInvalidInput = pricing.ErrInvalidInput

// ErrUnknownCurrency indicates the currency code is not in the registry.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrInactiveCurrency indicates the currency exists but is not offered.
var ErrInactiveCurrency = errors.New("inactive currency")

// ErrRateUnavailable indicates no stored rate exists for the requested ordered pair.
var ErrRateUnavailable = errors.New("rate unavailable")

// ErrSourceFailure indicates the external rate source failed, timed out or answered garbage.
var ErrSourceFailure = errors.New("rate source failure")

// ErrStoreFailure indicates the persistent store could not be read or written.
var ErrStoreFailure = errors.New("store failure")

// ErrInvalidQuoteID indicates the quote id is not a UUID.
var ErrInvalidQuoteID = errors.New("invalid quote_id")

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")
