package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fxquotes/internal/repository"
	"fxquotes/internal/service"
	"fxquotes/internal/worker"
)

// RateReader reads stored rates.
type RateReader interface {
	Get(ctx context.Context, base, quote string) (*repository.Rate, error)
}

// RefreshEnqueuer queues an asynchronous rate refresh.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context) (string, error)
}

// CurrencyResponse represents an active currency
type CurrencyResponse struct {
	Code               string `json:"code" example:"NGN"`
	Name               string `json:"name" example:"Nigerian Naira"`
	Symbol             string `json:"symbol" example:"₦"`
	DecimalPlaces      int32  `json:"decimal_places" example:"2"`
	SymbolPosition     string `json:"symbol_position" example:"before"`
	ThousandsSeparator string `json:"thousands_separator" example:","`
	DecimalSeparator   string `json:"decimal_separator" example:"."`
}

// RateResponse represents a stored rate
type RateResponse struct {
	Base        string `json:"base" example:"USD"`
	Quote       string `json:"quote" example:"NGN"`
	MeanRate    string `json:"mean_rate" example:"1440"`
	BuyingRate  string `json:"buying_rate" example:"1432.8"`
	SellingRate string `json:"selling_rate" example:"1447.2"`
	LastUpdated string `json:"last_updated" example:"2025-12-01T10:15:30Z"`
}

// RefreshResponse represents an accepted refresh request
type RefreshResponse struct {
	TaskID string `json:"task_id" example:"0b6b4bd4-3d48-4a2c-9d65-77a1c0e1f7a4"`
}

// HandleListCurrencies godoc
// @Summary List active currencies
// @Description Returns the currencies available for quotes, ordered by code.
// @Tags currencies
// @Produce json
// @Success 200 {array} CurrencyResponse "Active currencies"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /currencies [get]
func HandleListCurrencies(currencies CurrencyReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := currencies.ListActive(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			return
		}

		resp := make([]CurrencyResponse, 0, len(list))
		for _, c := range list {
			resp = append(resp, CurrencyResponse{
				Code:               c.Code,
				Name:               c.Name,
				Symbol:             c.Symbol,
				DecimalPlaces:      c.DecimalPlaces,
				SymbolPosition:     string(c.SymbolPosition),
				ThousandsSeparator: c.ThousandsSeparator,
				DecimalSeparator:   c.DecimalSeparator,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleGetRate godoc
// @Summary Get the stored rate of a currency pair
// @Description Returns mean, buying and selling rate of the ordered pair. Rates are not bidirectional: base/quote and quote/base are separate entries.
// @Tags rates
// @Produce json
// @Param base path string true "Base currency code (3 letters)" minlength(3) maxlength(3)
// @Param quote path string true "Quote currency code (3 letters)" minlength(3) maxlength(3)
// @Success 200 {object} RateResponse "Rate found"
// @Failure 400 {object} ErrorResponse "Invalid currency code format"
// @Failure 404 {object} ErrorResponse "No rate stored for the pair"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/{base}/{quote} [get]
func HandleGetRate(rates RateReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base, err := service.NormalizeCode(chi.URLParam(r, "base"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		quote, err := service.NormalizeCode(chi.URLParam(r, "quote"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		rate, err := rates.Get(r.Context(), base, quote)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			return
		}
		if rate == nil {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No rate available for " + base + "/" + quote})
			return
		}

		writeJSON(w, http.StatusOK, RateResponse{
			Base:        rate.Base,
			Quote:       rate.Quote,
			MeanRate:    rate.MeanRate.String(),
			BuyingRate:  rate.BuyingRate.String(),
			SellingRate: rate.SellingRate.String(),
			LastUpdated: rate.LastUpdated.UTC().Format(time.RFC3339),
		})
	}
}

// HandleRefreshRates godoc
// @Summary Request a rate refresh
// @Description Queues a refresh cycle. Pairs that are still fresh are skipped, so this never spends more provider calls than the scheduled refresh would.
// @Tags rates
// @Produce json
// @Success 202 {object} RefreshResponse "Refresh queued"
// @Failure 409 {object} ErrorResponse "A refresh is already queued"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/refresh [post]
func HandleRefreshRates(enqueuer RefreshEnqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := enqueuer.EnqueueRefresh(r.Context())
		if err != nil {
			if errors.Is(err, worker.ErrRefreshAlreadyQueued) {
				writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			return
		}
		writeJSON(w, http.StatusAccepted, RefreshResponse{TaskID: taskID})
	}
}
