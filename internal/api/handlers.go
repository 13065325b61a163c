package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxquotes/internal/api/middleware"
	"fxquotes/internal/repository"
	"fxquotes/internal/service"
)

// CurrencyReader resolves currency metadata.
type CurrencyReader interface {
	Get(ctx context.Context, code string) (*repository.Currency, error)
	ListActive(ctx context.Context) ([]repository.Currency, error)
}

// CreateQuoteRequest represents the request body for quote creation
type CreateQuoteRequest struct {
	SourceCurrency string          `json:"source_currency" example:"USD"`
	TargetCurrency string          `json:"target_currency" example:"NGN"`
	Amount         decimal.Decimal `json:"amount" swaggertype:"string" example:"100.00"`
}

// QuoteResponse represents a quote
type QuoteResponse struct {
	QuoteID               string `json:"quote_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	SourceCurrency        string `json:"source_currency" example:"USD"`
	TargetCurrency        string `json:"target_currency" example:"NGN"`
	SourceAmount          string `json:"source_amount" example:"100.00"`
	TargetAmount          string `json:"target_amount" example:"144720.00"`
	Rate                  string `json:"rate" example:"1447.2"`
	FormattedSourceAmount string `json:"formatted_source_amount,omitempty" example:"$100.00"`
	FormattedTargetAmount string `json:"formatted_target_amount,omitempty" example:"₦144,720.00"`
	CreatedAt             string `json:"created_at" example:"2025-12-01T10:15:30Z"`
	ExpiresAt             string `json:"expires_at" example:"2025-12-01T10:16:30Z"`
	Expired               bool   `json:"expired" example:"false"`
}

// HandleCreateQuote godoc
// @Summary Create a conversion quote
// @Description Converts amount of source_currency into target_currency at the stored selling rate of the direct pair. The quote is valid for a limited time.
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body CreateQuoteRequest true "Currencies and amount (positive, at most 2 decimal places)"
// @Success 201 {object} QuoteResponse "Quote created"
// @Failure 400 {object} ErrorResponse "Invalid input, unknown or inactive currency"
// @Failure 422 {object} ErrorResponse "No rate available for the pair"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /quotes [post]
func HandleCreateQuote(svc service.QuoteServiceInterface, currencies CurrencyReader, precision int32, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateQuoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
			return
		}
		if req.SourceCurrency == "" || req.TargetCurrency == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "source_currency and target_currency are required"})
			return
		}

		q, err := svc.CreateQuote(r.Context(), service.QuoteRequest{
			Source: req.SourceCurrency,
			Target: req.TargetCurrency,
			Amount: req.Amount,
		}, time.Now().UTC())
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidInput),
				errors.Is(err, service.ErrUnknownCurrency),
				errors.Is(err, service.ErrInactiveCurrency):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case errors.Is(err, service.ErrRateUnavailable):
				writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
			default:
				logger.Errorw("Quote creation failed", "request_id", middleware.RequestIDFromContext(r.Context()), "error", err)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		writeJSON(w, http.StatusCreated, quoteResponse(r.Context(), currencies, q, precision, false))
	}
}

// HandleGetQuote godoc
// @Summary Get a quote by ID
// @Description Retrieves a previously created quote. Expired quotes are returned with status 410 and expired=true.
// @Tags quotes
// @Produce json
// @Param quote_id path string true "Quote ID (UUID)" format(uuid)
// @Success 200 {object} QuoteResponse "Quote is still valid"
// @Failure 400 {object} ErrorResponse "Invalid quote_id format"
// @Failure 404 {object} ErrorResponse "Unknown quote_id"
// @Failure 410 {object} QuoteResponse "Quote has expired"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /quotes/{quote_id} [get]
func HandleGetQuote(svc service.QuoteServiceInterface, currencies CurrencyReader, precision int32, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID := chi.URLParam(r, "quote_id")
		if quoteID == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "quote_id is required"})
			return
		}

		res, err := svc.GetQuote(r.Context(), quoteID, time.Now().UTC())
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidQuoteID):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case errors.Is(err, service.ErrNotFound):
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Unknown quote_id"})
			default:
				logger.Errorw("Quote lookup failed", "request_id", middleware.RequestIDFromContext(r.Context()),
					"quote_id", quoteID, "error", err)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}

		status := http.StatusOK
		if res.Expired {
			status = http.StatusGone
		}
		writeJSON(w, status, quoteResponse(r.Context(), currencies, res.Quote, precision, res.Expired))
	}
}

func quoteResponse(ctx context.Context, currencies CurrencyReader, q *repository.Quote, precision int32, expired bool) QuoteResponse {
	resp := QuoteResponse{
		QuoteID:        q.ID,
		SourceCurrency: q.SourceCurrency,
		TargetCurrency: q.TargetCurrency,
		SourceAmount:   q.SourceAmount.StringFixed(2),
		TargetAmount:   q.TargetAmount.StringFixed(precision),
		Rate:           q.Rate.String(),
		CreatedAt:      q.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:      q.ExpiresAt.UTC().Format(time.RFC3339),
		Expired:        expired,
	}
	// Formatting is cosmetic; a metadata lookup failure leaves the fields empty.
	if c, err := currencies.Get(ctx, q.SourceCurrency); err == nil {
		resp.FormattedSourceAmount = c.Format(q.SourceAmount)
	}
	if c, err := currencies.Get(ctx, q.TargetCurrency); err == nil {
		resp.FormattedTargetAmount = c.Format(q.TargetAmount)
	}
	return resp
}
