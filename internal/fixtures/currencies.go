// Package fixtures loads the reference currency list into the store.
package fixtures

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fxquotes/internal/repository"
)

//go:embed currencies.csv
var currenciesCSV string

const currencyColumns = 8

// LoadCurrencies reads currencies from the CSV at path, or from the embedded
// list when path is empty.
func LoadCurrencies(path string) ([]repository.Currency, error) {
	var r io.Reader

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close() //nolint:errcheck // read-only
		r = f
	} else {
		r = strings.NewReader(currenciesCSV)
	}

	return parseCurrenciesCSV(r)
}

func parseCurrenciesCSV(r io.Reader) ([]repository.Currency, error) {
	csvReader := csv.NewReader(r)
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) < currencyColumns {
		return nil, fmt.Errorf("invalid CSV format: expected a header with %d columns", currencyColumns)
	}

	seen := make(map[string]int, len(records))
	out := make([]repository.Currency, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		c, err := parseCurrency(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, dup := seen[c.Code]; dup {
			return nil, fmt.Errorf("line %d: duplicate code %s (first on line %d)", line, c.Code, prev)
		}
		seen[c.Code] = line
		out = append(out, c)
	}
	return out, nil
}

func parseCurrency(rec []string) (repository.Currency, error) {
	if len(rec) < currencyColumns {
		return repository.Currency{}, fmt.Errorf("expected %d columns, got %d", currencyColumns, len(rec))
	}
	code := strings.ToUpper(strings.TrimSpace(rec[0]))
	if len(code) != 3 || strings.Trim(code, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") != "" {
		return repository.Currency{}, fmt.Errorf("invalid currency code %q", rec[0])
	}
	places, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 32)
	if err != nil || places < 0 {
		return repository.Currency{}, fmt.Errorf("invalid decimal_places %q", rec[3])
	}
	pos := repository.SymbolPosition(strings.ToLower(strings.TrimSpace(rec[4])))
	if pos != repository.SymbolBefore && pos != repository.SymbolAfter {
		return repository.Currency{}, fmt.Errorf("invalid symbol_position %q", rec[4])
	}
	active, err := strconv.ParseBool(strings.TrimSpace(rec[7]))
	if err != nil {
		return repository.Currency{}, fmt.Errorf("invalid active flag %q", rec[7])
	}
	return repository.Currency{
		Code:               code,
		Name:               strings.TrimSpace(rec[1]),
		Symbol:             strings.TrimSpace(rec[2]),
		DecimalPlaces:      int32(places),
		SymbolPosition:     pos,
		ThousandsSeparator: rec[5],
		DecimalSeparator:   rec[6],
		Active:             active,
	}, nil
}

// ApplyCurrencies upserts every currency, continuing past individual failures.
func ApplyCurrencies(ctx context.Context, repo repository.CurrencyRepository, currencies []repository.Currency, logger *zap.SugaredLogger) (int, error) {
	var errs []error
	applied := 0
	for _, c := range currencies {
		if err := repo.Upsert(ctx, c); err != nil {
			logger.Errorw("Failed to load currency", "code", c.Code, "error", err)
			errs = append(errs, err)
			continue
		}
		applied++
	}
	logger.Infow("Loaded currencies", "applied", applied, "failed", len(errs))
	return applied, errors.Join(errs...)
}
