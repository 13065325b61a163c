package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateRepository defines DB operations for exchange rates.
type RateRepository interface {
	Get(ctx context.Context, base, quote string) (*Rate, error)
	ListByBase(ctx context.Context, base string) ([]Rate, error)
	Upsert(ctx context.Context, base, quote string, mean, buying, selling decimal.Decimal, now time.Time) (*Rate, error)
	IsStale(ctx context.Context, base, quote string, now time.Time, interval time.Duration) (bool, error)
}

// PostgresRateRepository is an implementation of RateRepository using PostgreSQL.
type PostgresRateRepository struct {
	db *sql.DB
}

// NewPostgresRateRepository creates a new PostgresRateRepository.
func NewPostgresRateRepository(db *sql.DB) RateRepository {
	return &PostgresRateRepository{db: db}
}

const rateColumns = `base, quote, mean_rate, buying_rate, selling_rate, last_updated`

// Get returns the rate for the ordered pair, or (nil, nil) if none was stored yet.
func (r *PostgresRateRepository) Get(ctx context.Context, base, quote string) (*Rate, error) {
	query := `SELECT ` + rateColumns + ` FROM rates WHERE base=$1 AND quote=$2`
	rate, err := scanRate(r.db.QueryRowContext(ctx, query, base, quote))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rate %s/%s: %w", base, quote, err)
	}
	return rate, nil
}

// ListByBase returns every stored rate whose base is the given currency.
func (r *PostgresRateRepository) ListByBase(ctx context.Context, base string) ([]Rate, error) {
	query := `SELECT ` + rateColumns + ` FROM rates WHERE base=$1 ORDER BY quote`
	rows, err := r.db.QueryContext(ctx, query, base)
	if err != nil {
		return nil, fmt.Errorf("list rates for %s: %w", base, err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []Rate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		out = append(out, *rate)
	}
	return out, rows.Err()
}

// Upsert creates the rate for the pair or overwrites all three prices and
// last_updated in one statement, so concurrent writers never leave a row with
// prices from different refreshes. The last writer wins.
func (r *PostgresRateRepository) Upsert(ctx context.Context, base, quote string, mean, buying, selling decimal.Decimal, now time.Time) (*Rate, error) {
	query := `INSERT INTO rates (base, quote, mean_rate, buying_rate, selling_rate, last_updated)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (base, quote) DO UPDATE SET
	              mean_rate=EXCLUDED.mean_rate,
	              buying_rate=EXCLUDED.buying_rate,
	              selling_rate=EXCLUDED.selling_rate,
	              last_updated=EXCLUDED.last_updated
	          RETURNING ` + rateColumns

	rate, err := scanRate(r.db.QueryRowContext(ctx, query, base, quote, mean, buying, selling, now))
	if err != nil {
		return nil, fmt.Errorf("upsert rate %s/%s: %w", base, quote, err)
	}
	return rate, nil
}

// IsStale reports whether the pair has no rate or its rate is at least interval old at now.
func (r *PostgresRateRepository) IsStale(ctx context.Context, base, quote string, now time.Time, interval time.Duration) (bool, error) {
	rate, err := r.Get(ctx, base, quote)
	if err != nil {
		return false, err
	}
	return IsStale(rate, now, interval), nil
}

func scanRate(row rowScanner) (*Rate, error) {
	var rate Rate
	err := row.Scan(&rate.Base, &rate.Quote, &rate.MeanRate, &rate.BuyingRate, &rate.SellingRate, &rate.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
