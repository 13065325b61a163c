package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CurrencyRepository defines DB operations for currencies.
type CurrencyRepository interface {
	Get(ctx context.Context, code string) (*Currency, error)
	ListActive(ctx context.Context) ([]Currency, error)
	List(ctx context.Context) ([]Currency, error)
	Upsert(ctx context.Context, c Currency) error
	SetActive(ctx context.Context, code string, active bool) error
}

// PostgresCurrencyRepository is an implementation of CurrencyRepository using PostgreSQL.
type PostgresCurrencyRepository struct {
	db *sql.DB
}

// NewPostgresCurrencyRepository creates a new PostgresCurrencyRepository.
func NewPostgresCurrencyRepository(db *sql.DB) CurrencyRepository {
	return &PostgresCurrencyRepository{db: db}
}

const currencyColumns = `code, name, symbol, decimal_places, symbol_position,
	thousands_separator, decimal_separator, active, created_at, updated_at`

// Get returns the currency with the given code, or (nil, nil) if it does not exist.
func (r *PostgresCurrencyRepository) Get(ctx context.Context, code string) (*Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE code=$1`
	c, err := scanCurrency(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get currency %s: %w", code, err)
	}
	return c, nil
}

// ListActive returns the active currencies ordered by code.
func (r *PostgresCurrencyRepository) ListActive(ctx context.Context) ([]Currency, error) {
	return r.list(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE active ORDER BY code`)
}

// List returns every currency ordered by code.
func (r *PostgresCurrencyRepository) List(ctx context.Context) ([]Currency, error) {
	return r.list(ctx, `SELECT `+currencyColumns+` FROM currencies ORDER BY code`)
}

func (r *PostgresCurrencyRepository) list(ctx context.Context, query string) ([]Currency, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var out []Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Upsert inserts a currency or updates its metadata and active flag. The code is never changed.
func (r *PostgresCurrencyRepository) Upsert(ctx context.Context, c Currency) error {
	query := `INSERT INTO currencies (code, name, symbol, decimal_places, symbol_position,
	              thousands_separator, decimal_separator, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          ON CONFLICT (code) DO UPDATE SET
	              name=EXCLUDED.name,
	              symbol=EXCLUDED.symbol,
	              decimal_places=EXCLUDED.decimal_places,
	              symbol_position=EXCLUDED.symbol_position,
	              thousands_separator=EXCLUDED.thousands_separator,
	              decimal_separator=EXCLUDED.decimal_separator,
	              active=EXCLUDED.active,
	              updated_at=NOW()`

	_, err := r.db.ExecContext(ctx, query, c.Code, c.Name, c.Symbol, c.DecimalPlaces, string(c.SymbolPosition),
		c.ThousandsSeparator, c.DecimalSeparator, c.Active)
	if err != nil {
		return fmt.Errorf("upsert currency %s: %w", c.Code, err)
	}
	return nil
}

// SetActive toggles the active flag of an existing currency.
func (r *PostgresCurrencyRepository) SetActive(ctx context.Context, code string, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE currencies SET active=$1, updated_at=NOW() WHERE code=$2`, active, code)
	if err != nil {
		return fmt.Errorf("set currency %s active=%t: %w", code, active, err)
	}
	return checkRowsAffected(result, "currency "+code)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCurrency(row rowScanner) (*Currency, error) {
	var c Currency
	var position string
	err := row.Scan(&c.Code, &c.Name, &c.Symbol, &c.DecimalPlaces, &position,
		&c.ThousandsSeparator, &c.DecimalSeparator, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.SymbolPosition = SymbolPosition(position)
	return &c, nil
}

// ErrNoRowsAffected is returned when an update matched no record.
var ErrNoRowsAffected = errors.New("no rows affected")

func checkRowsAffected(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %w", what, ErrNoRowsAffected)
	}
	return nil
}
