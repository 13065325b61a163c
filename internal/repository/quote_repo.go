package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// QuoteRepository defines DB operations for quotes.
type QuoteRepository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, id string) (*Quote, error)
}

// PostgresQuoteRepository is an implementation of QuoteRepository using PostgreSQL.
type PostgresQuoteRepository struct {
	db *sql.DB
}

// NewPostgresQuoteRepository creates a new PostgresQuoteRepository.
func NewPostgresQuoteRepository(db *sql.DB) QuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// Create inserts a new quote. Quotes are never updated afterwards.
func (r *PostgresQuoteRepository) Create(ctx context.Context, q *Quote) error {
	query := `INSERT INTO quotes (id, source_currency, target_currency, source_amount,
	              target_amount, rate, created_at, expires_at)
	          VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query, q.ID, q.SourceCurrency, q.TargetCurrency, q.SourceAmount,
		q.TargetAmount, q.Rate, q.CreatedAt, q.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create quote %s: %w", q.ID, err)
	}
	return nil
}

// GetByID retrieves a quote by id, returning (nil, nil) if it does not exist.
func (r *PostgresQuoteRepository) GetByID(ctx context.Context, id string) (*Quote, error) {
	query := `SELECT id::text, source_currency, target_currency, source_amount, target_amount,
	                 rate, created_at, expires_at
	          FROM quotes
	          WHERE id=$1::uuid`

	q, err := scanQuote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quote %s: %w", id, err)
	}
	return q, nil
}

func scanQuote(row rowScanner) (*Quote, error) {
	var q Quote
	err := row.Scan(&q.ID, &q.SourceCurrency, &q.TargetCurrency, &q.SourceAmount, &q.TargetAmount,
		&q.Rate, &q.CreatedAt, &q.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
