package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fxquotes/internal/repository"
)

// Registry answers which currencies exist and which are active.
type Registry struct {
	repo repository.CurrencyRepository
	log  *zap.SugaredLogger
}

// NewRegistry creates a new Registry.
func NewRegistry(repo repository.CurrencyRepository, logger *zap.SugaredLogger) *Registry {
	return &Registry{repo: repo, log: logger}
}

// Get returns the currency for code regardless of its active flag.
func (r *Registry) Get(ctx context.Context, code string) (*repository.Currency, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	c, err := r.repo.Get(ctx, code)
	if err != nil {
		r.log.Errorw("DB error fetching currency", "code", code, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return c, nil
}

// ListActive returns the active currencies ordered by code.
func (r *Registry) ListActive(ctx context.Context) ([]repository.Currency, error) {
	list, err := r.repo.ListActive(ctx)
	if err != nil {
		r.log.Errorw("DB error listing active currencies", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return list, nil
}
