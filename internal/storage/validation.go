// Package storage provides the SQLite persistence layer for the budget.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sats-budget/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidID        = errors.New("id must be positive")
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

func validateMonth(m model.Month) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %v", model.ErrInvalidMonth, m)
	}
	return nil
}
