// Package model defines the core domain models used throughout the application.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind indicates the direction of a transaction.
type Kind string

const (
	// KindIncome marks money flowing into the budget.
	KindIncome Kind = "income"
	// KindExpense marks money spent out of a category envelope.
	KindExpense Kind = "expense"
)

// Transaction validation errors.
var (
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrMissingCategory    = errors.New("expense requires a category")
	ErrUnexpectedCategory = errors.New("income cannot carry a category")
)

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Transaction is a single income or expense entry.
// Amount is always positive; the sign is carried by Kind.
type Transaction struct {
	Date         time.Time
	CreatedAt    time.Time
	CategoryID   *int64 // set iff Kind is KindExpense
	Description  string
	CategoryName string // read-only, joined from the category
	Kind         Kind
	ID           int64
	Amount       Sats
}

// Validate checks the invariants every store enforces before writing.
func (t *Transaction) Validate() error {
	if t.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidAmount, t.Amount)
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidDate)
	}
	switch t.Kind {
	case KindIncome:
		if t.CategoryID != nil {
			return ErrUnexpectedCategory
		}
	case KindExpense:
		if t.CategoryID == nil {
			return ErrMissingCategory
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	return nil
}

// Signed returns the amount with income positive and expenses negative.
func (t *Transaction) Signed() Sats {
	if t.Kind == KindExpense {
		return -t.Amount
	}
	return t.Amount
}

// Int64Ptr is a convenience for building optional ids.
func Int64Ptr(v int64) *int64 {
	return &v
}
