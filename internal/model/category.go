package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyName is returned when a category or group name is blank.
var ErrEmptyName = errors.New("name cannot be empty")

// Category is a spending envelope.
type Category struct {
	CreatedAt time.Time
	GroupID   *int64
	Name      string
	GroupName string // read-only, joined from the group
	ID        int64
}

// CategoryGroup collects related envelopes for display.
type CategoryGroup struct {
	CreatedAt time.Time
	Name      string
	ID        int64
	SortOrder int
}

// CategoryDeletion reports what a category delete removed.
type CategoryDeletion struct {
	Transactions int
	Allocations  int
	Deleted      bool
}

// Allocation is the amount assigned to a category for one month.
type Allocation struct {
	Month      Month
	CategoryID int64
	Amount     Sats
}

// NormalizeName trims a user supplied name and rejects blanks.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// Validate checks an allocation before it is stored.
func (a *Allocation) Validate() error {
	if a.Amount < 0 {
		return fmt.Errorf("%w: allocation cannot be negative, got %d", ErrInvalidAmount, a.Amount)
	}
	if !a.Month.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMonth, a.Month)
	}
	return nil
}
