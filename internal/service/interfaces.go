// Package service defines the interfaces shared by the stores and the engines.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/sats-budget/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Start and End are inclusive calendar dates.
type TransactionFilter struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *int64
	Kind       *model.Kind
	Limit      int
}

// ForMonth returns a filter covering every day of m.
func ForMonth(m model.Month) TransactionFilter {
	start, end := m.Start(), m.End()
	return TransactionFilter{Start: &start, End: &end}
}

// Store defines the contract for the persistence layer.
type Store interface {
	// Transaction operations
	InsertIncome(ctx context.Context, amount model.Sats, description string, date time.Time) (int64, error)
	InsertExpense(ctx context.Context, amount model.Sats, description string, categoryID int64, date time.Time) (int64, error)
	UpdateTransaction(ctx context.Context, txn model.Transaction) (bool, error)
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	QueryTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Category operations
	InsertCategory(ctx context.Context, name string) (int64, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) (bool, error)
	DeleteCategory(ctx context.Context, id int64) (model.CategoryDeletion, error)

	// Group operations
	InsertGroup(ctx context.Context, name string) (int64, error)
	ListGroups(ctx context.Context) ([]model.CategoryGroup, error)
	RenameGroup(ctx context.Context, id int64, name string) (bool, error)
	AssignCategoryGroup(ctx context.Context, categoryID int64, groupID *int64) error

	// Allocation operations
	UpsertAllocation(ctx context.Context, categoryID int64, month model.Month, amount model.Sats) error
	DeleteAllocation(ctx context.Context, categoryID int64, month model.Month) (bool, error)
	QueryAllocation(ctx context.Context, categoryID int64, month model.Month) (model.Sats, bool, error)
	QueryAllocations(ctx context.Context, month model.Month) ([]model.Allocation, error)

	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
